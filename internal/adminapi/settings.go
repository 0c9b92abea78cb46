package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/crm/settings", getSettings)
	webserver.ApiPUT("/crm/settings", saveSettings)
}

func getSettings(c echo.Context) error {
	return ok(c, GetStore(c).Settings())
}

// saveSettings replaces the settings aggregate wholesale. The payload is
// decoded as a loose map and merged over the defaults so partial saves from
// older clients never zero out newer fields.
func saveSettings(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	merged, err := domain.MergeSettings(raw)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Settings payload is malformed", err.Error())
	}
	merged.BrandName = strings.TrimSpace(merged.BrandName)
	if merged.BrandName == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Brand name is required", nil)
	}
	if merged.MinOrderValue < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Minimum order value must not be negative", nil)
	}
	GetStore(c).SetSettings(merged)
	return ok(c, merged)
}
