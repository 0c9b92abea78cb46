package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/store"
	"github.com/phytolab/orderport/internal/webserver"
)

// Init registers the public storefront routes under /api. All state flows
// through the state store keyed by the visitor's cookie session.
func Init() {
	registerCatalogRoutes()
	registerCartRoutes()
	registerAccountRoutes()
	registerCheckoutRoutes()
}

func getStore(c echo.Context) *store.StateStore {
	return webserver.GetAppCtx(c).Store()
}

func getNotifier(c echo.Context) *notify.Notifier {
	return webserver.GetAppCtx(c).Notifier()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}
