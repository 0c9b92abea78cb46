package adminapi

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/app"
	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/store"
	"github.com/phytolab/orderport/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Init registers all back-office routes. Called once after webserver.Init.
func Init() {
	registerLoginRoutes()
	registerProductRoutes()
	registerSettingsRoutes()
	registerOrderRoutes()
	registerUserRoutes()
	registerDashboardRoutes()
	registerEventRoutes()
}

// GetApp returns the application context bound to the request.
func GetApp(c echo.Context) app.AppContext {
	return webserver.GetAppCtx(c)
}

// GetStore returns the state store, the coordination point for all state
// mutations.
func GetStore(c echo.Context) *store.StateStore {
	return webserver.GetAppCtx(c).Store()
}

// GetNotifier returns the notification dispatcher.
func GetNotifier(c echo.Context) *notify.Notifier {
	return webserver.GetAppCtx(c).Notifier()
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"error": apiError{Code: code, Message: message, Detail: detail},
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// pageSlice applies in-memory pagination over a filtered collection copy.
func pageBounds(length, page, pageSize int) (lo, hi int) {
	lo = (page - 1) * pageSize
	if lo > length {
		lo = length
	}
	hi = lo + pageSize
	if hi > length {
		hi = length
	}
	return lo, hi
}
