package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/common"
)

func registerEventRoutes() {
	webserver.ApiGET("/crm/events", streamEvents)
}

// streamEvents pushes store alerts (new orders, status changes) to the
// back-office over server-sent events. The connection stays open until the
// client goes away.
func streamEvents(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	alerts := make(chan notify.Alert, 16)
	unsubscribe, err := GetNotifier(c).SubscribeAlerts(func(a notify.Alert) {
		select {
		case alerts <- a:
		default: // slow consumer, drop
		}
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Unable to subscribe to events", err.Error())
	}
	defer unsubscribe()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case alert := <-alerts:
			payload, merr := json.Marshal(alert)
			if merr != nil {
				continue
			}
			if _, werr := fmt.Fprintf(res, "id: %s\nevent: alert\ndata: %s\n\n",
				common.UUIDstr(), payload); werr != nil {
				return nil
			}
			res.Flush()
		}
	}
}
