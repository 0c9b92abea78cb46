package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/notify"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/common"
)

func registerOrderRoutes() {
	webserver.ApiGET("/crm/orders", listOrders)
	webserver.ApiGET("/crm/orders/export", exportOrders)
	webserver.ApiGET("/crm/orders/:id", getOrder)
	webserver.ApiPUT("/crm/orders", replaceOrders)
	webserver.ApiPUT("/crm/orders/:id/status", updateOrderStatus)
	webserver.ApiPOST("/crm/orders/:id/webhook", resendOrderWebhook)
	webserver.ApiDELETE("/crm/orders/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	statusFilter := strings.TrimSpace(c.QueryParam("status"))
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))

	rows := GetStore(c).Orders()
	if statusFilter != "" || q != "" {
		filtered := rows[:0]
		for _, o := range rows {
			if statusFilter != "" && o.Status != statusFilter {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(o.Customer.CompanyName), q) &&
				!strings.Contains(strings.ToLower(o.CustomerEmail), q) &&
				!strings.Contains(strings.ToLower(o.Code()), q) {
				continue
			}
			filtered = append(filtered, o)
		}
		rows = filtered
	}

	total := int64(len(rows))
	lo, hi := pageBounds(len(rows), page, pageSize)
	return paged(c, rows[lo:hi], total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, found := GetStore(c).Order(id)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, order)
}

type orderStatusPayload struct {
	Status string `json:"status"`
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	switch payload.Status {
	case domain.OrderPending, domain.OrderReceived, domain.OrderCompleted:
	default:
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", payload.Status)
	}

	order, err := GetStore(c).UpdateOrderStatus(id, payload.Status)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, order)
}

// replaceOrders overwrites the whole order list (administrative cleanup).
func replaceOrders(c echo.Context) error {
	var rows []domain.Order
	if err := c.Bind(&rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order list", err.Error())
	}
	GetStore(c).SetOrders(rows)
	return ok(c, map[string]interface{}{"count": len(rows)})
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	st := GetStore(c)
	rows := st.Orders()
	kept := rows[:0]
	for _, o := range rows {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(rows) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	st.SetOrders(kept)
	return ok(c, map[string]interface{}{"id": id})
}

// resendOrderWebhook re-dispatches the order webhook for an already placed
// order, used when the receiving endpoint missed the original delivery.
func resendOrderWebhook(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, found := GetStore(c).Order(id)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	if err := GetNotifier(c).ResendWebhook(c.Request().Context(), order); err != nil {
		return fail(c, http.StatusBadGateway, "WEBHOOK_FAILED", "Webhook delivery failed", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id, "resent": true})
}

// exportOrders streams the order list as an xlsx workbook.
func exportOrders(c echo.Context) error {
	rows := GetStore(c).Orders()

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Code", "Date", "Company", "Tax ID", "E-mail", "Billing term", "Items", "Total", "Status"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%s1", string(rune('A'+i))), h)
	}
	for i, o := range rows {
		row := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), o.Code())
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), o.Date)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.Customer.CompanyName)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.Customer.TaxID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.CustomerEmail)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), o.BillingTerm)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), notify.ItemSummary(o.Items))
		xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), common.FormatBRL(o.Total))
		xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), o.Status)
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="orders.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}
