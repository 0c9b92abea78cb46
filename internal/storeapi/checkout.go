package storeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/common"
)

func registerCheckoutRoutes() {
	webserver.PubPOST("/checkout", checkout)
	webserver.PubGET("/orders", orderHistory)
	webserver.PubPOST("/orders/:id/resend", resendOrderReceipt)
}

type checkoutPayload struct {
	BillingTerm string `json:"billingTerm"`
	Responsible string `json:"responsible"`
	Phone       string `json:"phone"`
	Observation string `json:"observation"`
}

// checkout turns the session cart into an order. Unlike every other mutation
// this one awaits the remote insert: the customer is only told "order sent"
// once the order is durably recorded (or the remote store is absent).
func checkout(c echo.Context) error {
	sid := webserver.SessionID(c)
	st := getStore(c)

	user, logged := st.User(sid)
	if !logged {
		return fail(c, http.StatusUnauthorized, "NOT_LOGGED_IN", "Sign in before placing an order")
	}

	cart := st.Cart(sid)
	if len(cart) == 0 {
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty")
	}

	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout")
	}

	settings := st.Settings()
	total := st.CartTotal(sid)
	if total < settings.MinOrderValue {
		return fail(c, http.StatusUnprocessableEntity, "BELOW_MINIMUM",
			"Order total "+common.FormatBRL(total)+" is below the minimum of "+common.FormatBRL(settings.MinOrderValue))
	}

	billingTerm := strings.TrimSpace(payload.BillingTerm)
	if billingTerm == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Billing term is required")
	}
	if !settings.AllowCustomBillingTerm && !containsString(settings.BillingOptions, billingTerm) {
		return fail(c, http.StatusBadRequest, "INVALID_BILLING_TERM", "Billing term is not one of the offered options")
	}

	order := domain.Order{
		CustomerEmail: user.Email,
		Customer: domain.OrderCustomer{
			CompanyName: user.CompanyName,
			TaxID:       user.TaxID,
			Responsible: firstNonEmpty(payload.Responsible, user.Name),
			Phone:       firstNonEmpty(payload.Phone, user.Contact),
		},
		Items:       cart,
		Total:       total,
		BillingTerm: billingTerm,
		Observation: strings.TrimSpace(payload.Observation),
	}

	placed, err := st.PlaceOrder(c.Request().Context(), order)
	if err != nil {
		// the order exists locally and will be visible in history, but the
		// customer must know it has not reached the back office
		zap.L().Error("checkout remote insert failed",
			zap.String("order", placed.Code()), zap.Error(err))
		return fail(c, http.StatusBadGateway, "ORDER_NOT_CONFIRMED",
			"Order was recorded locally but could not be confirmed; please contact support with code "+placed.Code())
	}

	st.ClearCart(sid)
	return ok(c, placed)
}

// orderHistory lists the signed-in customer's orders, newest first.
func orderHistory(c echo.Context) error {
	user, logged := getStore(c).User(webserver.SessionID(c))
	if !logged {
		return fail(c, http.StatusUnauthorized, "NOT_LOGGED_IN", "Sign in to view order history")
	}
	return ok(c, getStore(c).OrdersByEmail(user.Email))
}

// resendOrderReceipt lets a customer re-trigger the webhook for one of their
// own orders when the receipt never arrived.
func resendOrderReceipt(c echo.Context) error {
	user, logged := getStore(c).User(webserver.SessionID(c))
	if !logged {
		return fail(c, http.StatusUnauthorized, "NOT_LOGGED_IN", "Sign in first")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
	}
	order, found := getStore(c).Order(id)
	if !found || order.CustomerEmail != user.Email {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	}
	if err := getNotifier(c).ResendWebhook(c.Request().Context(), order); err != nil {
		return fail(c, http.StatusBadGateway, "WEBHOOK_FAILED", "Receipt delivery failed, try again later")
	}
	return ok(c, map[string]interface{}{"id": strconv.FormatInt(id, 10), "resent": true})
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
