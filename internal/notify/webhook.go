package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/pkg/common"
)

// webhookPayload is the flattened order representation posted to the external
// endpoint. Items are summarized as human-readable text, the total as
// currency text.
type webhookPayload struct {
	To            string `json:"to"`
	Subject       string `json:"subject"`
	OrderID       string `json:"order_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerTaxID string `json:"customer_tax_id"`
	Contact       string `json:"contact"`
	BillingTerm   string `json:"billing_term"`
	Total         string `json:"total"`
	Items         string `json:"items"`
	ReceiptURL    string `json:"receipt_url"`
	Date          string `json:"date"`
}

// ItemSummary renders cart lines as "2x Product A, 1x Product B".
func ItemSummary(items []domain.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Product.Name))
	}
	return strings.Join(parts, ", ")
}

// SendWebhook posts the order to the configured endpoint. Fire-and-forget
// from the checkout's point of view; the caller logs errors and moves on.
func (n *Notifier) sendWebhook(ctx context.Context, order domain.Order, receiptURL string) error {
	if !n.cfg.Webhook.Enabled || n.cfg.Webhook.URL == "" {
		return nil
	}

	payload := webhookPayload{
		To:            n.cfg.Webhook.To,
		Subject:       n.cfg.Webhook.Subject,
		OrderID:       order.Code(),
		CustomerName:  order.Customer.CompanyName,
		CustomerEmail: order.CustomerEmail,
		CustomerTaxID: order.Customer.TaxID,
		Contact:       order.Customer.Phone,
		BillingTerm:   order.BillingTerm,
		Total:         common.FormatBRL(order.Total),
		Items:         ItemSummary(order.Items),
		ReceiptURL:    receiptURL,
		Date:          order.Date,
	}

	timeout := time.Duration(n.cfg.Webhook.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var code int
	err := gout.POST(n.cfg.Webhook.URL).
		WithContext(ctx).
		SetTimeout(timeout).
		SetJSON(payload).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "webhook post")
	}
	if code >= 300 {
		return errors.Errorf("webhook endpoint returned status %d", code)
	}
	return nil
}
