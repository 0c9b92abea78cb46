package notify

import (
	"context"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/config"
	"github.com/phytolab/orderport/internal/domain"
)

const alertTopic = "store:alerts"

// Alert is a user-facing notification surfaced to connected back-office
// clients.
type Alert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier dispatches order activity: receipt rendering, the outbound
// webhook, the confirmation e-mail and local alerts. Every path is
// best-effort; failures are logged and never surfaced to checkout callers.
type Notifier struct {
	cfg      *config.AppConfig
	settings func() domain.SiteSettings
	receipts *ReceiptStore
	bus      EventBus.Bus
}

func NewNotifier(cfg *config.AppConfig, settings func() domain.SiteSettings, receipts *ReceiptStore) *Notifier {
	return &Notifier{
		cfg:      cfg,
		settings: settings,
		receipts: receipts,
		bus:      EventBus.New(),
	}
}

// OrderPlaced renders the receipt, posts the webhook and sends the
// confirmation e-mail.
func (n *Notifier) OrderPlaced(ctx context.Context, order domain.Order) {
	settings := n.settings()

	receiptURL := ""
	if n.receipts != nil {
		url, err := n.receipts.Save(order, settings)
		if err != nil {
			zap.L().Warn("receipt render failed", zap.String("order", order.Code()), zap.Error(err))
		} else {
			receiptURL = url
		}
	}

	if err := n.sendWebhook(ctx, order, receiptURL); err != nil {
		zap.L().Warn("order webhook dispatch failed",
			zap.String("order", order.Code()), zap.Error(err))
	}
	if err := n.sendMail(order, settings); err != nil {
		zap.L().Warn("order mail dispatch failed",
			zap.String("order", order.Code()), zap.Error(err))
	}

	n.Notify("ORDER SENT", "Order #"+order.Code()+" from "+order.Customer.CompanyName)
}

// ResendWebhook re-posts an existing order to the webhook endpoint, reusing
// the already rendered receipt when present.
func (n *Notifier) ResendWebhook(ctx context.Context, order domain.Order) error {
	receiptURL := ""
	if n.receipts != nil {
		receiptURL = n.receipts.URLFor(order)
	}
	return n.sendWebhook(ctx, order, receiptURL)
}

// Notify publishes a local alert to subscribed clients.
func (n *Notifier) Notify(title, body string) {
	zap.L().Info("store alert", zap.String("title", title), zap.String("body", body))
	n.bus.Publish(alertTopic, Alert{Title: title, Body: body})
}

// SubscribeAlerts registers a handler for subsequent alerts (server-sent
// events endpoint). The returned func unsubscribes.
func (n *Notifier) SubscribeAlerts(handler func(Alert)) (func(), error) {
	fn := func(a Alert) { handler(a) }
	if err := n.bus.Subscribe(alertTopic, fn); err != nil {
		return nil, err
	}
	return func() { _ = n.bus.Unsubscribe(alertTopic, fn) }, nil
}
