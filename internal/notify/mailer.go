package notify

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/pkg/common"
)

// sendMail delivers the order-received e-mail to the store contact address
// when SMTP is configured.
func (n *Notifier) sendMail(order domain.Order, settings domain.SiteSettings) error {
	if !n.cfg.Smtp.Enabled || n.cfg.Smtp.Host == "" {
		return nil
	}
	to := settings.ContactEmail
	if to == "" {
		to = n.cfg.Webhook.To
	}
	if to == "" {
		return nil
	}

	body := fmt.Sprintf(
		"Order #%s received.\n\nCustomer: %s (%s)\nResponsible: %s\nPhone: %s\nBilling term: %s\nItems: %s\nTotal: %s\nDate: %s\n",
		order.Code(),
		order.Customer.CompanyName, order.Customer.TaxID,
		order.Customer.Responsible, order.Customer.Phone,
		order.BillingTerm,
		ItemSummary(order.Items),
		common.FormatBRL(order.Total),
		order.Date,
	)

	m := gomail.NewMessage()
	from := n.cfg.Smtp.From
	if from == "" {
		from = n.cfg.Smtp.Username
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s - order #%s received", settings.BrandName, order.Code()))
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.Smtp.Host, n.cfg.Smtp.Port, n.cfg.Smtp.Username, n.cfg.Smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return errors.Wrap(err, "smtp send")
	}
	return nil
}
