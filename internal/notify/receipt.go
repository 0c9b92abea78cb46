package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/pkg/common"
)

// ReceiptStore renders order receipts to self-contained HTML documents under
// the workdir and serves them by URL. Stands in for the original client-side
// PDF: the document carries the company header, customer block, line-item
// table and total.
type ReceiptStore struct {
	dir       string
	publicURL string
	tmpl      *template.Template
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Order #{{.Order.Code}}</title>
<style>
body { font-family: Arial, sans-serif; color: #1f2937; margin: 40px; }
h1 { color: {{.Settings.PrimaryColor}}; }
table { border-collapse: collapse; width: 100%; margin-top: 24px; }
th, td { border: 1px solid #d1d5db; padding: 8px 12px; text-align: left; }
th { background: #f3f4f6; }
.total { font-size: 1.2em; font-weight: bold; margin-top: 16px; }
.muted { color: #6b7280; font-size: 0.9em; }
</style>
</head>
<body>
<h1>{{.Settings.BrandName}}</h1>
<p class="muted">Order #{{.Order.Code}} &middot; {{.Order.Date}} &middot; {{.Order.Status}}</p>
<h3>Customer</h3>
<p>
{{.Order.Customer.CompanyName}}<br>
Tax ID: {{.Order.Customer.TaxID}}<br>
Responsible: {{.Order.Customer.Responsible}}<br>
Phone: {{.Order.Customer.Phone}}<br>
E-mail: {{.Order.CustomerEmail}}<br>
Billing term: {{.Order.BillingTerm}}
</p>
<table>
<tr><th>Qty</th><th>Code</th><th>Product</th><th>Unit price</th><th>Subtotal</th></tr>
{{range .Order.Items}}
<tr>
<td>{{.Quantity}}</td>
<td>{{.Product.Code}}</td>
<td>{{.Product.Name}}</td>
<td>{{formatBRL .Product.Price}}</td>
<td>{{formatBRL (subtotal .)}}</td>
</tr>
{{end}}
</table>
<p class="total">Total: {{formatBRL .Order.Total}}</p>
{{if .Order.Observation}}<p class="muted">Observation: {{.Order.Observation}}</p>{{end}}
<p class="muted">{{.Settings.FooterCopyright}}</p>
</body>
</html>
`

func NewReceiptStore(workdir, publicURL string) (*ReceiptStore, error) {
	dir := filepath.Join(workdir, "receipts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"formatBRL": common.FormatBRL,
		"subtotal": func(item domain.CartItem) float64 {
			return item.Product.Price * float64(item.Quantity)
		},
	}).Parse(receiptTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parse receipt template")
	}
	return &ReceiptStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		tmpl:      tmpl,
	}, nil
}

// Dir is the filesystem directory receipts are written to, served statically
// by the web server.
func (r *ReceiptStore) Dir() string {
	return r.dir
}

// Render produces the receipt document for an order.
func (r *ReceiptStore) Render(order domain.Order, settings domain.SiteSettings) ([]byte, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, map[string]interface{}{
		"Order":    order,
		"Settings": settings,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render receipt")
	}
	return buf.Bytes(), nil
}

// URLFor is the public URL an order's receipt is served at once saved.
func (r *ReceiptStore) URLFor(order domain.Order) string {
	name := fmt.Sprintf("order-%s.html", order.Code())
	if _, err := os.Stat(filepath.Join(r.dir, name)); err != nil {
		return ""
	}
	return r.publicURL + "/receipts/" + name
}

// Save renders and stores the receipt, returning its public URL.
func (r *ReceiptStore) Save(order domain.Order, settings domain.SiteSettings) (string, error) {
	data, err := r.Render(order, settings)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("order-%s.html", order.Code())
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "write receipt")
	}
	return r.publicURL + "/receipts/" + name, nil
}
