package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/pkg/common"
)

func testOrder() domain.Order {
	return domain.Order{
		ID:            42,
		Date:          "15/08/2026",
		CustomerEmail: "buyer@pharma.com",
		Customer: domain.OrderCustomer{
			CompanyName: "Pharma Ltda",
			TaxID:       "12.345.678/0001-90",
			Responsible: "Ana",
			Phone:       "+55 11 99999-0000",
		},
		Items: []domain.CartItem{
			{Product: domain.Product{Code: "CUR001", Name: "Turmeric Extract", Price: 25.5}, Quantity: 2},
			{Product: domain.Product{Code: "OMG002", Name: "Omega-3", Price: 40}, Quantity: 1},
		},
		Total:       91,
		BillingTerm: "28 days",
		Status:      domain.OrderReceived,
	}
}

func TestReceiptRenderContainsOrderDetails(t *testing.T) {
	rs, err := NewReceiptStore(t.TempDir(), "http://localhost:1816")
	require.NoError(t, err)

	html, err := rs.Render(testOrder(), domain.DefaultSettings())
	require.NoError(t, err)

	doc := string(html)
	assert.Contains(t, doc, domain.DefaultSettings().BrandName)
	assert.Contains(t, doc, "Pharma Ltda")
	assert.Contains(t, doc, "Turmeric Extract")
	assert.Contains(t, doc, "CUR001")
	assert.Contains(t, doc, common.FormatBRL(91))
	assert.Contains(t, doc, common.FormatBRL(51), "line subtotal is quantity times price")
}

func TestReceiptSaveReturnsPublicURL(t *testing.T) {
	rs, err := NewReceiptStore(t.TempDir(), "http://localhost:1816/")
	require.NoError(t, err)

	order := testOrder()
	url, err := rs.Save(order, domain.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1816/receipts/order-"+order.Code()+".html", url)

	// URLFor resolves only after the file exists
	assert.Equal(t, url, rs.URLFor(order))
	assert.Empty(t, rs.URLFor(domain.Order{ID: 999}))
}

func TestItemSummary(t *testing.T) {
	order := testOrder()
	assert.Equal(t, "2x Turmeric Extract, 1x Omega-3", ItemSummary(order.Items))
	assert.Equal(t, "", ItemSummary(nil))
}
