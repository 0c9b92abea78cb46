package adminapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/common"
)

type productPayload struct {
	Code                string  `json:"code"`
	Ean                 string  `json:"ean"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Category            string  `json:"category"`
	Price               float64 `json:"price"`
	OriginalPrice       float64 `json:"originalPrice"`
	Image               string  `json:"image"`
	InStock             bool    `json:"inStock"`
	IsHighlighted       bool    `json:"isHighlighted"`
	ExpirationDate      string  `json:"expirationDate"`
	LeafletURL          string  `json:"leafletUrl"`
	NutritionalInfo     string  `json:"nutritionalInfo"`
	IndicationsImageURL string  `json:"indicationsImageUrl"`
	IndicationsText     string  `json:"indicationsText"`
	ShowLeaflet         bool    `json:"showLeaflet"`
	ShowNutritionalInfo bool    `json:"showNutritionalInfo"`
}

// registerProductRoutes registers catalog CRUD endpoints. Mutations go
// through the state store so the local cache and remote mirror stay aligned.
func registerProductRoutes() {
	webserver.ApiGET("/crm/products", listProducts)
	webserver.ApiGET("/crm/products/:id", getProduct)
	webserver.ApiPOST("/crm/products", createProduct)
	webserver.ApiPUT("/crm/products", replaceProducts)
	webserver.ApiPUT("/crm/products/:id", updateProduct)
	webserver.ApiDELETE("/crm/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	categoryFilter := strings.TrimSpace(c.QueryParam("category"))

	rows := GetStore(c).Products()
	if q != "" || categoryFilter != "" {
		filtered := rows[:0]
		for _, p := range rows {
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Code), q) {
				continue
			}
			if categoryFilter != "" && p.Category != categoryFilter {
				continue
			}
			filtered = append(filtered, p)
		}
		rows = filtered
	}

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	desc := strings.EqualFold(c.QueryParam("order"), "DESC")
	switch sortField {
	case "name":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	case "price":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })
	case "created_at":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	}
	if desc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	total := int64(len(rows))
	lo, hi := pageBounds(len(rows), page, pageSize)
	return paged(c, rows[lo:hi], total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	for _, p := range GetStore(c).Products() {
		if p.ID == id {
			return ok(c, p)
		}
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
}

func validateProductPayload(payload *productPayload) (string, bool) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Code = strings.TrimSpace(payload.Code)
	if payload.Name == "" {
		return "Name is required", false
	}
	if payload.Code == "" {
		return "Code is required", false
	}
	if payload.Price < 0 {
		return "Price must not be negative", false
	}
	if payload.ExpirationDate != "" {
		// accept loose date formats, store normalized
		if t, err := dateparse.ParseAny(payload.ExpirationDate); err == nil {
			payload.ExpirationDate = t.Format("02/01/2006")
		}
	}
	return "", true
}

func payloadToProduct(payload productPayload, p *domain.Product) {
	p.Code = payload.Code
	p.Ean = strings.TrimSpace(payload.Ean)
	p.Name = payload.Name
	p.Description = payload.Description
	p.Category = strings.TrimSpace(payload.Category)
	p.Price = payload.Price
	p.OriginalPrice = payload.OriginalPrice
	p.Image = strings.TrimSpace(payload.Image)
	p.InStock = payload.InStock
	p.IsHighlighted = payload.IsHighlighted
	p.ExpirationDate = payload.ExpirationDate
	p.LeafletURL = strings.TrimSpace(payload.LeafletURL)
	p.NutritionalInfo = payload.NutritionalInfo
	p.IndicationsImageURL = strings.TrimSpace(payload.IndicationsImageURL)
	p.IndicationsText = payload.IndicationsText
	p.ShowLeaflet = payload.ShowLeaflet
	p.ShowNutritionalInfo = payload.ShowNutritionalInfo
	p.UpdatedAt = time.Now()
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := validateProductPayload(&payload); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p := domain.Product{
		ID:        common.UUIDint64(),
		CreatedAt: time.Now(),
	}
	payloadToProduct(payload, &p)

	st := GetStore(c)
	st.SetProducts(append(st.Products(), p))
	return ok(c, p)
}

// replaceProducts saves the whole catalog at once (bulk back-office edit).
func replaceProducts(c echo.Context) error {
	var rows []domain.Product
	if err := c.Bind(&rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product list", err.Error())
	}
	now := time.Now()
	for i := range rows {
		if rows[i].ID == 0 {
			rows[i].ID = common.UUIDint64()
			rows[i].CreatedAt = now
		}
		rows[i].UpdatedAt = now
	}
	GetStore(c).SetProducts(rows)
	return ok(c, map[string]interface{}{"count": len(rows)})
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := validateProductPayload(&payload); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	st := GetStore(c)
	rows := st.Products()
	for i := range rows {
		if rows[i].ID == id {
			payloadToProduct(payload, &rows[i])
			st.SetProducts(rows)
			return ok(c, rows[i])
		}
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	st := GetStore(c)
	rows := st.Products()
	kept := rows[:0]
	for _, p := range rows {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(rows) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	st.SetProducts(kept)
	return ok(c, map[string]interface{}{"id": id})
}
