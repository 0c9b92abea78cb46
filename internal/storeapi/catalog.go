package storeapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.PubGET("/products", listCatalog)
	webserver.PubGET("/settings", getSiteSettings)
}

// listCatalog returns the storefront catalog. Out-of-stock products are
// hidden when the settings say so; highlighted products sort first.
func listCatalog(c echo.Context) error {
	st := getStore(c)
	settings := st.Settings()
	rows := st.Products()

	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	category := strings.TrimSpace(c.QueryParam("category"))

	out := make([]domain.Product, 0, len(rows))
	for _, p := range rows {
		if settings.HideOutOfStock && !p.InStock {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}

	// highlighted first, stable within groups
	highlighted := out[:0:0]
	rest := make([]domain.Product, 0, len(out))
	for _, p := range out {
		if p.IsHighlighted {
			highlighted = append(highlighted, p)
		} else {
			rest = append(rest, p)
		}
	}
	return ok(c, append(highlighted, rest...))
}

// getSiteSettings exposes the branding and storefront configuration. Secrets
// nested in the campaign block are stripped before leaving the server.
func getSiteSettings(c echo.Context) error {
	settings := getStore(c).Settings()
	settings.Campaigns.WhatsappApiKey = ""
	settings.Campaigns.WhatsappApiURL = ""
	return ok(c, settings)
}
