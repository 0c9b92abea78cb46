package adminapi

import (
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
)

func registerUserRoutes() {
	webserver.ApiGET("/crm/users", listUsers)
	webserver.ApiGET("/crm/users/export", exportUsers)
	webserver.ApiPOST("/crm/users", createUser)
	webserver.ApiDELETE("/crm/users/:id", deleteUser)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	rows := GetStore(c).Users()
	if q != "" {
		filtered := rows[:0]
		for _, u := range rows {
			if !strings.Contains(strings.ToLower(u.Name), q) &&
				!strings.Contains(strings.ToLower(u.Email), q) &&
				!strings.Contains(strings.ToLower(u.CompanyName), q) &&
				!strings.Contains(u.TaxID, q) {
				continue
			}
			filtered = append(filtered, u)
		}
		rows = filtered
	}

	total := int64(len(rows))
	lo, hi := pageBounds(len(rows), page, pageSize)
	return paged(c, rows[lo:hi], total, page, pageSize)
}

func createUser(c echo.Context) error {
	var user domain.User
	if err := c.Bind(&user); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.TaxID = strings.TrimSpace(user.TaxID)
	if user.Email == "" || user.TaxID == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "E-mail and tax ID are required", nil)
	}

	registered := GetStore(c).AddUserToList(user)
	return ok(c, registered)
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	GetStore(c).DeleteUserFromList(id)
	return ok(c, map[string]interface{}{"id": id})
}

type userCsvRow struct {
	Name        string `csv:"name"`
	Email       string `csv:"email"`
	TaxID       string `csv:"tax_id"`
	CompanyName string `csv:"company_name"`
	TradeName   string `csv:"trade_name"`
	Contact     string `csv:"contact"`
	Birthdate   string `csv:"birthdate"`
}

// exportUsers streams the customer directory as CSV.
func exportUsers(c echo.Context) error {
	users := GetStore(c).Users()
	rows := make([]userCsvRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userCsvRow{
			Name:        u.Name,
			Email:       u.Email,
			TaxID:       u.TaxID,
			CompanyName: u.CompanyName,
			TradeName:   u.TradeName,
			Contact:     u.Contact,
			Birthdate:   u.Birthdate,
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="customers.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}
