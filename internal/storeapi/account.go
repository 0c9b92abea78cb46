package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
)

func registerAccountRoutes() {
	webserver.PubGET("/account", currentAccount)
	webserver.PubPOST("/account/register", registerAccount)
	webserver.PubPOST("/account/login", loginAccount)
	webserver.PubPOST("/account/logout", logoutAccount)
}

func currentAccount(c echo.Context) error {
	user, logged := getStore(c).User(webserver.SessionID(c))
	if !logged {
		return fail(c, http.StatusUnauthorized, "NOT_LOGGED_IN", "No active account for this session")
	}
	return ok(c, user)
}

// registerAccount creates the directory entry and binds it to the session.
// When the tax ID or e-mail already exists, the existing entry wins and is
// reused, matching first-write-wins directory semantics.
func registerAccount(c echo.Context) error {
	var user domain.User
	if err := c.Bind(&user); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration")
	}
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.TaxID = strings.TrimSpace(user.TaxID)
	user.CompanyName = strings.TrimSpace(user.CompanyName)
	if user.Email == "" || user.TaxID == "" || user.CompanyName == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "E-mail, tax ID and company name are required")
	}

	registered := getStore(c).SaveUser(webserver.SessionID(c), user)
	return ok(c, registered)
}

type loginPayload struct {
	Email string `json:"email"`
	TaxID string `json:"taxId"`
}

// loginAccount signs a returning customer in by e-mail or tax ID. The
// storefront has no passwords; the directory entry itself is the credential.
func loginAccount(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login")
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	payload.TaxID = strings.TrimSpace(payload.TaxID)
	if payload.Email == "" && payload.TaxID == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "E-mail or tax ID is required")
	}

	st := getStore(c)
	user, found := st.FindUser(payload.Email, payload.TaxID)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_REGISTERED", "No account matches; please register first")
	}
	st.SaveUser(webserver.SessionID(c), user)
	return ok(c, user)
}

func logoutAccount(c echo.Context) error {
	getStore(c).Logout(webserver.SessionID(c))
	return ok(c, map[string]bool{"loggedOut": true})
}
