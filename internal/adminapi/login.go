package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/common"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerLoginRoutes() {
	// unauthenticated: issues the JWT the /admin/api group requires
	webserver.RootPOST("/admin/api/login", operatorLogin)
}

func operatorLogin(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	db := GetApp(c).DB()
	if db == nil {
		return fail(c, http.StatusServiceUnavailable, "NO_DATABASE", "Operator login requires the remote database", nil)
	}

	var opr domain.SysOpr
	if err := db.Where("username = ?", username).First(&opr).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if !strings.EqualFold(opr.Status, common.ENABLED) {
		return fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Operator account is disabled", nil)
	}
	hashed := common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	if hashed != opr.Password {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	token, err := webserver.IssueToken(GetApp(c).Config().Web.Secret, opr.Username, opr.Level)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}

	db.Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	db.Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "back-office login",
		OptTime:   time.Now(),
	})
	zap.L().Info("operator login", zap.String("username", opr.Username), zap.String("ip", c.RealIP()))

	return ok(c, map[string]interface{}{
		"token":    token,
		"username": opr.Username,
		"level":    opr.Level,
	})
}
