package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/internal/app"
	"github.com/phytolab/orderport/pkg/common"
)

func newSessionID() string {
	return common.UUIDstr()
}

const (
	appCtxKey     = "orderport_appctx"
	sessionName   = "orderport_session"
	sessionSIDKey = "sid"
)

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	pub    *echo.Group
	appctx app.AppContext
}

var server *WebServer

// Init builds the echo server: public storefront routes under /api, JWT
// protected back-office routes under /admin/api, receipts served statically.
func Init(appctx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(appctx.Config().Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, appctx)
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI: true, LogStatus: true, LogMethod: true, LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	e.Static("/receipts", appctx.ReceiptDir())

	api := e.Group("/admin/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appctx.Config().Web.Secret),
	}))

	server = &WebServer{
		root:   e,
		api:    api,
		pub:    e.Group("/api"),
		appctx: appctx,
	}
	return server
}

// Listen serves until Shutdown.
func Listen() error {
	cfg := server.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := server.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

// Back-office route registration (JWT protected).

func ApiGET(path string, h echo.HandlerFunc)    { server.api.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.api.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.api.PUT(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// Storefront route registration (cookie session).

func PubGET(path string, h echo.HandlerFunc)    { server.pub.GET(path, h) }
func PubPOST(path string, h echo.HandlerFunc)   { server.pub.POST(path, h) }
func PubPUT(path string, h echo.HandlerFunc)    { server.pub.PUT(path, h) }
func PubDELETE(path string, h echo.HandlerFunc) { server.pub.DELETE(path, h) }

// RootPOST registers an unauthenticated route (operator login).
func RootPOST(path string, h echo.HandlerFunc) { server.root.POST(path, h) }

// GetAppCtx pulls the application context injected by middleware.
func GetAppCtx(c echo.Context) app.AppContext {
	return c.Get(appCtxKey).(app.AppContext)
}

// SessionID returns the browser session identifier, creating one on first
// contact. The ID keys the session's cart and current user in the state
// store.
func SessionID(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil || sess == nil {
		return "anonymous"
	}
	if sid, ok := sess.Values[sessionSIDKey].(string); ok && sid != "" {
		return sid
	}
	sid := newSessionID()
	sess.Values[sessionSIDKey] = sid
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("session save failed", zap.Error(err))
	}
	return sid
}

// IssueToken signs a back-office JWT for an authenticated operator.
func IssueToken(secret, username, level string) (string, error) {
	claims := jwt.MapClaims{
		"usr": username,
		"lvl": level,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// TokenUsername extracts the operator name from the request token.
func TokenUsername(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	usr, _ := claims["usr"].(string)
	return usr
}
