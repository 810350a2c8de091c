// Package handlers serves the HTML pages and form posts
package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"paper-trader/auth"
	"paper-trader/middleware"
	"paper-trader/portfolio"
	"paper-trader/quotes"
	"paper-trader/session"
)

// Handler carries the stores and services every route needs. It is
// constructed once at startup; there is no ambient global state.
type Handler struct {
	users      *auth.Store
	portfolio  *portfolio.Service
	provider   quotes.Provider
	sessions   *session.Store
	sessionTTL time.Duration
}

// New is constructor
func New(users *auth.Store, svc *portfolio.Service, provider quotes.Provider,
	sessions *session.Store, sessionTTL time.Duration) *Handler {
	return &Handler{
		users:      users,
		portfolio:  svc,
		provider:   provider,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Router builds the gin engine with templates and all routes.
func Router(h *Handler, sessions *session.Store, templateGlob string) *gin.Engine {
	r := gin.Default()
	r.SetFuncMap(template.FuncMap{"usd": USD})
	r.LoadHTMLGlob(templateGlob)
	r.Use(noStore())

	// Public routes
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)

	// Protected routes
	authed := r.Group("/")
	authed.Use(middleware.SessionAuth(sessions))
	{
		authed.GET("/", h.Index)
		authed.GET("/buy", h.BuyForm)
		authed.POST("/buy", h.Buy)
		authed.GET("/sell", h.SellForm)
		authed.POST("/sell", h.Sell)
		authed.GET("/quote", h.QuoteForm)
		authed.POST("/quote", h.Quote)
		authed.GET("/history", h.History)
		authed.GET("/changepwd", h.ChangePasswordForm)
		authed.POST("/changepwd", h.ChangePassword)
	}
	return r
}

// noStore keeps responses out of browser caches, so pages never show a
// stale balance after the back button.
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// USD renders a decimal as $1,234.56 for templates.
func USD(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart := s[:len(s)-3]
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}
	out := "$" + intPart + s[len(s)-3:]
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

func userID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

func username(c *gin.Context) string {
	v, _ := c.Get("username")
	s, _ := v.(string)
	return s
}

const flashCookie = "flash"

// setFlash stores a one-shot message that survives the next redirect.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookie, message, 60, "/", "", false, true)
}

// popFlash reads and clears the one-shot message.
func popFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msg
}

func parseShares(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: must provide number of shares", portfolio.ErrValidation)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: shares must be a whole number", portfolio.ErrValidation)
	}
	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrValidation), errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, quotes.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrInsufficientFunds), errors.Is(err, portfolio.ErrInsufficientShares):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// renderError re-renders page with the failure message, or serves the
// apology page for anything unclassified. Internal details never reach
// the client.
func (h *Handler) renderError(c *gin.Context, page string, err error, data gin.H) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		h.apology(c, status, "something went wrong")
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = err.Error()
	data["Username"] = username(c)
	c.HTML(status, page, data)
}

func (h *Handler) apology(c *gin.Context, status int, message string) {
	c.HTML(status, "apology.tmpl", gin.H{
		"Status":   status,
		"Message":  message,
		"Username": username(c),
	})
}
