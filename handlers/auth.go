package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"paper-trader/middleware"
	"paper-trader/models"
)

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Flash": popFlash(c)})
}

// Login verifies credentials and binds a fresh session to the user.
func (h *Handler) Login(c *gin.Context) {
	user, err := h.users.Authenticate(c.Request.Context(),
		c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		h.renderError(c, "login.tmpl", err, nil)
		return
	}
	if err := h.startSession(c, user); err != nil {
		h.renderError(c, "login.tmpl", err, nil)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", gin.H{"Flash": popFlash(c)})
}

// Register creates the account and logs the new user straight in.
func (h *Handler) Register(c *gin.Context) {
	user, err := h.users.Register(c.Request.Context(),
		c.PostForm("username"), c.PostForm("password"), c.PostForm("confirmation"))
	if err != nil {
		h.renderError(c, "register.tmpl", err, nil)
		return
	}
	if err := h.startSession(c, user); err != nil {
		h.renderError(c, "register.tmpl", err, nil)
		return
	}
	setFlash(c, "Welcome! You're registered now.")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout destroys the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if id, err := c.Cookie(middleware.CookieName); err == nil {
		if err := h.sessions.Destroy(c.Request.Context(), id); err != nil {
			log.Errorf("destroy session: %v", err)
		}
	}
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	setFlash(c, "Logged out successfully.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// ChangePasswordForm renders the password change page.
func (h *Handler) ChangePasswordForm(c *gin.Context) {
	c.HTML(http.StatusOK, "changepwd.tmpl", gin.H{
		"Flash":    popFlash(c),
		"Username": username(c),
	})
}

// ChangePassword replaces the stored hash.
func (h *Handler) ChangePassword(c *gin.Context) {
	err := h.users.ChangePassword(c.Request.Context(), userID(c),
		c.PostForm("oldpassword"), c.PostForm("newpassword"), c.PostForm("confirmation"))
	if err != nil {
		h.renderError(c, "changepwd.tmpl", err, nil)
		return
	}
	setFlash(c, "Password changed successfully!")
	c.Redirect(http.StatusSeeOther, "/")
}

// startSession drops any previous session before binding a new one.
func (h *Handler) startSession(c *gin.Context, user *models.User) error {
	if id, err := c.Cookie(middleware.CookieName); err == nil {
		if err := h.sessions.Destroy(c.Request.Context(), id); err != nil {
			log.Errorf("destroy session: %v", err)
		}
	}
	id, err := h.sessions.Create(c.Request.Context(), user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(middleware.CookieName, id, int(h.sessionTTL.Seconds()), "/", "", false, true)
	return nil
}
