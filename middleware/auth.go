package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"paper-trader/session"
)

// CookieName is the session cookie.
const CookieName = "session_id"

// SessionAuth resolves the session cookie and puts the user on the gin
// context. Requests without a live session redirect to /login.
func SessionAuth(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				log.Errorf("session lookup: %v", err)
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set("user_id", sess.UserID)
		c.Set("username", sess.Username)
		c.Next()
	}
}
