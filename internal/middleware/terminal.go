package middleware

import (
	"net/http"
	"regexp"

	"messpos/internal/apierror"

	"github.com/gin-gonic/gin"
)

const (
	TerminalKey    = "terminal_id"
	TerminalHeader = "X-Terminal-ID"
)

var terminalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// TerminalID resolves which cart a request works on: the X-Terminal-ID header
// when present, otherwise the authenticated user id. Must run after JWTAuth.
func TerminalID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TerminalHeader)
		if id == "" {
			if claims := GetClaims(c); claims != nil {
				id = claims.UserID
			}
		}
		if !terminalIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Missing or invalid "+TerminalHeader))
			return
		}
		c.Set(TerminalKey, id)
		c.Next()
	}
}

// GetTerminalID returns the id set by TerminalID.
func GetTerminalID(c *gin.Context) string {
	return c.GetString(TerminalKey)
}
