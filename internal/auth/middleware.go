package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/math-arcade/internal/errors"
)

// Middleware attaches the bearer token's user to the request context.
// Requests without credentials pass through anonymously so handlers decide
// whether identity is required; malformed or invalid credentials are
// rejected with 401. The token may also be given as ?token= for clients,
// such as browsers opening a WebSocket, that cannot set headers.
func Middleware(t *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" {
				abort(c, "invalid authorization header format")
				return
			}
			token = value
		}

		if token == "" {
			c.Next()
			return
		}

		claims, err := t.Verify(token)
		if err != nil {
			abort(c, "invalid token")
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	e := errors.New(errors.CodeUnauthenticated, errors.WithMessagef("%s", msg))
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
