package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextWard   = "ward"
)

// Roles understood by the analytics API.
const (
	RoleManager       = "manager"
	RoleHospitalAdmin = "hospital_admin"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Claims is the bearer token payload. Ward scopes a manager to a single ward.
type Claims struct {
	Role string `json:"role"`
	Ward string `json:"ward,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates an HS256 bearer token and stores its subject, role and ward
// in the gin context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		var claims Claims
		tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errUnexpectedSigningMethod
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextWard, claims.Ward)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role is not one of roles.
// It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(ContextRole)] {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// ScopedWard returns the ward a manager is restricted to, or "" when the
// caller may see every ward.
func ScopedWard(c *gin.Context) string {
	if c.GetString(ContextRole) != RoleManager {
		return ""
	}
	return c.GetString(ContextWard)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
