package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"furgones/internal/models"
)

// Claims represents the JWT claims structure.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

const userKey = "user"

// CurrentUser returns the authenticated user set by the JWT middleware, or
// nil when the request is anonymous.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// isBrowser covers navigation and form submissions alike: anything asking
// for HTML belongs on the login page, not a JSON 401.
func isBrowser(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func reject(c *gin.Context, status int, msg string) {
	// Browser navigation goes back to the login page; API callers get JSON.
	if isBrowser(c) {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.JSON(status, gin.H{"detail": msg})
	c.Abort()
}

// OptionalJWT sets the current user when a valid token is presented and lets
// the request through anonymously otherwise. Used on the API surface, where
// reads are open and write denial belongs to the authorization gate, not the
// authenticator.
func OptionalJWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if tokenStr == "" {
			c.Next()
			return
		}
		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.Next()
			return
		}
		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.Next()
			return
		}
		c.Set(userKey, &user)
		c.Next()
	}
}

// JWT returns a Gin middleware that validates JWT tokens from either the
// Authorization header or a "token" cookie and loads the current user row
// into the context. Role and ownership facts are NOT loaded here; rbac reads
// them fresh at decision time.
func JWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")

		// Fallback: read from cookie if no Authorization header
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}

		if tokenStr == "" {
			reject(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
		tokenStr = strings.TrimSpace(tokenStr)

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			reject(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			reject(c, http.StatusUnauthorized, "invalid claims")
			return
		}

		// Verify the user still exists
		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			reject(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}
