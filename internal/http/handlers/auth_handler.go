package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

// LoginHandler authenticates the user and returns a JWT, also set as a
// cookie so browser navigation works without a JS client.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" form:"email" binding:"required,email"`
			Password string `json:"password" form:"password" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, err.Error())
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid email or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid email or password"})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"uid":   user.ID,
			"email": user.Email,
			"exp":   time.Now().Add(24 * time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			serverError(c, err)
			return
		}

		c.SetCookie("token", tokenString, 3600*24, "/", "", false, true)

		// Form logins go straight to the dashboard.
		if c.ContentType() == "application/x-www-form-urlencoded" {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": tokenString,
			"user":  gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
		})
	}
}

// LogoutHandler clears the token cookie and sends the browser to login.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.Redirect(http.StatusSeeOther, "/login")
	}
}

// MeHandler returns the current user with their group names and driver
// profile, if any.
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized"})
			return
		}

		var groups []models.Group
		db.Model(user).Association("Groups").Find(&groups)
		names := make([]string, 0, len(groups))
		for _, g := range groups {
			names = append(names, g.Name)
		}

		resp := gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"is_staff": user.IsStaff,
			"groups":   names,
		}
		chk := rbac.Checker{DB: db}
		if profile := chk.DriverProfile(c.Request.Context(), user); profile != nil {
			resp["driver_profile_id"] = profile.ID
		}
		c.JSON(http.StatusOK, resp)
	}
}
