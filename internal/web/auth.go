package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"tasktracker/internal/service"
)

// GenerateToken issues the session token handed out after an access-code
// login.
func GenerateToken(secret []byte, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": "owner",
		"iat": now.Unix(),
		"exp": now.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(authHeader[len(prefix):], func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthController handles access-code login and code changes.
type AuthController struct {
	Settings *service.SettingsService
	Secret   []byte
	Clock    service.Clock
}

type loginRequest struct {
	AccessCode string `json:"access_code" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.Settings.VerifyAccessCode(c.Request.Context(), req.AccessCode); err != nil {
		if errors.Is(err, service.ErrWrongAccessCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong access code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := GenerateToken(ac.Secret, ac.Clock.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type changeCodeRequest struct {
	CurrentCode string `json:"current_code" binding:"required"`
	NewCode     string `json:"new_code" binding:"required"`
}

func (ac *AuthController) ChangeAccessCode(c *gin.Context) {
	var req changeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.Settings.ChangeAccessCode(c.Request.Context(), req.CurrentCode, req.NewCode); err != nil {
		if errors.Is(err, service.ErrWrongAccessCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong access code"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "access code changed"})
}
