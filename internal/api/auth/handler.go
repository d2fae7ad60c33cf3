package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"portfolio-app/internal/app/http/middleware"
	"portfolio-app/internal/logger"
)

const defaultTokenTTL = 12 * time.Hour

// Handler authenticates the single admin account configured through the
// environment.
type Handler struct {
	Email        string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

func NewHandler(email, passwordHash, secret string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Handler{Email: email, PasswordHash: passwordHash, Secret: secret, TTL: ttl}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.POST("/admin/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Email == "" || h.PasswordHash == "" {
		logger.FromContext(c.Request.Context()).Warn("auth: admin login attempted but ADMIN_EMAIL/ADMIN_PASSWORD_HASH unset")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(input.Email))),
		[]byte(strings.ToLower(h.Email)),
	) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(input.Password))
	if !emailOK || passErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := IssueToken(h.Secret, h.Email, h.TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(h.TTL.Seconds())})
}

// IssueToken signs an HS256 admin token.
func IssueToken(secret, email string, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"role":  middleware.RoleAdmin,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}
