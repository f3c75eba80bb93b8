package taskstore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/authz"
)

const tokenIssuer = "zest-task-store"

var ErrInvalidToken = errors.New("taskstore: invalid token")

type AuthService struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{secret: []byte(secret), tokenTTL: ttl}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) GenerateToken(user *User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, expiry and issuer and returns the
// caller's scope.
func (s *AuthService) ParseToken(raw string) (Scope, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return Scope{}, ErrInvalidToken
	}

	userID, err := uuid.FromString(claims.UserID)
	if err != nil {
		return Scope{}, ErrInvalidToken
	}
	return Scope{UserID: userID, Role: authz.ParseRole(claims.Role)}, nil
}

const scopeContextKey = "auth_scope"

// AuthMiddleware rejects requests without a valid bearer token and
// stashes the caller's scope in the gin context.
func AuthMiddleware(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		scope, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(scopeContextKey, scope)
		c.Next()
	}
}

func scopeFrom(c *gin.Context) Scope {
	if v, ok := c.Get(scopeContextKey); ok {
		if scope, ok := v.(Scope); ok {
			return scope
		}
	}
	return Scope{Role: authz.RoleViewer}
}
