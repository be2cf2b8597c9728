package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"go-hiring-backend/config"
	"go-hiring-backend/internal/delivery/http/response"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/apperror"
	"go-hiring-backend/pkg/auth"
	"go-hiring-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authCookieName = "auth_token"

// TokenMiddleware validates the bearer token (or auth_token cookie) and stores the
// subject and email claims. It does not require a local user record.
func TokenMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, keyFunc(jwksProvider, cfg),
			jwt.WithValidMethods([]string{"HS256", "RS256"}),
		)
		if err != nil || !token.Valid {
			logger.Log.Warn("token validation failed",
				"request_id", response.RequestID(c),
				"error", err,
			)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Next()
	}
}

// AuthMiddleware validates the token and loads the caller's role from the local
// user record. The role claim in the token is never trusted.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	validate := TokenMiddleware(jwksProvider, cfg)

	return func(c *gin.Context) {
		validate(c)
		if c.IsAborted() {
			return
		}

		sub := c.GetString(string(domain.KeyUserID))
		user, err := authUC.GetCurrentUser(c.Request.Context(), sub)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
			} else {
				logger.Log.Error("user lookup failed", "user_id", sub, "error", err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
			}
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserRole), user.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		if !slices.Contains(roles, role) {
			response.Error(c, http.StatusForbidden,
				fmt.Sprintf("This endpoint requires role: %s", strings.Join(roles, " or ")), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

func keyFunc(jwksProvider *auth.Provider, cfg *config.Config) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			// HS256 - Use Secret
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
			}
			return []byte(cfg.JWTSecret), nil
		}

		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			// RS256 - Use JWKS
			if jwksProvider == nil || !jwksProvider.Configured() {
				return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
			}
			return jwksProvider.KeyFunc(token)
		}

		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}
