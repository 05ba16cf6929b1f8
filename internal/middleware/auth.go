package middleware

import (
	"net/http"
	"strings"

	"github.com/juniormojica/estuarriendo-sub000/pkg/jwtutil"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const userKey = "user"

// JWTAuthMiddleware validates the bearer token issued by the authentication
// service and stores its claims on the request
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuth(false)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuth(false)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuth(false)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			prometheus.RecordAuth(true)
			c.Set(userKey, claims)
			c.Set("logger", log.With(zap.Uint("user_id", claims.UserID)))
			return next(c)
		}
	}
}

// GetUser returns the claims stored by JWTAuthMiddleware
func GetUser(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get(userKey).(*jwtutil.UserClaims)
	return claims, ok
}
