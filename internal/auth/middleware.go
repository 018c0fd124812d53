package auth

import (
	"strings"

	"mahzen-backend/internal/config"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey     = "user_id"
	CtxUserRoleKey   = "user_role"
	CtxLocationIDKey = "location_id"
)

// JWTMiddleware: Bearer token'ı doğrular ve kimlik bağlamını locals'a yazar
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get("Authorization"))
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxLocationIDKey, claims.LocationID)

		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireRole: Route grubunu belirli rollere kapatır. İnce taneli yetki
// kararı permission paketinin işi; bu sadece kaba giriş kapısı.
func RequireRole(allowed ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		for _, r := range allowed {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}

// CurrentUserID: Middleware'in locals'a koyduğu kullanıcı ID'sini döndürür
func CurrentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	return userID, nil
}
