package admin

import (
	"strings"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Role       models.UserRole `json:"role"`        // manager veya staff
	LocationID *uint           `json:"location_id"` // Opsiyonel
}

type UserResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	LocationID *uint           `json:"location_id"`
	CreatedAt  string          `json:"created_at"`
}

// POST /api/admin/users (sadece super_admin)
// Operatör hesapları: manager oturum yönetir ve onaylar, staff sadece sayım girer
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		if body.Role != models.RoleManager && body.Role != models.RoleStaff {
			return fiber.NewError(fiber.StatusBadRequest, "Rol manager veya staff olmalı")
		}

		if body.LocationID != nil {
			var loc models.Location
			if err := database.DB.First(&loc, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Mekan bulunamadı")
			}
		}

		var existing models.User
		if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
			LocationID:   body.LocationID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(UserResponse{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
			LocationID: user.LocationID,
			CreatedAt:  user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("name asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, UserResponse{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				Role:       u.Role,
				LocationID: u.LocationID,
				CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
