package admin

import (
	"strings"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateLocationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // Opsiyonel
}

type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func toLocationResponse(l *models.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		Phone:     l.Phone,
		CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/locations
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mekan adı zorunlu")
		}

		loc := models.Location{
			Name:    body.Name,
			Address: strings.TrimSpace(body.Address),
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mekan oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toLocationResponse(&loc))
	}
}

// GET /api/admin/locations
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locations []models.Location
		if err := database.DB.Order("name asc").Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mekanlar listelenemedi")
		}

		res := make([]LocationResponse, 0, len(locations))
		for i := range locations {
			res = append(res, toLocationResponse(&locations[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/locations/:id
func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mekan bulunamadı")
		}
		return c.JSON(toLocationResponse(&loc))
	}
}

// PUT /api/admin/locations/:id
func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mekan bulunamadı")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Mekan adı boş olamaz")
			}
			loc.Name = name
		}
		if body.Address != nil {
			loc.Address = strings.TrimSpace(*body.Address)
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mekan güncellenemedi")
		}

		return c.JSON(toLocationResponse(&loc))
	}
}
