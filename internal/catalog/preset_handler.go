package catalog

import (
	"strings"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PourPresetResponse struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"` // litre
}

type CreatePourPresetRequest struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

// GET /api/pour-presets
func ListPourPresetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var presets []models.PourPreset
		if err := database.DB.Order("volume asc").Find(&presets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kadeh preset'leri listelenemedi")
		}

		res := make([]PourPresetResponse, 0, len(presets))
		for _, p := range presets {
			res = append(res, PourPresetResponse{ID: p.ID, Name: p.Name, Volume: p.Volume})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/pour-presets (sadece super_admin)
func CreatePourPresetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePourPresetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}
		if body.Volume <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Hacim pozitif olmalı (litre)")
		}

		p := models.PourPreset{Name: body.Name, Volume: body.Volume}
		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Preset oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(PourPresetResponse{ID: p.ID, Name: p.Name, Volume: p.Volume})
	}
}

// DELETE /api/admin/pour-presets/:id
func DeletePourPresetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := database.DB.Delete(&models.PourPreset{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Preset silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Preset silindi"})
	}
}
