package catalog

import (
	"strings"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Producer     string  `json:"producer"`
	Vintage      *int    `json:"vintage"`
	Barcode      string  `json:"barcode"`
	Unit         string  `json:"unit"`
	BottleVolume float64 `json:"bottle_volume"`
	IsActive     bool    `json:"is_active"`
}

type CreateProductRequest struct {
	Name         string  `json:"name"`
	Producer     string  `json:"producer"` // Opsiyonel
	Vintage      *int    `json:"vintage"`  // Opsiyonel
	Barcode      string  `json:"barcode"`  // Opsiyonel
	Unit         string  `json:"unit"`
	BottleVolume float64 `json:"bottle_volume"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Producer     *string  `json:"producer"`
	Vintage      *int     `json:"vintage"`
	Barcode      *string  `json:"barcode"`
	Unit         *string  `json:"unit"`
	BottleVolume *float64 `json:"bottle_volume"`
	IsActive     *bool    `json:"is_active"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Producer:     p.Producer,
		Vintage:      p.Vintage,
		Barcode:      p.Barcode,
		Unit:         p.Unit,
		BottleVolume: p.BottleVolume,
		IsActive:     p.IsActive,
	}
}

// GET /api/products (tüm authenticated kullanıcılar görebilir)
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		// Varsayılan: sadece aktif ürünler
		if c.Query("include_inactive") != "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(producer) LIKE ?", like, like)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/barcode/:code
// Barkod okuyucu akışı: okunan barkodu ürüne çevirir, sayım girişi sonra
// normal recordCount endpoint'inden yapılır
func GetProductByBarcodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.Params("code"))
		if code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Barkod zorunlu")
		}

		var product models.Product
		if err := database.DB.Where("barcode = ? AND is_active = ?", code, true).First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bu barkodla ürün bulunamadı")
		}

		return c.JSON(toProductResponse(&product))
	}
}

// POST /api/admin/products (sadece super_admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		body.Barcode = strings.TrimSpace(body.Barcode)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name ve unit zorunlu")
		}
		if body.BottleVolume <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Şişe hacmi pozitif olmalı (litre)")
		}

		// Barkod unique kontrolü (boş değilse)
		if body.Barcode != "" {
			var existing models.Product
			if err := database.DB.Where("barcode = ?", body.Barcode).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu barkod zaten kullanılıyor")
			}
		}

		p := models.Product{
			Name:         body.Name,
			Producer:     strings.TrimSpace(body.Producer),
			Vintage:      body.Vintage,
			Barcode:      body.Barcode,
			Unit:         body.Unit,
			BottleVolume: body.BottleVolume,
			IsActive:     true,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name boş olamaz")
			}
			p.Name = name
		}
		if body.Producer != nil {
			p.Producer = strings.TrimSpace(*body.Producer)
		}
		if body.Vintage != nil {
			p.Vintage = body.Vintage
		}
		if body.Barcode != nil {
			p.Barcode = strings.TrimSpace(*body.Barcode)
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Unit boş olamaz")
			}
			p.Unit = unit
		}
		if body.BottleVolume != nil {
			if *body.BottleVolume <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Şişe hacmi pozitif olmalı (litre)")
			}
			p.BottleVolume = *body.BottleVolume
		}
		if body.IsActive != nil {
			p.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toProductResponse(&p))
	}
}

// DELETE /api/admin/products/:id
// Geçmiş sayımlar ürüne referans verdiği için fiziksel silme yok, pasife çekilir
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		p.IsActive = false
		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün pasife çekilemedi")
		}

		return c.JSON(fiber.Map{"message": "Ürün pasife çekildi"})
	}
}
