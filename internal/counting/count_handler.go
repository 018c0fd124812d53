package counting

import (
	"mahzen-backend/internal/auth"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecordCountRequest struct {
	ProductID    uint               `json:"product_id"`
	UnitsClosed  int                `json:"units_closed"`
	Measurements []Measurement      `json:"measurements"` // açık şişe ölçümleri
	Method       models.CountMethod `json:"method"`
	Confidence   *float64           `json:"confidence"` // image_ai için
	Notes        string             `json:"notes"`
}

type CountEntryResponse struct {
	ID            uint               `json:"id"`
	SessionID     uint               `json:"session_id"`
	ProductID     uint               `json:"product_id"`
	ProductName   string             `json:"product_name"`
	UnitsClosed   int                `json:"units_closed"`
	PartialVolume float64            `json:"partial_volume"`
	TotalUnits    float64            `json:"total_units"`
	TotalVolume   float64            `json:"total_volume"`
	CountedBy     uint               `json:"counted_by"`
	CountedAt     string             `json:"counted_at"`
	Method        models.CountMethod `json:"method"`
	Confidence    *float64           `json:"confidence,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

func toCountEntryResponse(e *models.CountEntry) CountEntryResponse {
	return CountEntryResponse{
		ID:            e.ID,
		SessionID:     e.SessionID,
		ProductID:     e.ProductID,
		ProductName:   e.Product.Name,
		UnitsClosed:   e.UnitsClosed,
		PartialVolume: e.PartialVolume,
		TotalUnits:    TotalUnits(e.UnitsClosed, e.PartialVolume, e.Product.BottleVolume),
		TotalVolume:   TotalVolume(e.UnitsClosed, e.PartialVolume, e.Product.BottleVolume),
		CountedBy:     e.CountedBy,
		CountedAt:     e.CountedAt.Format("2006-01-02 15:04:05"),
		Method:        e.Method,
		Confidence:    e.Confidence,
		Notes:         e.Notes,
	}
}

// POST /api/counting-sessions/:id/counts
// Barkod, görüntü tanıma ve manuel arama hepsi buraya düşer — ürün ID'sinin
// nasıl bulunduğu motorun umurunda değildir, sadece method alanına yazılır.
func RecordCountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body RecordCountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Method == "" {
			body.Method = models.CountMethodManual
		}

		entry, err := svc.RecordCount(c.Context(), userID, sessionID, RecordCountInput{
			ProductID:    body.ProductID,
			UnitsClosed:  body.UnitsClosed,
			Measurements: body.Measurements,
			Method:       body.Method,
			Confidence:   body.Confidence,
			Notes:        body.Notes,
		})
		if err != nil {
			return httpError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toCountEntryResponse(entry))
	}
}

// GET /api/counting-sessions/:id/counts
func ListCountsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		entries, err := svc.ListCounts(userID, sessionID)
		if err != nil {
			return httpError(err)
		}

		resp := make([]CountEntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, toCountEntryResponse(&entries[i]))
		}
		return c.JSON(resp)
	}
}
