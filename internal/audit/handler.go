package audit

import (
	"fmt"
	"time"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditRecordResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	SessionID   uint               `json:"session_id"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	ActorID     uint               `json:"actor_id"`
	ActorName   string             `json:"actor_name"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
	Reason      string             `json:"reason,omitempty"`
}

// GET /api/audit-records?session_id=1&entity_type=count_entry&actor_id=2&from=2026-01-01&to=2026-02-01
// Sadece okuma tarafı için; denetim kayıtları üzerinde başka operasyon yok.
func ListAuditRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditRecord{})

		if sidStr := c.Query("session_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err == nil && sid > 0 {
				dbq = dbq.Where("session_id = ?", sid)
			}
		}

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if eidStr := c.Query("entity_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		if aidStr := c.Query("actor_id"); aidStr != "" {
			var aid uint
			if _, err := fmt.Sscan(aidStr, &aid); err == nil && aid > 0 {
				dbq = dbq.Where("actor_id = ?", aid)
			}
		}

		// Tarih aralığı filtresi
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("created_at >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı 'YYYY-MM-DD' olmalı")
			}
			// to günü dahil olsun
			dbq = dbq.Where("created_at < ?", to.AddDate(0, 0, 1))
		}

		var records []models.AuditRecord
		if err := dbq.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Denetim kayıtları listelenemedi")
		}

		resp := make([]AuditRecordResponse, 0, len(records))
		for _, rec := range records {
			resp = append(resp, AuditRecordResponse{
				ID:          rec.ID,
				CreatedAt:   rec.CreatedAt.Format("2006-01-02 15:04:05"),
				SessionID:   rec.SessionID,
				EntityType:  rec.EntityType,
				EntityID:    rec.EntityID,
				Action:      rec.Action,
				ActorID:     rec.ActorID,
				ActorName:   rec.ActorName,
				Description: rec.Description,
				BeforeData:  rec.BeforeData,
				AfterData:   rec.AfterData,
				Reason:      rec.Reason,
			})
		}

		return c.JSON(resp)
	}
}
