package counting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mahzen-backend/internal/audit"
	"mahzen-backend/internal/config"
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
	"mahzen-backend/internal/permission"

	"gorm.io/gorm"
)

// errCountRaced: Aynı (oturum, ürün) için eş zamanlı ilk sayımda kaybeden
// tarafın iç sinyali; dışarı sızmaz, yazım tekrar denenir
var errCountRaced = errors.New("eş zamanlı ilk sayım yarışı")

type RecordCountInput struct {
	ProductID    uint
	UnitsClosed  int
	Measurements []Measurement
	Method       models.CountMethod
	Confidence   *float64
	Notes        string
}

// RecordCount: (oturum, ürün) anahtarıyla upsert. Aynı ürün ikinci kez
// sayılırsa bu artırım değil düzeltilmiş tam sayımdır: önceki değerlerin
// üzerine yazılır (last_write_wins). same_operator politikasında başka
// operatörün kaydı üzerine yazmak Conflict döner. Silme yoktur; düzeltme
// her zaman yeni bir yazımdır ve her yazım denetlenir.
func (s *Service) RecordCount(ctx context.Context, actorID, sessionID uint, in RecordCountInput) (*models.CountEntry, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionCount).AtLeast(permission.LevelEdit) {
		return nil, ErrForbidden
	}

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("%w: sayım sadece aktif oturuma girilebilir (mevcut: %s)", ErrInvalidState, session.Status)
	}

	if in.UnitsClosed < 0 {
		return nil, fmt.Errorf("%w: kapalı şişe adedi negatif olamaz", ErrValidation)
	}
	switch in.Method {
	case models.CountMethodManual, models.CountMethodBarcode, models.CountMethodImageAI:
	default:
		return nil, fmt.Errorf("%w: bilinmeyen sayım yöntemi: %s", ErrValidation, in.Method)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence 0-1 aralığında olmalı", ErrValidation)
	}

	var product models.Product
	if err := database.DB.First(&product, in.ProductID).Error; err != nil {
		return nil, fmt.Errorf("%w: ürün %d", ErrNotFound, in.ProductID)
	}

	presets, err := loadPresets()
	if err != nil {
		return nil, err
	}

	partialVolume, err := ReconcilePartialVolume(in.Measurements, presets, product.BottleVolume)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var entry models.CountEntry
	var before *models.CountEntry
	action := models.AuditActionCreate

	write := func() error {
		before = nil
		action = models.AuditActionCreate

		return database.DB.Transaction(func(tx *gorm.DB) error {
			var existing models.CountEntry
			err := tx.Where("session_id = ? AND product_id = ?", sessionID, in.ProductID).
				First(&existing).Error

			switch {
			case err == nil:
				// Tekrar sayım: politika kontrolü + üzerine yazma
				if s.cfg.RecountPolicy == config.RecountSameOperator && existing.CountedBy != actorID {
					return ErrRecountConflict
				}

				prev := existing
				before = &prev
				action = models.AuditActionUpdate

				existing.UnitsClosed = in.UnitsClosed
				existing.PartialVolume = partialVolume
				existing.CountedBy = actorID
				existing.CountedAt = now
				existing.Method = in.Method
				existing.Confidence = in.Confidence
				existing.Notes = in.Notes

				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				entry = existing
				return nil

			case errors.Is(err, gorm.ErrRecordNotFound):
				entry = models.CountEntry{
					SessionID:     sessionID,
					ProductID:     in.ProductID,
					UnitsClosed:   in.UnitsClosed,
					PartialVolume: partialVolume,
					CountedBy:     actorID,
					CountedAt:     now,
					Method:        in.Method,
					Confidence:    in.Confidence,
					Notes:         in.Notes,
				}
				if err := tx.Create(&entry).Error; err != nil {
					if uniqueViolationOn(err, "idx_count_session_product", "count_entries.session_id") {
						return errCountRaced
					}
					return err
				}
				return nil

			default:
				return err
			}
		})
	}

	// Eş zamanlı ilk sayım yarışı: iki operatör de satırı bulamayıp Create
	// dener, kaybeden unique index'e takılır. Postgres ihlalde transaction'ı
	// düşürdüğünden devam edilemez; transaction baştan açılır ve bu sefer
	// satır bulunup normal tekrar-sayım yolundan (politika dahil) geçilir.
	err = write()
	for attempt := 0; errors.Is(err, errCountRaced) && attempt < 2; attempt++ {
		err = write()
	}
	if err != nil {
		return nil, err
	}

	entry.Product = product

	// Denetim mutasyondan sonra, best-effort: yazılamazsa mutasyon geri
	// alınmaz, sistem hatası olarak loglanır
	var beforeAny any
	if before != nil {
		beforeAny = before
	}
	audit.MustRecord(audit.RecordOptions{
		SessionID:   sessionID,
		EntityType:  "count_entry",
		EntityID:    entry.ID,
		Action:      action,
		ActorID:     actorID,
		ActorName:   actor.Name,
		Description: fmt.Sprintf("Sayım girişi: %s - %d kapalı + %.3fL açık (%s)", product.Name, entry.UnitsClosed, entry.PartialVolume, entry.Method),
		Before:      beforeAny,
		After:       entry,
	})

	return &entry, nil
}

// ListCounts: Oturumun tüm sayım girişleri, en son güncellenen önce
func (s *Service) ListCounts(actorID, sessionID uint) ([]models.CountEntry, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionView).AtLeast(permission.LevelView) {
		return nil, ErrForbidden
	}

	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}

	var entries []models.CountEntry
	if err := database.DB.Preload("Product").
		Where("session_id = ?", sessionID).
		Order("counted_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func loadPresets() (map[uint]float64, error) {
	var presets []models.PourPreset
	if err := database.DB.Find(&presets).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]float64, len(presets))
	for _, p := range presets {
		m[p.ID] = p.Volume
	}
	return m, nil
}
