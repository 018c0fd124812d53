package audit

import (
	"encoding/json"
	"fmt"
	"log"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
)

type RecordOptions struct {
	SessionID   uint
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	ActorID     uint
	ActorName   string
	Description string
	Before      any
	After       any
	Reason      string
}

// WriteRecord: Tek bir denetim kaydı ekler. Kayıtlar append-only'dir;
// güncelleme veya silme operasyonu yoktur.
func WriteRecord(opts RecordOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	rec := models.AuditRecord{
		SessionID:   opts.SessionID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		ActorID:     opts.ActorID,
		ActorName:   opts.ActorName,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Reason:      opts.Reason,
	}

	if err := database.DB.Create(&rec).Error; err != nil {
		return fmt.Errorf("denetim kaydı yazılamadı: %w", err)
	}

	return nil
}

// MustRecord: Mutasyon başarılı olduktan SONRA çağrılır. Denetim yazımı
// başarısız olursa mutasyon geri alınmaz — sistem hatası olarak loglanır
// ve devam edilir (operasyonel kaydın kalıcılığı öncelikli).
func MustRecord(opts RecordOptions) {
	if err := WriteRecord(opts); err != nil {
		log.Printf("[HATA] denetim kaydı yazılamadı (session=%d entity=%s/%d action=%s): %v",
			opts.SessionID, opts.EntityType, opts.EntityID, opts.Action, err)
	}
}
