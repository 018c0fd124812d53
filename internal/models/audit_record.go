package models

import "time"

type AuditAction string

const (
	AuditActionCreate     AuditAction = "create"
	AuditActionUpdate     AuditAction = "update"
	AuditActionTransition AuditAction = "transition" // oturum durum geçişi
	AuditActionCommit     AuditAction = "commit"     // harici sisteme commit sonucu
)

// AuditRecord: Append-only denetim kaydı. Her durum geçişi ve her veri
// mutasyonu buraya yazılır. Güncelleme ve silme işlemi YOKTUR —
// "kim, neyi, ne zaman değiştirdi" sorusunun tek kaynağı budur.
type AuditRecord struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	SessionID uint `gorm:"index;not null"`

	// Hangi entity? (örn: "counting_session", "count_entry")
	EntityType string `gorm:"size:50;index"`
	EntityID   uint   `gorm:"index"`

	Action AuditAction `gorm:"size:20"`

	ActorID   uint   `gorm:"index;not null"`
	ActorName string `gorm:"size:100"` // denormalize, kullanıcı silinse de okunur kalsın

	// Opsiyonel açıklama (küçük bir özet)
	Description string `gorm:"size:255"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb"`
	AfterData  string `gorm:"type:jsonb"`

	Reason string `gorm:"size:255"`
}
