package models

import "time"

type CountMethod string

const (
	CountMethodManual  CountMethod = "manual"
	CountMethodBarcode CountMethod = "barcode"
	CountMethodImageAI CountMethod = "image_ai"
)

// CountEntry: Bir oturumda bir ürün için girilen fiziksel sayım.
// (session, product) başına tek satır; tekrar sayım upsert ile aynı satırın
// üzerine yazar (silme yok, düzeltme = yeni yazım).
type CountEntry struct {
	ID        uint    `gorm:"primaryKey"`
	SessionID uint    `gorm:"index:idx_count_session_product,unique;not null"`
	ProductID uint    `gorm:"index:idx_count_session_product,unique;not null"`
	Product   Product `json:"-"` // denetim snapshot'ları girişin kendi alanlarıyla sınırlı kalsın

	UnitsClosed   int     `gorm:"not null"` // kapalı şişe adedi
	PartialVolume float64 `gorm:"not null"` // açık şişelerin toplam hacmi (litre)

	CountedBy  uint        `gorm:"not null"`
	CountedAt  time.Time   `gorm:"not null"`
	Method     CountMethod `gorm:"size:20;not null"`
	Confidence *float64    // image_ai için tanıma güveni (0-1)
	Notes      string      `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
