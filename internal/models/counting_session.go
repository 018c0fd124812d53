package models

import "time"

type SessionStatus string

const (
	SessionPreparing SessionStatus = "preparing"
	SessionActive    SessionStatus = "active"
	SessionReview    SessionStatus = "review"
	SessionApproved  SessionStatus = "approved"
	SessionCancelled SessionStatus = "cancelled"
)

// IsTerminal: approved ve cancelled durumları değiştirilemez
func (s SessionStatus) IsTerminal() bool {
	return s == SessionApproved || s == SessionCancelled
}

// IsOpen: Sistem genelinde aynı anda en fazla bir açık oturum olabilir
func (s SessionStatus) IsOpen() bool {
	return s == SessionPreparing || s == SessionActive || s == SessionReview
}

// CountingSession: Bir sayım oturumu. Başlangıçta beklenen stok baseline'ı
// dondurulur, operatörler bu baseline'a karşı fiziksel sayım girer.
type CountingSession struct {
	ID         uint          `gorm:"primaryKey"`
	Code       string        `gorm:"size:50;uniqueIndex;not null"` // insan okunur kod (SAYIM-xxxxxxxx)
	Status     SessionStatus `gorm:"size:20;not null;index"`
	LocationID *uint         `gorm:"index"`
	Location   *Location
	Notes      string `gorm:"size:255"`

	StartedBy uint `gorm:"not null"`
	StartedAt time.Time

	ExpectedStockLoadedAt *time.Time
	ExpectedStockCount    int `gorm:"not null;default:0"`

	CompletedBy *uint
	CompletedAt *time.Time
	ApprovedBy  *uint
	ApprovedAt  *time.Time

	// Onaylanan oturum harici stok sistemine commit edildiğinde dolar
	ExternalDocumentID string `gorm:"size:100"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
