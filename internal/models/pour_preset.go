package models

import "time"

// PourPreset: Açık şişe ölçümünde kullanılan hazır kadeh hacimleri
// (örn. "kadeh" = 0.125L, "yarım şişe" = 0.375L)
type PourPreset struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:50;not null;unique"`
	Volume    float64 `gorm:"not null"` // litre
	CreatedAt time.Time
	UpdatedAt time.Time
}
