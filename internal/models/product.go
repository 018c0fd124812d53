package models

import "time"

type Product struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:150;not null"`
	Producer     string  `gorm:"size:100"`          // Üretici/şarap evi
	Vintage      *int    // Rekolte yılı (opsiyonel, örn. 2019)
	Barcode      string  `gorm:"size:50;index"`     // Barkod (EAN-13 vs.)
	Unit         string  `gorm:"size:20;not null"`  // şişe, kutu, teneke vs.
	BottleVolume float64 `gorm:"not null"`          // Şişe hacmi (litre), örn. 0.75
	IsActive     bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
