package models

import "time"

// Location: Sayımın yapıldığı mekan (bar, mahzen, depo vs.)
type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:30"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
