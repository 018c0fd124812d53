package models

import "time"

// ExpectedStockLine: Oturum başında harici sistemden çekilen beklenen stok satırı.
// Bir kez yazılır, sonrasında asla değiştirilmez (baseline dondurulur).
type ExpectedStockLine struct {
	ID             uint `gorm:"primaryKey"`
	SessionID      uint `gorm:"index:idx_expected_session_product,unique;not null"`
	ProductID      uint `gorm:"index:idx_expected_session_product,unique;not null"`
	Product        Product
	ExpectedAmount float64 `gorm:"not null"`         // kanonik birim (şişe adedi)
	ExpectedUnit   string  `gorm:"size:20;not null"` // harici sistemin bildirdiği birim
	CreatedAt      time.Time
}
