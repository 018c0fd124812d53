package database

import (
	"log"

	"mahzen-backend/internal/config"
	"mahzen-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: AutoMigrate + manuel DDL. Testler aynı şemayı sqlite üzerinde
// kurabilsin diye Init'ten ayrı tutuluyor.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Product{},
		&models.PourPreset{},
		&models.CountingSession{},
		&models.ExpectedStockLine{},
		&models.CountEntry{},
		&models.AuditRecord{},
	)
	if err != nil {
		return err
	}

	// Tek açık oturum invariant'ı: preparing/active/review durumundaki satırlar
	// için partial unique index. İfade tüm açık satırlarda true döndüğünden
	// unique olması "en fazla bir açık oturum" demektir. Bu kural veritabanı
	// sınırında uygulanır, process içi lock değil — birden fazla instance
	// çalışsa bile iki operatör aynı anda oturum başlatamaz.
	// (Aynı sözdizimi hem PostgreSQL hem SQLite'ta geçerli.)
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_counting_sessions_single_open
		ON counting_sessions ((status IN ('preparing','active','review')))
		WHERE status IN ('preparing','active','review')
	`).Error; err != nil {
		return err
	}

	return nil
}
