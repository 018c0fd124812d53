package counting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mahzen-backend/internal/audit"
	"mahzen-backend/internal/config"
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
	"mahzen-backend/internal/permission"
	"mahzen-backend/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service: Sayım oturumu yaşam döngüsü + sayım defteri.
// preparing → active → review → approved | cancelled
type Service struct {
	cfg     *config.Config
	source  stock.Source
	commits *stock.CommitQueue
}

func NewService(cfg *config.Config, source stock.Source, commits *stock.CommitQueue) *Service {
	return &Service{cfg: cfg, source: source, commits: commits}
}

var openStatuses = []models.SessionStatus{
	models.SessionPreparing,
	models.SessionActive,
	models.SessionReview,
}

// StartSession: Yeni sayım oturumu başlatır. "Açık oturum yok mu kontrol et,
// sonra oluştur" tek transaction içinde yapılır; yarış durumunda partial
// unique index ikinci oturumu reddeder. Baseline yüklemesi de aynı
// transaction'dadır: yükleme başarısız veya boş dönerse HİÇBİR satır
// kalıcı olmaz (create-or-nothing), cancelled bir artık oturum da kalmaz.
func (s *Service) StartSession(ctx context.Context, actorID uint, locationID *uint, notes string) (*models.CountingSession, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionStart).AtLeast(permission.LevelEdit) {
		return nil, ErrForbidden
	}

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	session := &models.CountingSession{
		Code:       "SAYIM-" + uuid.New().String()[:8],
		Status:     models.SessionPreparing,
		LocationID: locationID,
		Notes:      notes,
		StartedBy:  actorID,
		StartedAt:  time.Now(),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Ön kontrol; asıl garanti idx_counting_sessions_single_open
		var open int64
		if err := tx.Model(&models.CountingSession{}).
			Where("status IN ?", openStatuses).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrSessionExists
		}

		if err := tx.Create(session).Error; err != nil {
			// Sadece tek-açık-oturum index'i Conflict demektir; Code çakışması
			// gibi başka bir unique ihlali olduğu gibi yukarı çıkar
			if uniqueViolationOn(err, "idx_counting_sessions_single_open") {
				return ErrSessionExists
			}
			return err
		}

		// Beklenen stok baseline'ını harici sistemden çek (süre sınırlı)
		loadCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
		defer cancel()

		lines, err := s.source.LoadExpectedStock(loadCtx, locationID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: beklenen stok boş döndü, sayım başlatılamaz", ErrValidation)
		}

		expected := make([]models.ExpectedStockLine, 0, len(lines))
		for _, l := range lines {
			expected = append(expected, models.ExpectedStockLine{
				SessionID:      session.ID,
				ProductID:      l.ProductID,
				ExpectedAmount: l.ExpectedAmount,
				ExpectedUnit:   l.ExpectedUnit,
			})
		}
		if err := tx.CreateInBatches(expected, 200).Error; err != nil {
			if uniqueViolationOn(err, "idx_expected_session_product", "expected_stock_lines.session_id") {
				return fmt.Errorf("%w: beklenen stok aynı ürünü birden fazla kez içeriyor", ErrValidation)
			}
			return err
		}

		now := time.Now()
		session.Status = models.SessionActive
		session.ExpectedStockLoadedAt = &now
		session.ExpectedStockCount = len(lines)

		return tx.Model(&models.CountingSession{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"status":                   models.SessionActive,
				"expected_stock_loaded_at": now,
				"expected_stock_count":     len(lines),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	audit.MustRecord(audit.RecordOptions{
		SessionID:   session.ID,
		EntityType:  "counting_session",
		EntityID:    session.ID,
		Action:      models.AuditActionTransition,
		ActorID:     actorID,
		ActorName:   actor.Name,
		Description: fmt.Sprintf("Sayım başlatıldı (%s, %d ürünlük baseline)", session.Code, session.ExpectedStockCount),
		After:       session,
	})

	return session, nil
}

// CompleteSession: active → review geçişi
func (s *Service) CompleteSession(ctx context.Context, actorID, sessionID uint) (*models.CountingSession, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionComplete).AtLeast(permission.LevelEdit) {
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
		return nil, fmt.Errorf("%w: %s oturumu tamamlanamaz", ErrInvalidState, session.Status)
	}

	before := *session
	now := time.Now()

	// status koşullu update: eş zamanlı geçiş yarışında ikinci istek kaybeder
	res := database.DB.Model(&models.CountingSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":       models.SessionReview,
			"completed_by": actorID,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: oturum bu arada başka bir duruma geçmiş", ErrInvalidState)
	}

	session.Status = models.SessionReview
	session.CompletedBy = &actorID
	session.CompletedAt = &now

	audit.MustRecord(audit.RecordOptions{
		SessionID:   session.ID,
		EntityType:  "counting_session",
		EntityID:    session.ID,
		Action:      models.AuditActionTransition,
		ActorID:     actorID,
		ActorName:   actor.Name,
		Description: "Sayım tamamlandı, incelemeye alındı",
		Before:      before,
		After:       session,
	})

	return session, nil
}

// ApproveSession: review → approved geçişi. Lokal onay ile harici commit
// bilinçli olarak ayrıktır: commit kuyruğa atılır, başarısız olursa oturum
// approved KALIR ve arka planda tekrar denenir. Operatör harici sistemin
// erişilebilirliğini beklemez.
func (s *Service) ApproveSession(ctx context.Context, actorID, sessionID uint) (*models.CountingSession, *VarianceReport, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionApprove).AtLeast(permission.LevelFull) {
		return nil, nil, ErrForbidden
	}

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != models.SessionReview {
		return nil, nil, fmt.Errorf("%w: sadece incelemedeki oturum onaylanabilir (mevcut: %s)", ErrInvalidState, session.Status)
	}

	report, err := s.varianceReport(sessionID)
	if err != nil {
		return nil, nil, err
	}

	before := *session
	now := time.Now()

	res := database.DB.Model(&models.CountingSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionReview).
		Updates(map[string]interface{}{
			"status":      models.SessionApproved,
			"approved_by": actorID,
			"approved_at": now,
		})
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, fmt.Errorf("%w: oturum bu arada başka bir duruma geçmiş", ErrInvalidState)
	}

	session.Status = models.SessionApproved
	session.ApprovedBy = &actorID
	session.ApprovedAt = &now

	audit.MustRecord(audit.RecordOptions{
		SessionID:   session.ID,
		EntityType:  "counting_session",
		EntityID:    session.ID,
		Action:      models.AuditActionTransition,
		ActorID:     actorID,
		ActorName:   actor.Name,
		Description: fmt.Sprintf("Sayım onaylandı (%d üründe yüksek varyans)", report.HighVarianceCount),
		Before:      before,
		After:       session,
	})

	// Onay sonrası commit: fire-and-forget + tekrar deneme
	if s.commits != nil {
		lines := make([]stock.CommitLine, 0, len(report.Lines))
		for _, l := range report.Lines {
			lines = append(lines, stock.CommitLine{
				ProductID:    l.ProductID,
				Expected:     l.Expected,
				CountedUnits: l.Counted,
				Variance:     l.Variance,
			})
		}
		s.commits.Enqueue(stock.CommitJob{
			SessionID: session.ID,
			Code:      session.Code,
			ActorID:   actorID,
			ActorName: actor.Name,
			Lines:     lines,
		})
	}

	return session, report, nil
}

// CancelSession: Oturumu iptal eder (sadece onay öncesi). Sayım girişleri
// geçici veridir, silinir; iptal olayının kendisi denetim kaydına girer.
func (s *Service) CancelSession(ctx context.Context, actorID, sessionID uint, reason string) (*models.CountingSession, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionCancel).AtLeast(permission.LevelEdit) {
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
	if session.Status != models.SessionPreparing && session.Status != models.SessionActive {
		return nil, fmt.Errorf("%w: %s oturumu iptal edilemez", ErrInvalidState, session.Status)
	}

	before := *session

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CountingSession{}).
			Where("id = ? AND status IN ?", sessionID, []models.SessionStatus{models.SessionPreparing, models.SessionActive}).
			Update("status", models.SessionCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: oturum bu arada başka bir duruma geçmiş", ErrInvalidState)
		}

		return tx.Where("session_id = ?", sessionID).Delete(&models.CountEntry{}).Error
	})
	if err != nil {
		return nil, err
	}

	session.Status = models.SessionCancelled

	audit.MustRecord(audit.RecordOptions{
		SessionID:   session.ID,
		EntityType:  "counting_session",
		EntityID:    session.ID,
		Action:      models.AuditActionTransition,
		ActorID:     actorID,
		ActorName:   actor.Name,
		Description: "Sayım iptal edildi, girişler silindi",
		Before:      before,
		After:       session,
		Reason:      reason,
	})

	return session, nil
}

// GetSession: Tek oturum detayı
func (s *Service) GetSession(actorID, sessionID uint) (*models.CountingSession, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionView).AtLeast(permission.LevelView) {
		return nil, ErrForbidden
	}
	return s.session(sessionID)
}

// ListSessions: Tüm oturumlar, en yeni önce
func (s *Service) ListSessions(actorID uint) ([]models.CountingSession, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionView).AtLeast(permission.LevelView) {
		return nil, ErrForbidden
	}

	var sessions []models.CountingSession
	if err := database.DB.Preload("Location").Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Variance: Oturumun varyans raporu (saf projeksiyon, her çağrıda
// baseline + defterden yeniden hesaplanır)
func (s *Service) Variance(actorID, sessionID uint) (*VarianceReport, error) {
	if !permission.ForActor(actorID, permission.ModuleInventory, permission.ActionView).AtLeast(permission.LevelView) {
		return nil, ErrForbidden
	}

	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}

	return s.varianceReport(sessionID)
}

func (s *Service) varianceReport(sessionID uint) (*VarianceReport, error) {
	var expected []models.ExpectedStockLine
	if err := database.DB.Preload("Product").
		Where("session_id = ?", sessionID).
		Find(&expected).Error; err != nil {
		return nil, err
	}

	var counts []models.CountEntry
	if err := database.DB.Preload("Product").
		Where("session_id = ?", sessionID).
		Find(&counts).Error; err != nil {
		return nil, err
	}

	report := CalculateVariance(expected, counts, s.cfg.HighVarianceThreshold)
	return &report, nil
}

func (s *Service) session(sessionID uint) (*models.CountingSession, error) {
	var session models.CountingSession
	if err := database.DB.First(&session, sessionID).Error; err != nil {
		return nil, fmt.Errorf("%w: oturum %d", ErrNotFound, sessionID)
	}
	return &session, nil
}

func (s *Service) actor(actorID uint) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, actorID).Error; err != nil {
		return nil, fmt.Errorf("%w: kullanıcı %d", ErrNotFound, actorID)
	}
	return &user, nil
}

// isUniqueViolation: Sürücüden bağımsız unique ihlali tespiti
// (postgres "duplicate key", sqlite "UNIQUE constraint failed")
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// uniqueViolationOn: İhlalin hangi index'ten geldiğini mesajdan ayırt eder.
// Postgres constraint adını yazar; sqlite sütun listesini, ifade index'lerinde
// ise index adını yazar — bu yüzden birden fazla anahtar kabul edilir.
func uniqueViolationOn(err error, keys ...string) bool {
	if !isUniqueViolation(err) {
		return false
	}
	msg := err.Error()
	for _, k := range keys {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}
