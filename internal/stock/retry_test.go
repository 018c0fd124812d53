package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func seedApprovedSession(t *testing.T) *models.CountingSession {
	t.Helper()
	now := time.Now()
	session := models.CountingSession{
		Code:      "SAYIM-test1234",
		Status:    models.SessionApproved,
		StartedBy: 1,
		StartedAt: now,
	}
	require.NoError(t, database.DB.Create(&session).Error)
	return &session
}

type stubCommitter struct {
	mu       sync.Mutex
	failures int
	calls    int
	docID    string
}

func (s *stubCommitter) SubmitApprovedSession(ctx context.Context, sessionID uint, code string, lines []CommitLine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("bağlantı reddedildi")
	}
	return s.docID, nil
}

func (s *stubCommitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCommitQueueRetriesUntilSuccess(t *testing.T) {
	setupTestDB(t)
	session := seedApprovedSession(t)

	committer := &stubCommitter{failures: 2, docID: "DOC-7"}
	queue := NewCommitQueue(committer, time.Second, 5, 2*time.Millisecond)
	queue.Start()

	queue.Enqueue(CommitJob{
		SessionID: session.ID,
		Code:      session.Code,
		ActorID:   1,
		ActorName: "Mehmet",
		Lines:     []CommitLine{{ProductID: 1, Expected: 10, CountedUnits: 9, Variance: -1}},
	})

	require.Eventually(t, func() bool {
		var s models.CountingSession
		if err := database.DB.First(&s, session.ID).Error; err != nil {
			return false
		}
		return s.ExternalDocumentID == "DOC-7"
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, committer.callCount())

	// Başarılı commit denetim izine düşer
	var rec models.AuditRecord
	require.NoError(t, database.DB.
		Where("session_id = ? AND action = ?", session.ID, models.AuditActionCommit).
		First(&rec).Error)
	assert.Contains(t, rec.Description, "DOC-7")
}

func TestCommitQueueStopHaltsWorker(t *testing.T) {
	committer := &stubCommitter{docID: "DOC-1"}
	queue := NewCommitQueue(committer, time.Second, 3, time.Millisecond)
	queue.Start()
	queue.Stop()

	// Worker'ın çıkması için kısa bekleme; sonrasında kuyruğa atılan iş
	// işlenmemeli
	time.Sleep(20 * time.Millisecond)
	queue.Enqueue(CommitJob{SessionID: 1, Code: "SAYIM-durdu"})

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, committer.callCount())
}

func TestCommitQueueGivesUpAfterMaxAttempts(t *testing.T) {
	setupTestDB(t)
	session := seedApprovedSession(t)

	committer := &stubCommitter{failures: 100}
	queue := NewCommitQueue(committer, time.Second, 3, 2*time.Millisecond)
	queue.Start()

	queue.Enqueue(CommitJob{SessionID: session.ID, Code: session.Code, ActorID: 1, ActorName: "Mehmet"})

	require.Eventually(t, func() bool {
		return committer.callCount() == 3
	}, 2*time.Second, 5*time.Millisecond)

	// Bırakıldıktan sonra yeni deneme olmamalı
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, committer.callCount())

	// Oturum approved kalır, belge numarası boş: manuel müdahale gerekir
	var s models.CountingSession
	require.NoError(t, database.DB.First(&s, session.ID).Error)
	assert.Equal(t, models.SessionApproved, s.Status)
	assert.Empty(t, s.ExternalDocumentID)
}
