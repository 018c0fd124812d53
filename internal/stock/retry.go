package stock

import (
	"context"
	"log"
	"time"

	"mahzen-backend/internal/audit"
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"
)

// CommitJob: Onay sonrası harici sisteme gönderilecek iş
type CommitJob struct {
	SessionID uint
	Code      string
	ActorID   uint
	ActorName string
	Lines     []CommitLine
	attempt   int
}

// CommitQueue: Onay commit'lerini arka planda yürütür. Lokal onay harici
// sistemin erişilebilirliğine bağlanmaz: commit başarısız olursa oturum
// approved kalır, iş artan backoff ile tekrar denenir. Tekrar gönderim
// Committer tarafında idempotent olduğundan güvenlidir.
type CommitQueue struct {
	committer   Committer
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	jobs        chan CommitJob
	stop        chan struct{}
}

// Kuyruk doluysa taşan iş en fazla bu kadar bekletilir, sonra loglanıp düşürülür.
// Gönderim idempotent olduğundan düşen iş operatör tarafından tekrar tetiklenebilir.
const enqueueWait = time.Minute

func NewCommitQueue(committer Committer, timeout time.Duration, maxAttempts int, backoff time.Duration) *CommitQueue {
	return &CommitQueue{
		committer:   committer,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		jobs:        make(chan CommitJob, 64),
		stop:        make(chan struct{}),
	}
}

// Start: Worker goroutine'i başlatır. Stop çağrılana kadar çalışır.
func (q *CommitQueue) Start() {
	go func() {
		for {
			select {
			case job := <-q.jobs:
				q.process(job)
			case <-q.stop:
				return
			}
		}
	}()
}

// Stop: Worker'ı ve bekleyen Enqueue'ları sonlandırır
func (q *CommitQueue) Stop() {
	close(q.stop)
}

// Enqueue: İşi kuyruğa atar, çağıranı bloklamaz
func (q *CommitQueue) Enqueue(job CommitJob) {
	select {
	case q.jobs <- job:
	default:
		// Kuyruk dolu; onay akışını bloklamadan sınırlı süre ayrı goroutine beklesin
		go func() {
			timer := time.NewTimer(enqueueWait)
			defer timer.Stop()

			select {
			case q.jobs <- job:
			case <-q.stop:
			case <-timer.C:
				log.Printf("[HATA] Commit kuyruğu %v boyunca açılmadı, oturum %d işi düşürüldü", enqueueWait, job.SessionID)
			}
		}()
	}
}

func (q *CommitQueue) process(job CommitJob) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	docID, err := q.committer.SubmitApprovedSession(ctx, job.SessionID, job.Code, job.Lines)
	cancel()

	if err == nil {
		if dbErr := database.DB.Model(&models.CountingSession{}).
			Where("id = ?", job.SessionID).
			Update("external_document_id", docID).Error; dbErr != nil {
			log.Printf("[HATA] commit belgesi kaydedilemedi (oturum %d, belge %s): %v", job.SessionID, docID, dbErr)
		}

		audit.MustRecord(audit.RecordOptions{
			SessionID:   job.SessionID,
			EntityType:  "counting_session",
			EntityID:    job.SessionID,
			Action:      models.AuditActionCommit,
			ActorID:     job.ActorID,
			ActorName:   job.ActorName,
			Description: "Onaylanan sayım harici stok sistemine commit edildi (belge: " + docID + ")",
		})

		log.Printf("Oturum %d harici sisteme commit edildi, belge: %s", job.SessionID, docID)
		return
	}

	job.attempt++
	if job.attempt >= q.maxAttempts {
		log.Printf("[HATA] Oturum %d commit'i %d denemede başarısız, bırakılıyor: %v", job.SessionID, job.attempt, err)
		return
	}

	// Artan backoff: backoff * 2^(attempt-1)
	delay := q.backoff << (job.attempt - 1)
	log.Printf("[WARN] Oturum %d commit'i başarısız (%d. deneme), %v sonra tekrar: %v", job.SessionID, job.attempt, delay, err)

	time.AfterFunc(delay, func() {
		q.Enqueue(job)
	})
}
