package counting

import (
	"context"
	"sync"
	"testing"

	"mahzen-backend/internal/config"
	"mahzen-backend/internal/database"
	"mahzen-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startActiveSession(t *testing.T, svc *Service, managerID uint) *models.CountingSession {
	t.Helper()
	session, err := svc.StartSession(context.Background(), managerID, nil, "")
	require.NoError(t, err)
	return session
}

func TestRecordCountCreateAndOverwrite(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	staffID := seedUser(t, "garson", models.RoleStaff)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	entry, err := svc.RecordCount(context.Background(), staffID, session.ID, RecordCountInput{
		ProductID:    p.ID,
		UnitsClosed:  5,
		Measurements: []Measurement{{Litres: f64(0.25)}},
		Method:       models.CountMethodManual,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, entry.UnitsClosed)
	assert.InDelta(t, 0.25, entry.PartialVolume, 1e-9)
	assert.Equal(t, staffID, entry.CountedBy)

	// Tekrar sayım: artırım değil, düzeltilmiş tam sayım
	entry2, err := svc.RecordCount(context.Background(), staffID, session.ID, RecordCountInput{
		ProductID:   p.ID,
		UnitsClosed: 6,
		Method:      models.CountMethodBarcode,
	})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, entry2.ID, "aynı (oturum, ürün) tek satır")
	assert.Equal(t, 6, entry2.UnitsClosed)
	assert.InDelta(t, 0, entry2.PartialVolume, 1e-9)

	var rows int64
	require.NoError(t, database.DB.Model(&models.CountEntry{}).
		Where("session_id = ? AND product_id = ?", session.ID, p.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestRecordCountIdempotentWritesAuditTwice(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	in := RecordCountInput{
		ProductID:    p.ID,
		UnitsClosed:  5,
		Measurements: []Measurement{{Litres: f64(0.25)}},
		Method:       models.CountMethodManual,
	}

	first, err := svc.RecordCount(context.Background(), managerID, session.ID, in)
	require.NoError(t, err)

	// Aynı veriyle ikinci yazım: efektif durum değişmez ama her yazım denetlenir
	second, err := svc.RecordCount(context.Background(), managerID, session.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first.UnitsClosed, second.UnitsClosed)
	assert.InDelta(t, first.PartialVolume, second.PartialVolume, 1e-9)

	var auditCount int64
	require.NoError(t, database.DB.Model(&models.AuditRecord{}).
		Where("session_id = ? AND entity_type = ?", session.ID, "count_entry").
		Count(&auditCount).Error)
	assert.EqualValues(t, 2, auditCount, "iki yazım = iki denetim kaydı")

	// İlki create, ikincisi update olmalı
	var records []models.AuditRecord
	require.NoError(t, database.DB.
		Where("session_id = ? AND entity_type = ?", session.ID, "count_entry").
		Order("id ASC").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, models.AuditActionCreate, records[0].Action)
	assert.Equal(t, models.AuditActionUpdate, records[1].Action)
	assert.NotEmpty(t, records[1].BeforeData)
}

func TestRecordCountConcurrentFirstWrites(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	// Aynı ürünü ilk kez sayan eş zamanlı operatörler: kaybeden taraf
	// unique index'e takılsa bile hata görmez, tekrar-sayım yolundan geçer
	const n = 4
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		units := i + 1
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
				ProductID: p.ID, UnitsClosed: units, Method: models.CountMethodManual,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		assert.NoError(t, err, "son yazan kazanır, hiçbir yazım ham hatayla düşmez")
	}

	var rows int64
	require.NoError(t, database.DB.Model(&models.CountEntry{}).
		Where("session_id = ? AND product_id = ?", session.ID, p.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	// Her yazım denetlenir: 1 create + (n-1) update
	var auditCount int64
	require.NoError(t, database.DB.Model(&models.AuditRecord{}).
		Where("session_id = ? AND entity_type = ?", session.ID, "count_entry").
		Count(&auditCount).Error)
	assert.EqualValues(t, n, auditCount)
}

func TestCountAuditSnapshotsExcludeProduct(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	_, err := svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 5, Method: models.CountMethodManual,
	})
	require.NoError(t, err)

	var rec models.AuditRecord
	require.NoError(t, database.DB.
		Where("session_id = ? AND entity_type = ?", session.ID, "count_entry").
		First(&rec).Error)

	// Snapshot girişin kendi alanlarıyla sınırlı; ürün gövdesi diff'e girmez
	assert.Contains(t, rec.AfterData, `"UnitsClosed"`)
	assert.NotContains(t, rec.AfterData, `"BottleVolume"`)
}

func TestRecordCountRejectedOutsideActive(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	_, err := svc.CompleteSession(context.Background(), managerID, session.ID)
	require.NoError(t, err)

	// review aşamasında sayım girilemez
	_, err = svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 1, Method: models.CountMethodManual,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordCountSameOperatorPolicy(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	staffID := seedUser(t, "garson", models.RoleStaff)
	p := seedProduct(t, "Kırmızı", 0.75)

	cfg := testConfig()
	cfg.RecountPolicy = config.RecountSameOperator

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(cfg, src, nil)
	session := startActiveSession(t, svc, managerID)

	_, err := svc.RecordCount(context.Background(), staffID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 5, Method: models.CountMethodManual,
	})
	require.NoError(t, err)

	// Başka operatör üzerine yazamaz
	_, err = svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 6, Method: models.CountMethodManual,
	})
	assert.ErrorIs(t, err, ErrRecountConflict)

	// Aynı operatör yazabilir
	entry, err := svc.RecordCount(context.Background(), staffID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 6, Method: models.CountMethodManual,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, entry.UnitsClosed)
}

func TestRecordCountValidation(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	_, err := svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: -1, Method: models.CountMethodManual,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 1, Method: "tahmin",
	})
	assert.ErrorIs(t, err, ErrValidation)

	badConfidence := 1.5
	_, err = svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: p.ID, UnitsClosed: 1, Method: models.CountMethodImageAI, Confidence: &badConfidence,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID: 9999, UnitsClosed: 1, Method: models.CountMethodManual,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordCountWithPourPresets(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p := seedProduct(t, "Kırmızı", 0.75)

	preset := models.PourPreset{Name: "Tek kadeh", Volume: 0.125}
	require.NoError(t, database.DB.Create(&preset).Error)

	src := &fakeSource{lines: baselineLines([]models.Product{p}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	entry, err := svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
		ProductID:   p.ID,
		UnitsClosed: 2,
		Measurements: []Measurement{
			{PresetID: &preset.ID},
			{Litres: f64(0.25)},
		},
		Method: models.CountMethodManual,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.375, entry.PartialVolume, 1e-9)
}

func TestListCountsOrderedNewestFirst(t *testing.T) {
	setupTestDB(t)
	managerID := seedUser(t, "mudur", models.RoleManager)
	p1 := seedProduct(t, "Kırmızı", 0.75)
	p2 := seedProduct(t, "Beyaz", 0.75)

	src := &fakeSource{lines: baselineLines([]models.Product{p1, p2}, 10)}
	svc := NewService(testConfig(), src, nil)
	session := startActiveSession(t, svc, managerID)

	for _, pid := range []uint{p1.ID, p2.ID} {
		_, err := svc.RecordCount(context.Background(), managerID, session.ID, RecordCountInput{
			ProductID: pid, UnitsClosed: 1, Method: models.CountMethodManual,
		})
		require.NoError(t, err)
	}

	entries, err := svc.ListCounts(managerID, session.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, p2.ID, entries[0].ProductID)
	assert.Equal(t, "Beyaz", entries[0].Product.Name)
}
