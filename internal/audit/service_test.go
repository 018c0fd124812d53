package audit

import (
	"testing"

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

func TestWriteRecordSerializesBeforeAfter(t *testing.T) {
	setupTestDB(t)

	type snapshot struct {
		UnitsClosed int `json:"units_closed"`
	}

	err := WriteRecord(RecordOptions{
		SessionID:   1,
		EntityType:  "count_entry",
		EntityID:    7,
		Action:      models.AuditActionUpdate,
		ActorID:     3,
		ActorName:   "Ayşe",
		Description: "Sayım düzeltildi",
		Before:      snapshot{UnitsClosed: 5},
		After:       snapshot{UnitsClosed: 6},
	})
	require.NoError(t, err)

	var rec models.AuditRecord
	require.NoError(t, database.DB.First(&rec).Error)
	assert.JSONEq(t, `{"units_closed":5}`, rec.BeforeData)
	assert.JSONEq(t, `{"units_closed":6}`, rec.AfterData)
	assert.Equal(t, "Ayşe", rec.ActorName)
}

func TestWriteRecordNilBodiesBecomeJSONNull(t *testing.T) {
	setupTestDB(t)

	err := WriteRecord(RecordOptions{
		SessionID:  2,
		EntityType: "counting_session",
		EntityID:   2,
		Action:     models.AuditActionTransition,
		ActorID:    1,
		ActorName:  "Mehmet",
		Reason:     "yanlış başlatıldı",
	})
	require.NoError(t, err)

	var rec models.AuditRecord
	require.NoError(t, database.DB.First(&rec).Error)
	assert.Equal(t, "null", rec.BeforeData)
	assert.Equal(t, "null", rec.AfterData)
	assert.Equal(t, "yanlış başlatıldı", rec.Reason)
}

func TestRecordsAppendOnly(t *testing.T) {
	setupTestDB(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, WriteRecord(RecordOptions{
			SessionID:  1,
			EntityType: "count_entry",
			EntityID:   uint(i + 1),
			Action:     models.AuditActionCreate,
			ActorID:    1,
			ActorName:  "Mehmet",
		}))
	}

	var count int64
	require.NoError(t, database.DB.Model(&models.AuditRecord{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
