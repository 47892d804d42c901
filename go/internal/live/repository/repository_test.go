package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var timerColumns = []string{
	"session_id", "phase", "kind", "remaining_seconds", "remainder_ms", "is_running", "alarm_muted",
	"snooze_until", "version", "updated_at",
}

func TestGetWorkshop(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "intro_slides", "outro_slides", "created_at"}).
			AddRow(id.String(), "Agents Day", []byte(`[{"title":"Welcome","body":"wifi: guest"}]`), nil, now))

	w, err := NewRepository(db).GetWorkshop(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, "Agents Day", w.Title)
	require.Len(t, w.IntroSlides, 1)
	assert.Equal(t, models.SlideContent{Title: "Welcome", Body: "wifi: guest"}, w.IntroSlides[0])
	assert.Empty(t, w.OutroSlides)
}

func TestGetWorkshop_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1").WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := NewRepository(db).GetWorkshop(context.Background(), id)
	assert.ErrorIs(t, err, live.ErrNotFound)
}

func TestListSessions_Ordered(t *testing.T) {
	db, mock := newMockDB(t)
	workshopID := uuid.New()
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE workshop_id = \\$1 ORDER BY position").
		WithArgs(workshopID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workshop_id", "title", "position", "build_duration_sec", "discuss_duration_sec"}).
			AddRow(first.String(), workshopID.String(), "Warmup", 1, 300, 120).
			AddRow(second.String(), workshopID.String(), "Deep dive", 2, 900, 300))

	sessions, err := NewRepository(db).ListSessions(context.Background(), workshopID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0].ID)
	assert.Equal(t, 900, sessions[1].BuildDurationSec)
	assert.Equal(t, 300, sessions[1].Duration(models.PhaseKindDiscuss))
}

func TestGetPointer(t *testing.T) {
	db, mock := newMockDB(t)
	workshopID, sessionID := uuid.New(), uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cols := []string{"workshop_id", "active_session_id", "active_slide_index", "display_mode", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM workshop_pointers WHERE workshop_id = \\$1").WithArgs(workshopID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(workshopID.String(), sessionID.String(), 3, "FOCUS", now))
	mock.ExpectQuery("SELECT (.+) FROM workshop_pointers WHERE workshop_id = \\$1").WithArgs(workshopID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(workshopID.String(), nil, 0, "STANDARD", now))

	repo := NewRepository(db)

	p, err := repo.GetPointer(context.Background(), workshopID)
	require.NoError(t, err)
	require.NotNil(t, p.ActiveSessionID)
	assert.Equal(t, sessionID, *p.ActiveSessionID)
	assert.Equal(t, 3, p.ActiveSlideIndex)
	assert.Equal(t, models.DisplayModeFocus, p.DisplayMode)

	p, err = repo.GetPointer(context.Background(), workshopID)
	require.NoError(t, err)
	assert.Nil(t, p.ActiveSessionID)
}

func TestSavePointer(t *testing.T) {
	db, mock := newMockDB(t)
	workshopID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO workshop_pointers (.+) ON CONFLICT \\(workshop_id\\) DO UPDATE").
		WithArgs(workshopID, sqlmock.AnyArg(), 2, "PAUSE", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewRepository(db).SavePointer(context.Background(), &models.WorkshopPointer{
		WorkshopID:       workshopID,
		ActiveSlideIndex: 2,
		DisplayMode:      models.DisplayModePause,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
}

func TestGetTimer(t *testing.T) {
	db, mock := newMockDB(t)
	sessionID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snooze := now.Add(time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM session_timers WHERE session_id = \\$1").WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(timerColumns).
			AddRow(sessionID.String(), "DISCUSS", "discuss", 180, 250, true, false, snooze, 4, now))

	timer, err := NewRepository(db).GetTimer(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDiscuss, timer.Phase)
	assert.Equal(t, models.PhaseKindDiscuss, timer.Kind)
	assert.Equal(t, 180, timer.RemainingSeconds)
	assert.Equal(t, 180*time.Second+250*time.Millisecond, timer.Remaining())
	assert.True(t, timer.IsRunning)
	assert.Equal(t, int64(4), timer.Version)
	require.NotNil(t, timer.SnoozeUntil)
	assert.True(t, snooze.Equal(*timer.SnoozeUntil))
}

func TestGetTimer_RejectsUnknownPhase(t *testing.T) {
	db, mock := newMockDB(t)
	sessionID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM session_timers WHERE session_id = \\$1").WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(timerColumns).
			AddRow(sessionID.String(), "LUNCH", "build", 60, 0, false, false, nil, 1, now))

	_, err := NewRepository(db).GetTimer(context.Background(), sessionID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, live.ErrNotFound)
	assert.Contains(t, err.Error(), "LUNCH")
}

func TestGetTimer_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	sessionID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM session_timers WHERE session_id = \\$1").WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(timerColumns))

	_, err := NewRepository(db).GetTimer(context.Background(), sessionID)
	assert.ErrorIs(t, err, live.ErrNotFound)
}

func TestSaveTimer_InsertsNewTimer(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timer := &models.SessionTimer{
		SessionID:        uuid.New(),
		Phase:            models.PhaseBuild,
		Kind:             models.PhaseKindBuild,
		RemainingSeconds: 300,
		IsRunning:        true,
		UpdatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO session_timers (.+) ON CONFLICT \\(session_id\\) DO NOTHING").
		WithArgs(timer.SessionID, "BUILD", "build", 300, true, false, sqlmock.AnyArg(), now, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(db).SaveTimer(context.Background(), timer))
	assert.Equal(t, int64(1), timer.Version)
}

func TestSaveTimer_VersionedUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timer := &models.SessionTimer{
		SessionID:        uuid.New(),
		Phase:            models.PhaseBuild,
		Kind:             models.PhaseKindBuild,
		RemainingSeconds: 210,
		RemainderMillis:  640,
		Version:          3,
		UpdatedAt:        now,
	}

	mock.ExpectExec("UPDATE session_timers SET (.+) WHERE session_id = \\$1 AND version = \\$10").
		WithArgs(timer.SessionID, "BUILD", "build", 210, false, false, sqlmock.AnyArg(), now, 640, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(db).SaveTimer(context.Background(), timer))
	assert.Equal(t, int64(4), timer.Version)
}

func TestSaveTimer_StaleVersionConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	timer := &models.SessionTimer{
		SessionID: uuid.New(),
		Phase:     models.PhaseBuild,
		Kind:      models.PhaseKindBuild,
		Version:   2,
	}

	mock.ExpectExec("UPDATE session_timers SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRepository(db).SaveTimer(context.Background(), timer)
	assert.ErrorIs(t, err, live.ErrConflict)
	assert.Equal(t, int64(2), timer.Version)
}

func TestWithinTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	workshopID := uuid.New()
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workshop_pointers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx live.Store) error {
		return tx.SavePointer(context.Background(), &models.WorkshopPointer{
			WorkshopID:  workshopID,
			DisplayMode: models.DisplayModeStandard,
		})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = repo.WithinTx(context.Background(), func(live.Store) error { return boom })
	assert.ErrorIs(t, err, boom)
}
