package sqlutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE workshop_pointers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = Run(context.Background(), db, func(tx *sql.Tx) *sql.Tx { return tx }, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE workshop_pointers SET display_mode = 'FOCUS'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = Run(context.Background(), db, func(tx *sql.Tx) *sql.Tx { return tx }, func(*sql.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no connections"))

	called := false
	err = Run(context.Background(), db, func(tx *sql.Tx) *sql.Tx { return tx }, func(*sql.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestNullConverters(t *testing.T) {
	assert.False(t, ToNullUUID(nil).Valid)
	assert.Nil(t, FromNullUUID(uuid.NullUUID{}))

	id := uuid.New()
	got := FromNullUUID(ToNullUUID(&id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.False(t, ToSqlTime(nil).Valid)
	assert.Nil(t, FromSqlTime(sql.NullTime{}))

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gotTime := FromSqlTime(ToSqlTime(&now))
	require.NotNil(t, gotTime)
	assert.True(t, now.Equal(*gotTime))
}

func TestNullJSON(t *testing.T) {
	type slide struct {
		Title string `json:"title"`
	}

	raw, err := ToNullJSON([]slide{{Title: "Welcome"}})
	require.NoError(t, err)
	assert.True(t, raw.Valid)
	assert.JSONEq(t, `[{"title":"Welcome"}]`, string(raw.RawMessage))

	var out []slide
	require.NoError(t, FromNullJSON(raw, &out))
	assert.Equal(t, []slide{{Title: "Welcome"}}, out)

	empty, err := ToNullJSON(nil)
	require.NoError(t, err)
	assert.False(t, empty.Valid)

	out = nil
	require.NoError(t, FromNullJSON(pqtype.NullRawMessage{}, &out))
	assert.Nil(t, out)

	err = FromNullJSON(pqtype.NullRawMessage{RawMessage: []byte("{"), Valid: true}, &out)
	assert.Error(t, err)
}
