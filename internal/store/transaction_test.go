package store

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	fnErr := errors.New("insert rejected")
	dbErr := errors.New("database locked")

	tests := []struct {
		name      string
		expect    func(mock sqlmock.Sqlmock)
		fnErr     error
		wantIs    []error
		wantInMsg string
		notInMsg  string
	}{
		{
			name: "commit",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name: "fn error rolls back",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fnErr:  fnErr,
			wantIs: []error{fnErr},
		},
		{
			name: "begin fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(dbErr)
			},
			wantIs:    []error{ErrTransactionFailed, dbErr},
			wantInMsg: "begin",
		},
		{
			name: "commit fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(dbErr)
			},
			wantIs:    []error{ErrTransactionFailed, dbErr},
			wantInMsg: "commit",
			notInMsg:  "rollback",
		},
		{
			name: "rollback fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(dbErr)
			},
			fnErr:     fnErr,
			wantIs:    []error{fnErr},
			wantInMsg: "database locked",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tc.expect(mock)

			err = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
				return tc.fnErr
			})

			if len(tc.wantIs) == 0 {
				assert.NoError(t, err)
			}
			for _, target := range tc.wantIs {
				assert.ErrorIs(t, err, target)
			}
			if tc.wantInMsg != "" {
				assert.Contains(t, err.Error(), tc.wantInMsg)
			}
			if tc.notInMsg != "" {
				assert.NotContains(t, err.Error(), tc.notInMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "encoder bug", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("encoder bug")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_StoreStatementsUseTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewCollectionStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cards (id,nid,did,ord,mod,usn,type,queue,due,")).
		WithArgs(5, 5, 9, 0, 0, -1, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0, "").
		WillReturnError(dbErrBusy)
	mock.ExpectRollback()

	err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).InsertCard(ctx, Card{ID: 5, NoteID: 5, DeckID: 9, Due: 3})
	})

	assert.True(t, IsStoreError(err, "card"))
	assert.ErrorIs(t, err, dbErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var dbErrBusy = errors.New("database is busy")
