package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

type capturedStmt struct {
	sql  string
	vars []interface{}
}

// dryRunDB builds statements without a database and records each one.
func dryRunDB(t *testing.T) (*gorm.DB, *[]capturedStmt) {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	var stmts []capturedStmt
	record := func(tx *gorm.DB) {
		stmts = append(stmts, capturedStmt{sql: tx.Statement.SQL.String(), vars: tx.Statement.Vars})
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_query", record))
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("test:record_delete", record))
	return db, &stmts
}

func TestReminderRepository_DeleteByJobIsOwnerScoped(t *testing.T) {
	db, stmts := dryRunDB(t)
	userID, jobID := uuid.NewString(), uuid.NewString()

	require.NoError(t, NewReminderRepository().DeleteByJob(db, userID, jobID))

	require.Len(t, *stmts, 1)
	got := (*stmts)[0]
	assert.Contains(t, got.sql, "DELETE FROM")
	assert.Contains(t, got.sql, "user_id = ?")
	assert.Contains(t, got.sql, "job_application_id = ?")
	assert.Equal(t, []interface{}{userID, jobID}, got.vars)
}

func TestJobRepository_FindExistingExternalIDsIsOwnerScoped(t *testing.T) {
	db, stmts := dryRunDB(t)
	userID := uuid.NewString()

	found, err := NewJobRepository().FindExistingExternalIDs(db, userID, []string{"msg-1", "msg-2"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.Len(t, *stmts, 1)
	got := (*stmts)[0]
	assert.Contains(t, got.sql, "user_id = ?")
	assert.Contains(t, got.sql, "external_id IN (?,?)")
	assert.Equal(t, []interface{}{userID, "msg-1", "msg-2"}, got.vars)

	// nothing to look up, no query
	found, err = NewJobRepository().FindExistingExternalIDs(db, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Len(t, *stmts, 1)
}

func TestOwnedStore_DeleteAllWithoutScopes(t *testing.T) {
	db, stmts := dryRunDB(t)
	userID := uuid.NewString()

	require.NoError(t, NewReminderRepository().DeleteAllByUser(db, userID))

	require.Len(t, *stmts, 1)
	assert.Contains(t, (*stmts)[0].sql, "user_id = ?")
	assert.Equal(t, []interface{}{userID}, (*stmts)[0].vars)
}
