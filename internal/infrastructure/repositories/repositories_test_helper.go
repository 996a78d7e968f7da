package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createAccountTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE accounts (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		preferred_language TEXT NOT NULL DEFAULT 'en',
		failed_login_count INTEGER NOT NULL DEFAULT 0,
		locked_until DATETIME,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createRefreshTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE refresh_tokens (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token_hash TEXT UNIQUE NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT 0,
		revoked_at DATETIME,
		created_at DATETIME
	);`)
}

func createVerificationTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_tokens (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token_hash TEXT UNIQUE NOT NULL,
		type TEXT NOT NULL,
		new_email TEXT,
		expires_at DATETIME NOT NULL,
		consumed_at DATETIME,
		created_at DATETIME
	);`)
}

func createPendingRegistrationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE pending_registrations (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		preferred_language TEXT NOT NULL DEFAULT 'en',
		token_hash TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}
