package identity_test

import (
	"database/sql"
	"testing"

	identity "github.com/krwicher/wil-fasting-group"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL DEFAULT 'pending',
    metadata TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_authenticated_at TIMESTAMP
);`
	sqliteCreateProfiles = `CREATE TABLE user_profiles (
    id TEXT NOT NULL PRIMARY KEY,
    display_name TEXT,
    approval_status TEXT NOT NULL DEFAULT 'pending',
    timezone TEXT NOT NULL DEFAULT '',
    total_fasts_completed INTEGER NOT NULL DEFAULT 0,
    total_hours_fasted REAL NOT NULL DEFAULT 0,
    longest_fast_hours REAL NOT NULL DEFAULT 0,
    current_streak_days INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (id) REFERENCES accounts (id) ON DELETE CASCADE
);`
	sqliteCreateGroupFasts = `CREATE TABLE group_fasts (
    id TEXT NOT NULL PRIMARY KEY,
    creator_id TEXT NOT NULL,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'scheduled',
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (creator_id) REFERENCES user_profiles (id) ON DELETE CASCADE
);`
	sqliteCreateParticipants = `CREATE TABLE fast_participants (
    id TEXT NOT NULL PRIMARY KEY,
    fast_id TEXT NOT NULL,
    profile_id TEXT NOT NULL,
    joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (fast_id) REFERENCES group_fasts (id) ON DELETE CASCADE,
    FOREIGN KEY (profile_id) REFERENCES user_profiles (id) ON DELETE CASCADE,
    CONSTRAINT uq_fast_participants UNIQUE (fast_id, profile_id)
);`
)

func setupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, stmt := range []string{
		sqliteCreateAccounts,
		sqliteCreateProfiles,
		sqliteCreateGroupFasts,
		sqliteCreateParticipants,
	} {
		_, err = bunDB.Exec(stmt)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return bunDB, cleanup
}

func seedAccount(t *testing.T, db *bun.DB, email string, role identity.Role) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec("INSERT INTO accounts (id, email, role) VALUES (?, ?, ?)", id.String(), email, string(role))
	require.NoError(t, err)
	return id
}
