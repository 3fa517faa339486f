package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/election-map-backend-go/internal/logging"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRunMigrations_Embedded(t *testing.T) {
	conn := openTestDB(t)
	m, err := NewMigrationManager(conn, logging.NewNopLogger())
	require.NoError(t, err)

	embedded, err := m.LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, embedded)
	assert.Equal(t, 1, embedded[0].Version)

	require.NoError(t, m.RunMigrations())
	// second run is a no-op
	require.NoError(t, m.RunMigrations())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.True(t, applied[1])
	assert.True(t, applied[2])

	for _, table := range []string{"parties", "municipalities", "municipality_shares", "import_log"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestLoadMigrations_SortsAndSkipsInvalid(t *testing.T) {
	source := fstest.MapFS{
		"010_second.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"002_first.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"notes.txt":      {Data: []byte("ignored")},
		"bad_name.sql":   {Data: []byte("SELECT 1;")},
	}
	m := NewMigrationManagerFS(openTestDB(t), source, nil)

	migrations, err := m.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "002_first", migrations[0].Name)
	assert.Equal(t, 10, migrations[1].Version)
}

func TestApplyMigration_RollsBackOnError(t *testing.T) {
	conn := openTestDB(t)
	m := NewMigrationManagerFS(conn, fstest.MapFS{}, nil)
	require.NoError(t, m.InitMigrationsTable())

	err := m.ApplyMigration(Migration{Version: 1, Name: "001_broken", SQL: "CREATE TABLE ("})
	require.Error(t, err)

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestTransaction(t *testing.T) {
	conn := openTestDB(t)
	_, err := conn.Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = Transaction(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (v) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, Transaction(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t (v) VALUES (2)")
		return err
	}))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 1, count)
}
