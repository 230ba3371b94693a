package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRunner(t *testing.T) (*MigrationRunner, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewMigrationRunner(db), mock
}

func shrinkRetryBudget(t *testing.T, retries int) {
	t.Helper()

	origRetries, origInterval := maxRetries, retryInterval
	maxRetries, retryInterval = retries, time.Millisecond
	t.Cleanup(func() { maxRetries, retryInterval = origRetries, origInterval })
}

func TestNewMigrationRunner(t *testing.T) {
	runner, _ := newMockRunner(t)

	assert.NotNil(t, runner)
	assert.Equal(t, "db/migrations", runner.migrationsPath)
	assert.Equal(t, "db/seeds", runner.seedsPath)
}

func TestWaitForDatabase(t *testing.T) {
	shrinkRetryBudget(t, 3)

	t.Run("ready on first ping", func(t *testing.T) {
		runner, mock := newMockRunner(t)
		mock.ExpectPing()

		assert.NoError(t, runner.WaitForDatabase())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ready after a slow start", func(t *testing.T) {
		runner, mock := newMockRunner(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		assert.NoError(t, runner.WaitForDatabase())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		runner, mock := newMockRunner(t)
		for i := 0; i < maxRetries; i++ {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		}

		err := runner.WaitForDatabase()
		assert.ErrorContains(t, err, "database not ready")
	})
}

func TestRunMigrationsMissingDirectory(t *testing.T) {
	runner, _ := newMockRunner(t)
	runner.migrationsPath = filepath.Join(t.TempDir(), "does-not-exist")

	// A deployment without bundled migrations is served by AutoMigrate
	// instead, so this must not fail.
	assert.NoError(t, runner.RunMigrations())
}

func TestGetMigrationStatusMissingDirectory(t *testing.T) {
	runner, _ := newMockRunner(t)
	runner.migrationsPath = filepath.Join(t.TempDir(), "does-not-exist")

	_, _, err := runner.GetMigrationStatus()
	assert.ErrorContains(t, err, "migrations directory not found")
}

func TestLoadSeeds(t *testing.T) {
	sampleUserSeed := "INSERT INTO users (id, email, name, role)" +
		" VALUES ('a0000000-0000-0000-0000-000000000001', 'sample@pennytrail.dev', 'Sample User', 'user')" +
		" ON CONFLICT (email) DO NOTHING;"

	t.Run("disabled without the flag", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "false")

		runner, mock := newMockRunner(t)
		assert.NoError(t, runner.LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet(), "no SQL may run while seeding is off")
	})

	t.Run("missing seeds directory skips quietly", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "true")

		runner, _ := newMockRunner(t)
		runner.seedsPath = filepath.Join(t.TempDir(), "does-not-exist")
		assert.NoError(t, runner.LoadSeeds())
	})

	t.Run("empty seeds directory skips quietly", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "true")

		runner, _ := newMockRunner(t)
		runner.seedsPath = t.TempDir()
		assert.NoError(t, runner.LoadSeeds())
	})

	t.Run("executes each seed file", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "true")

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_sample_user.sql"), []byte(sampleUserSeed), 0o644))

		runner, mock := newMockRunner(t)
		runner.seedsPath = dir

		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, runner.LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("continues past a failing seed file", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "true")

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("INSERT INTO nowhere VALUES (1);"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "002_sample_user.sql"), []byte(sampleUserSeed), 0o644))

		runner, mock := newMockRunner(t)
		runner.seedsPath = dir

		mock.ExpectExec("INSERT INTO nowhere").WillReturnError(errors.New("relation does not exist"))
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, runner.LoadSeeds(), "a bad script is skipped, not fatal")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreadable seed file aborts", func(t *testing.T) {
		t.Setenv("SEED_DATABASE", "true")

		// A directory matching the glob cannot be read as a file
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "001_locked.sql"), 0o755))

		runner, _ := newMockRunner(t)
		runner.seedsPath = dir

		err := runner.LoadSeeds()
		assert.ErrorContains(t, err, "failed to read seed file")
	})
}

func TestRunMigrationsIfEnabled(t *testing.T) {
	t.Run("disabled without the flag", func(t *testing.T) {
		t.Setenv("AUTO_MIGRATE", "false")

		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		assert.NoError(t, RunMigrationsIfEnabled(db))
	})

	t.Run("fails when the database never answers", func(t *testing.T) {
		t.Setenv("AUTO_MIGRATE", "true")
		shrinkRetryBudget(t, 2)

		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		for i := 0; i < maxRetries; i++ {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		}

		err = RunMigrationsIfEnabled(db)
		assert.ErrorContains(t, err, "readiness check failed")
	})
}
