package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: from-file.sqlite3\nlisten: :9000\n"), 0o600))

	cfg, err := loadConfig([]string{"-c", path, "--addr", ":7000", "-u", "root"})
	require.NoError(t, err)
	assert.Equal(t, "from-file.sqlite3", cfg.Database)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "root", cfg.AdminUser)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)

	_, err = loadConfig([]string{"serve"})
	assert.ErrorContains(t, err, "unexpected argument")

	_, err = loadConfig([]string{"--db", ""})
	assert.Error(t, err)
}

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, cleanup, err := newLogger(&stdout, &stderr, "")
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hidden")
	logger.Warn("careful")
	logger.With("component", "test").Error("broken")

	assert.Contains(t, stdout.String(), "careful")
	assert.NotContains(t, stdout.String(), "hidden")
	assert.NotContains(t, stdout.String(), "broken")
	assert.Contains(t, stderr.String(), "broken")
	assert.Contains(t, stderr.String(), "component=test")
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.sqlite3")
	ctx := context.Background()

	database, password, err := initDatabase(ctx, path, "boss")
	require.NoError(t, err)
	defer database.Close()
	assert.Len(t, password, 16)

	admin, err := store.GetUserByUsername(ctx, database, "boss")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)))

	cats, err := store.ListCategories(ctx, database)
	require.NoError(t, err)
	assert.Len(t, cats, len(model.DefaultCategories))

	var out bytes.Buffer
	printInitResult(&out, path, "boss", password)
	assert.True(t, strings.Contains(out.String(), password))
}
