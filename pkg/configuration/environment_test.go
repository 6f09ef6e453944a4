package configuration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "BRAND_IMPORT_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "crud")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("BRAND_IMPORT_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("BRAND_IMPORT_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IMPORT_COLUMNS_FILE", "columns.yaml")

	var out bytes.Buffer
	c, err := Load(nil, &out)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, "db.internal", c.Database.Host)
	require.Equal(t, "5432", c.Database.Port)
	require.Contains(t, c.Database.Opts, "dbname=catalog")
	require.Equal(t, "columns.yaml", c.Import.ColumnsFile)
	require.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())

	c.Logger().Debug("hello")
	require.Contains(t, out.String(), "hello")
}

func TestLoad_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_PATH", filepath.Join(dir, "logs", "import.log"))

	var out bytes.Buffer
	c, err := Load(nil, &out)
	require.NoError(t, err)
	c.Logger().Info("to both")
	c.Unload()

	raw, err := os.ReadFile(filepath.Join(dir, "logs", "import.log"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "to both")
	require.Contains(t, out.String(), "to both")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load(nil, &bytes.Buffer{})
	require.Error(t, err)
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
