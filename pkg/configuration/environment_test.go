package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_LoadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "FEEDBACK_PORTAL_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("FEEDBACK_PORTAL_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("FEEDBACK_PORTAL_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	tmp := t.TempDir()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no env files, got %d", n)
	}
}

func TestUploadOptionsValidate(t *testing.T) {
	opts := UploadOptions{MaxSize: 1 << 20, Timezone: "America/Los_Angeles"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}

	opts.Timezone = "Mars/Olympus_Mons"
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}

	opts = UploadOptions{MaxSize: 0, Timezone: "UTC"}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for non-positive max size")
	}
}

func TestValidateStaging(t *testing.T) {
	c := &Configuration{}
	c.Staging = StagingOptions{Root: "portal_uploads/staging", ProcessedDir: "processed"}
	if err := c.validateStaging(); err != nil {
		t.Fatalf("expected valid staging options, got %v", err)
	}

	c.Staging = StagingOptions{Root: "x", ProcessedDir: "a/b"}
	if err := c.validateStaging(); err == nil {
		t.Fatal("expected error for nested processed dir")
	}

	c.Staging = StagingOptions{Root: "  ", ProcessedDir: "processed"}
	if err := c.validateStaging(); err == nil {
		t.Fatal("expected error for empty staging root")
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
