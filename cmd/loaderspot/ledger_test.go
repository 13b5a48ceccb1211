package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupEnv points the config lookup at a scratch home so tests never
// touch the real config.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestLedgerSortCommand(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "versions.json")

	unsorted := `{"1.9.0.100.gaaaaaaaa": {"fullversion": "1.9.0.100.gaaaaaaaa"}, "1.10.0.5.gbbbbbbbb": {"fullversion": "1.10.0.5.gbbbbbbbb"}}`
	if err := os.WriteFile(path, []byte(unsorted), 0644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	rootCmd.SetArgs([]string{"ledger", "sort", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}

	first := strings.Index(string(data), "1.10.0.5.gbbbbbbbb")
	second := strings.Index(string(data), "1.9.0.100.gaaaaaaaa")
	if first < 0 || second < 0 || first > second {
		t.Errorf("keys not in descending order:\n%s", data)
	}
}

func TestLedgerAddCommand(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "versions.json")

	rootCmd.SetArgs([]string{
		"ledger", "add", path,
		"--version", "1.2.26.1187.g36b715a1",
		"--build-type", "Release",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, `"1.2.26.1187.g36b715a1"`) {
		t.Errorf("ledger missing key:\n%s", content)
	}
	if !strings.Contains(content, `"fullversion": "1.2.26.1187.g36b715a1"`) {
		t.Errorf("ledger missing fullversion field:\n%s", content)
	}
	// The build label leads the entry
	bt := strings.Index(content, `"buildType"`)
	fv := strings.Index(content, `"fullversion"`)
	if bt < 0 || bt > fv {
		t.Errorf("buildType should precede fullversion:\n%s", content)
	}
}
