package identity_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ronaldv/minime-agent/internal/identity"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing profile: %v", err)
	}
	return path
}

func TestLoadAndBuildSystemPrompt(t *testing.T) {
	path := writeProfile(t, "name: Ronald\ntone: direct\nguardrails:\n  - no spam\n")

	p, err := identity.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	prompt := identity.BuildSystemPrompt(p)
	if !strings.Contains(prompt, "name: Ronald") {
		t.Errorf("prompt missing profile fields:\n%s", prompt)
	}
	if !strings.Contains(prompt, "second brain") {
		t.Errorf("prompt missing assistant framing:\n%s", prompt)
	}
}

func TestLoadMissingProfile(t *testing.T) {
	if _, err := identity.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestLoadEmptyProfile(t *testing.T) {
	path := writeProfile(t, "")
	if _, err := identity.Load(path); err == nil {
		t.Fatal("expected error for empty profile")
	}
}
