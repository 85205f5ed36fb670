package userconfig

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestClientID_MintedOnceAndStable(t *testing.T) {
	SetPathOverride(filepath.Join(t.TempDir(), "config.json"))
	defer SetPathOverride("")

	first, err := ClientID()
	if err != nil {
		t.Fatalf("first ClientID call failed: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("client ID is not a uuid: %q", first)
	}

	second, err := ClientID()
	if err != nil {
		t.Fatalf("second ClientID call failed: %v", err)
	}
	if second != first {
		t.Errorf("client ID changed between calls: %q then %q", first, second)
	}
}

func TestClientID_SurvivesOtherWrites(t *testing.T) {
	SetPathOverride(filepath.Join(t.TempDir(), "config.json"))
	defer SetPathOverride("")

	id, err := ClientID()
	if err != nil {
		t.Fatalf("ClientID failed: %v", err)
	}

	if err := SetSelectedEnv("staging"); err != nil {
		t.Fatalf("SetSelectedEnv failed: %v", err)
	}

	after, err := ClientID()
	if err != nil {
		t.Fatalf("ClientID after env change failed: %v", err)
	}
	if after != id {
		t.Errorf("client ID lost by an unrelated config write: %q then %q", id, after)
	}
}
