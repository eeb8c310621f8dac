package account

import (
	"testing"
	"time"
)

func TestNewIsPlayerRole(t *testing.T) {
	now := time.Now().UTC()
	a := New("acct-1", "Alex", "a@x.test", "hash", now)
	if a.Role != RolePlayer {
		t.Errorf("expected role player, got %s", a.Role)
	}
	if a.Version != 1 {
		t.Errorf("expected initial version 1, got %d", a.Version)
	}
}

func TestBindProviderReplacesExisting(t *testing.T) {
	now := time.Now().UTC()
	a := New("acct-1", "Alex", "a@x.test", "hash", now)
	a.BindProvider(ExternalBinding{Provider: ProviderCodeHost, ProviderAccountID: "111", DisplayName: "alex"}, now)
	a.BindProvider(ExternalBinding{Provider: ProviderCodeHost, ProviderAccountID: "222", DisplayName: "alex2"}, now)

	if len(a.ExternalBindings) != 1 {
		t.Fatalf("expected exactly one binding for the provider, got %d", len(a.ExternalBindings))
	}
	if a.ExternalBindings[0].ProviderAccountID != "222" {
		t.Errorf("expected latest binding to win, got %s", a.ExternalBindings[0].ProviderAccountID)
	}
}

func TestConsumeBackupCodeSingleUse(t *testing.T) {
	now := time.Now().UTC()
	a := New("acct-1", "Alex", "a@x.test", "hash", now)
	a.EnrollMFA("secret", []string{"hash-a", "hash-b"}, now)

	if !a.ConsumeBackupCode("hash-a") {
		t.Fatal("expected hash-a to be consumed")
	}
	if a.ConsumeBackupCode("hash-a") {
		t.Error("expected hash-a to be single-use")
	}
	if len(a.MFA.BackupCodeHashes) != 1 {
		t.Errorf("expected one remaining backup code, got %d", len(a.MFA.BackupCodeHashes))
	}
}

func TestTombstoneSoftDeletes(t *testing.T) {
	now := time.Now().UTC()
	a := New("acct-1", "Alex", "a@x.test", "hash", now)
	a.Tombstone(now.Add(time.Hour))
	if !a.Tombstoned {
		t.Error("expected account to be tombstoned")
	}
}
