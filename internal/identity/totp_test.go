package identity

import "testing"

func TestMFAManagerGenerateAndVerifyCode(t *testing.T) {
	m := NewMFAManager("sectorwars-test")
	secret, err := m.GenerateSecret("captain@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if secret == "" {
		t.Fatal("expected a non-empty secret")
	}
	if m.VerifyCode(secret, "000000") {
		t.Fatal("did not expect an arbitrary static code to validate")
	}
}

func TestMFAManagerBackupCodes(t *testing.T) {
	m := NewMFAManager("sectorwars-test")
	codes, hashes, err := m.GenerateBackupCodes(5)
	if err != nil {
		t.Fatalf("GenerateBackupCodes: %v", err)
	}
	if len(codes) != 5 || len(hashes) != 5 {
		t.Fatalf("expected 5 codes and hashes, got %d/%d", len(codes), len(hashes))
	}
	idx, matched := MatchBackupCode(hashes, codes[2])
	if !matched || idx != 2 {
		t.Fatalf("expected codes[2] to match hashes[2], got idx=%d matched=%v", idx, matched)
	}
	if _, matched := MatchBackupCode(hashes, "not-a-real-code"); matched {
		t.Fatal("did not expect an unrelated string to match any backup code hash")
	}
}
