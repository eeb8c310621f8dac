package treaty

import (
	"testing"
	"time"
)

func TestTermReadsOpaqueJSON(t *testing.T) {
	now := time.Now()
	tr := New("t1", "r1", "r2", TypeTrade, `{"tax_exemption_rate": 0.15}`, now)
	if got := tr.TaxExemptionRate(); got != 0.15 {
		t.Errorf("expected 0.15, got %f", got)
	}
}

func TestTaxExemptionRateDefaultsToZero(t *testing.T) {
	now := time.Now()
	tr := New("t1", "r1", "r2", TypeTrade, `{}`, now)
	if got := tr.TaxExemptionRate(); got != 0 {
		t.Errorf("expected default 0, got %f", got)
	}
}

func TestSuspendResumeLifecycle(t *testing.T) {
	now := time.Now()
	tr := New("t1", "r1", "r2", TypeNonAggression, "{}", now)
	if err := tr.Suspend(now); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if tr.InForce() {
		t.Error("suspended treaty should not be in force")
	}
	if err := tr.Resume(now); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !tr.InForce() {
		t.Error("resumed treaty should be in force")
	}
}

func TestCheckExpiryTransitions(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	tr := New("t1", "r1", "r2", TypeTrade, "{}", now)
	tr.ExpiresAt = &past
	tr.CheckExpiry(now)
	if tr.Status != StatusExpired {
		t.Errorf("expected expired status, got %s", tr.Status)
	}
}

func TestTerminateRejectsAlreadyTerminated(t *testing.T) {
	now := time.Now()
	tr := New("t1", "r1", "r2", TypeTrade, "{}", now)
	_ = tr.Terminate(now)
	if err := tr.Terminate(now); err == nil {
		t.Fatal("expected double termination to be rejected")
	}
}
