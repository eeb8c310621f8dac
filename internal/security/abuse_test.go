package security

import (
	"testing"
	"time"
)

func TestAbuseDetectorFlagsRepeatedFailedLogins(t *testing.T) {
	d := NewAbuseDetector(time.Minute, 3, 5, 10)
	now := time.Now()
	for i := 0; i < 2; i++ {
		if d.RecordFailedLogin("ip-1", now) {
			t.Fatalf("did not expect a flag before reaching the threshold (attempt %d)", i)
		}
	}
	if !d.RecordFailedLogin("ip-1", now) {
		t.Fatal("expected the 3rd failed login within the window to flag credential stuffing")
	}
}

func TestAbuseDetectorWindowAgesOutOldEvents(t *testing.T) {
	d := NewAbuseDetector(time.Minute, 3, 5, 10)
	base := time.Now()
	d.RecordFailedLogin("ip-1", base)
	d.RecordFailedLogin("ip-1", base.Add(10*time.Second))
	later := base.Add(2 * time.Minute)
	if d.RecordFailedLogin("ip-1", later) {
		t.Fatal("expected earlier events to have aged out of the window, so this shouldn't flag yet")
	}
}

func TestAbuseDetectorFlagsTradeCycling(t *testing.T) {
	d := NewAbuseDetector(time.Minute, 3, 4, 10)
	now := time.Now()
	for i := 0; i < 3; i++ {
		if d.RecordTradeCycle("player-1", "ore", "station-1", now) {
			t.Fatalf("did not expect a flag before reaching the trade threshold (cycle %d)", i)
		}
	}
	if !d.RecordTradeCycle("player-1", "ore", "station-1", now) {
		t.Fatal("expected the 4th buy/sell cycle within the window to flag market manipulation")
	}
}

func TestAbuseDetectorTradeCyclesAreScopedPerCommodityAndStation(t *testing.T) {
	d := NewAbuseDetector(time.Minute, 3, 2, 10)
	now := time.Now()
	d.RecordTradeCycle("player-1", "ore", "station-1", now)
	if d.RecordTradeCycle("player-1", "fuel", "station-1", now) {
		t.Fatal("expected a different commodity to have an independent counter")
	}
	if d.RecordTradeCycle("player-1", "ore", "station-2", now) {
		t.Fatal("expected a different station to have an independent counter")
	}
}

func TestAbuseDetectorFlagsMessageFlooding(t *testing.T) {
	d := NewAbuseDetector(time.Minute, 3, 5, 2)
	now := time.Now()
	d.RecordMessage("account-1", now)
	if !d.RecordMessage("account-1", now) {
		t.Fatal("expected the 2nd message within the window to flag flooding")
	}
}
