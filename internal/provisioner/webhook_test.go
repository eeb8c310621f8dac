package provisioner

import (
	"bytes"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/crypto"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/federation"
	"github.com/sectorwars2102/gameserver/internal/logging"
)

const testSecret = "webhook-secret"

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	sig := crypto.HMACSign([]byte(testSecret), body)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/provisioner", bytes.NewReader(body))
	req.Header.Set(signatureHeader, hex.EncodeToString(sig))
	return req
}

func newTestLogger() *logging.Logger {
	return logging.New(logging.Options{Service: "provisioner-test", Level: "error", Format: "text"})
}

func TestWebhookHandlerRejectsInvalidSignature(t *testing.T) {
	h := NewWebhookHandler(testSecret, nil, nil, nil, nil, newTestLogger())

	body := []byte(`{"delivery_id":"d1","event_type":"subscription-cancelled","region_name":"region-alpha"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/provisioner", bytes.NewReader(body))
	req.Header.Set(signatureHeader, hex.EncodeToString([]byte("not-a-real-signature")))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad signature, got %d", rec.Code)
	}
}

func TestWebhookHandlerAcknowledgesReplayedDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	deliveries := database.NewProvisionerDeliveryRepository(db)
	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 0))

	h := NewWebhookHandler(testSecret, deliveries, nil, nil, nil, newTestLogger())

	body := []byte(`{"delivery_id":"d1","event_type":"subscription-cancelled","region_name":"region-alpha"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a replayed delivery, got %d", rec.Code)
	}
}

func TestWebhookHandlerDispatchesSuspend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	deliveries := database.NewProvisionerDeliveryRepository(db)
	regions := database.NewRegionRepository(db)
	regionService := federation.NewRegionService(regions, nil, nil, nil, nil)

	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
		"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
		"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
		"sector_count", "created_at", "updated_at", "version", "termination_started_at",
	}).AddRow("rgn-1", "region-alpha", "Region Alpha", "acct-owner", region.StatusActive, region.GovernanceDemocracy,
		0.1, 0.5, 30, []byte(`{}`), "{}", "mining", "standard", nil, 500, now, now, int64(1), nil)
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnRows(rows)
	mock.ExpectExec("UPDATE regions").WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewWebhookHandler(testSecret, deliveries, regionService, nil, nil, newTestLogger())

	body := []byte(`{"delivery_id":"d2","event_type":"subscription-cancelled","region_name":"region-alpha"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookHandlerDispatchesSubscriptionStartedIdempotently(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	deliveries := database.NewProvisionerDeliveryRepository(db)
	regions := database.NewRegionRepository(db)
	regionService := federation.NewRegionService(regions, nil, nil, nil, nil)

	orchestratorCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orchestratorCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	orchestrator, err := NewOrchestratorClient(srv.URL)
	if err != nil {
		t.Fatalf("new orchestrator client: %v", err)
	}

	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
		"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
		"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
		"sector_count", "created_at", "updated_at", "version", "termination_started_at",
	}).AddRow("rgn-1", "region-alpha", "Region Alpha", "acct-owner", region.StatusActive, region.GovernanceDemocracy,
		0.1, 0.5, 30, []byte(`{}`), "{}", "mining", "standard", nil, 500, now, now, int64(1), nil)
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnRows(rows)

	h := NewWebhookHandler(testSecret, deliveries, regionService, orchestrator, nil, newTestLogger())

	body := []byte(`{"delivery_id":"d4","event_type":"subscription-started","region_name":"region-alpha","spec":{"name":"region-alpha","sector_count":500}}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if orchestratorCalled {
		t.Fatal("expected Provision to short-circuit on an already-provisioned region without calling the orchestrator")
	}
}

func TestWebhookHandlerRejectsUnknownEventType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	deliveries := database.NewProvisionerDeliveryRepository(db)
	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewWebhookHandler(testSecret, deliveries, nil, nil, nil, newTestLogger())

	body := []byte(`{"delivery_id":"d3","event_type":"not-a-real-event","region_name":"region-alpha"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, body))

	// Still acknowledged: the delivery itself was recorded, only dispatch failed.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even on an unrecognized event type, got %d", rec.Code)
	}
}
