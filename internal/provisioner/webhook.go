package provisioner

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/crypto"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/federation"
	"github.com/sectorwars2102/gameserver/internal/logging"
	"github.com/sectorwars2102/gameserver/internal/security"
)

const (
	signatureHeader = "X-Provisioner-Signature"

	eventSubscriptionStarted      = "subscription-started"
	eventSubscriptionCancelled    = "subscription-cancelled"
	eventSubscriptionExpiredGrace = "subscription-expired-grace-passed"

	retryBase  = time.Second
	retryCap   = 2 * time.Minute
	retryCount = 8
)

// webhookPayload is the orchestrator's callback body.
type webhookPayload struct {
	DeliveryID string      `json:"delivery_id"`
	EventType  string      `json:"event_type"`
	RegionName string      `json:"region_name"`
	Spec       region.Spec `json:"spec"`
}

// WebhookHandler ingests signed lifecycle callbacks from the external
// region orchestrator and drives RegionService transitions.
type WebhookHandler struct {
	secret       []byte
	deliveries   *database.ProvisionerDeliveryRepository
	regions      *federation.RegionService
	orchestrator *OrchestratorClient
	audits       *security.AuditWriter
	logger       *logging.Logger
}

func NewWebhookHandler(secret string, deliveries *database.ProvisionerDeliveryRepository, regions *federation.RegionService, orchestrator *OrchestratorClient, audits *security.AuditWriter, logger *logging.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:       []byte(secret),
		deliveries:   deliveries,
		regions:      regions,
		orchestrator: orchestrator,
		audits:       audits,
		logger:       logger,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	sigHex := r.Header.Get(signatureHeader)
	sig, err := hex.DecodeString(sigHex)
	if err != nil || !crypto.HMACVerify(h.secret, body, sig) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	inserted, err := h.deliveries.Record(r.Context(), payload.DeliveryID, payload.EventType, payload.RegionName, now)
	if err != nil {
		http.Error(w, "delivery ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	if !inserted {
		// Replay of an already-processed delivery: still a success.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.dispatch(r.Context(), payload); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Warn("provisioner webhook dispatch failed")
		if h.audits != nil {
			_, _ = h.audits.Record(r.Context(), "", "provisioner", "region."+payload.EventType+".failed", "region", payload.RegionName, err.Error(), "critical")
		}
		// The delivery is still acknowledged: the orchestrator does not
		// retry deliveries, only the provisioning call inside dispatch does.
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) dispatch(ctx context.Context, payload webhookPayload) error {
	switch payload.EventType {
	case eventSubscriptionStarted:
		return RetryWithBackoff(ctx, retryBase, retryCap, retryCount, func(ctx context.Context) error {
			shard, err := h.orchestrator.CreateShard(ctx, ProvisionRequest{RegionName: payload.RegionName, Tier: payload.Spec.EconomicSpecialization})
			if err != nil {
				return err
			}
			_, err = h.regions.Provision(ctx, payload.Spec, shard.ShardDSN)
			return err
		})
	case eventSubscriptionCancelled:
		return h.regions.Suspend(ctx, payload.RegionName)
	case eventSubscriptionExpiredGrace:
		return h.regions.Terminate(ctx, payload.RegionName)
	default:
		return apperrors.ValidationError("event_type", "unrecognized provisioner event: "+payload.EventType)
	}
}
