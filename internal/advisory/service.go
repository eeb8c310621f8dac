package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/sectorwars2102/gameserver/infrastructure/cache"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/audit"
)

const defaultCallTimeout = 2 * time.Second
const defaultCacheTTL = 5 * time.Minute

// Service fans a request out across configured providers in order,
// caches the winning response, and falls back to a deterministic
// heuristic (recording the degradation) when every provider fails.
type Service struct {
	providers   []Provider
	cache       *cache.TTLCache
	audit       *database.AuditRepository
	sectors     *database.SectorRepository
	callTimeout time.Duration
}

// NewService constructs an advisory service. providers may be empty, in
// which case every request falls straight to its heuristic. callTimeout
// and cacheTTL fall back to the spec defaults (2s / 5m, matching
// AI_CALL_TIMEOUT/AI_CACHE_TTL's own defaults) when zero.
func NewService(providers []Provider, auditRepo *database.AuditRepository, sectors *database.SectorRepository, callTimeout, cacheTTL time.Duration) *Service {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{
		providers:   providers,
		cache:       cache.NewTTLCache(cacheTTL),
		audit:       auditRepo,
		sectors:     sectors,
		callTimeout: callTimeout,
	}
}

// fingerprintHash FNV-1a hashes a request's normalized fingerprint so
// cache keys and audit dedup keys stay short and collision-resistant.
func fingerprintHash(req Request) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fingerprint(req)))
	return fmt.Sprintf("%x", h.Sum64())
}

// PredictMarket produces a price projection for a commodity, from a
// provider when one succeeds, otherwise from the moving-average
// heuristic over recentPrices.
func (s *Service) PredictMarket(ctx context.Context, commodity string, recentPrices []int64, now time.Time) (Response, error) {
	req := Request{Kind: KindMarketPrediction, Commodity: commodity, RecentPrices: recentPrices}
	return s.advise(ctx, req, now, func() Response {
		return heuristicMarketPrediction(commodity, recentPrices)
	})
}

// OptimizeRoute produces a recommended route between two sectors in a
// region, from a provider when one succeeds, otherwise from the
// shortest-path heuristic over the region's warp graph.
func (s *Service) OptimizeRoute(ctx context.Context, regionID, from, to string, now time.Time) (Response, error) {
	req := Request{Kind: KindRouteOptimization, RegionID: regionID, FromSector: from, ToSector: to}
	return s.advise(ctx, req, now, func() Response {
		graph, err := s.sectors.Graph(ctx, regionID)
		if err != nil {
			return Response{Kind: KindRouteOptimization, Summary: "route unavailable", Source: "heuristic", Degraded: true}
		}
		return heuristicRouteOptimization(graph, from, to)
	})
}

// ProfileBehavior produces a dominant-action summary for a player, from
// a provider when one succeeds, otherwise from the frequency heuristic
// over recentActions.
func (s *Service) ProfileBehavior(ctx context.Context, playerID string, recentActions []string, now time.Time) (Response, error) {
	req := Request{Kind: KindBehaviorProfile, PlayerID: playerID, RecentActions: recentActions}
	return s.advise(ctx, req, now, func() Response {
		return heuristicBehaviorProfile(playerID, recentActions)
	})
}

func (s *Service) advise(ctx context.Context, req Request, now time.Time, heuristic func() Response) (Response, error) {
	key := fingerprintHash(req)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached.(Response), nil
	}

	for _, p := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		resp, err := p.Advise(callCtx, req)
		cancel()
		if err == nil {
			s.cache.Set(ctx, key, resp)
			return resp, nil
		}
	}

	resp := heuristic()
	s.cache.Set(ctx, key, resp)
	s.recordDegradation(ctx, req, key, now)
	return resp, nil
}

func (s *Service) recordDegradation(ctx context.Context, req Request, key string, now time.Time) {
	if s.audit == nil {
		return
	}
	detail, _ := json.Marshal(req)
	entry := &audit.Entry{
		ID:         "adv-" + key + "-" + fmt.Sprintf("%d", now.UnixNano()),
		DedupKey:   "advisory-degraded:" + key + ":" + now.Truncate(time.Minute).Format(time.RFC3339),
		ActorID:    "system",
		Action:     "advisory_degraded",
		TargetType: "advisory",
		TargetID:   string(req.Kind),
		Detail:     string(detail),
		Severity:   "info",
		OccurredAt: now,
	}
	_, _ = s.audit.Ingest(ctx, entry)
}
