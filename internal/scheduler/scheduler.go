// Package scheduler runs the periodic, per-region-shard jobs (colony
// tick, election-close sweep, travel-timeout sweep) behind a database
// lease so at most one process instance drives a given shard's jobs at
// a time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/federation"
	"github.com/sectorwars2102/gameserver/internal/governance"
	"github.com/sectorwars2102/gameserver/internal/logging"
	"github.com/sectorwars2102/gameserver/internal/simulation"
)

// Publisher emits domain events produced by a scheduled job. Any value
// satisfying this also satisfies simulation.Publisher and
// governance.Publisher, which share the same method shape.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Config tunes the lease manager and job cadences. Callers building one
// from internal/config should start from DefaultConfig and override only
// the fields the deployment's environment actually sets.
type Config struct {
	LeaseTTL           time.Duration
	LeaseRenewInterval time.Duration
	ColonyTickCronSpec string
	ElectionSweepCron  string
	TravelSweepCron    string
	TravelTimeout      time.Duration
}

// DefaultConfig returns the cadences used when internal/config leaves a
// field at its zero value.
func DefaultConfig() Config {
	return Config{
		LeaseTTL:           2 * time.Minute,
		LeaseRenewInterval: 30 * time.Second,
		ColonyTickCronSpec: "@every 1h",
		ElectionSweepCron:  "@every 5m",
		TravelSweepCron:    "@every 5m",
		TravelTimeout:      30 * time.Minute,
	}
}

// Scheduler owns the lease-renewal goroutine and the cron entries for
// every periodic job. One Scheduler runs per gameserver process; whether
// it actually does work for a given region shard is gated by whether it
// currently holds that shard's lease.
type Scheduler struct {
	ownerID string
	cfg     Config

	registry   *database.Registry
	regionRepo *database.RegionRepository
	leases     *database.LeaseRepository
	travels    *database.TravelRepository
	travelSvc  *federation.TravelService

	publisher Publisher
	logger    *logging.Logger

	cron *cron.Cron

	mu    sync.RWMutex
	held  map[string]bool // regionID -> this instance currently holds the lease
	stopc chan struct{}
	wg    sync.WaitGroup
}

// New wires a Scheduler. travels/travelSvc are global-shard: the
// travel-timeout sweep operates on the one global travels table rather
// than per-region data, but still runs behind a lease (keyed by
// database.GlobalShardID) so only one instance sweeps it at a time.
func New(ownerID string, cfg Config, registry *database.Registry, regionRepo *database.RegionRepository, leases *database.LeaseRepository, travels *database.TravelRepository, travelSvc *federation.TravelService, publisher Publisher, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		ownerID:    ownerID,
		cfg:        cfg,
		registry:   registry,
		regionRepo: regionRepo,
		leases:     leases,
		travels:    travels,
		travelSvc:  travelSvc,
		publisher:  publisher,
		logger:     logger,
		cron:       cron.New(),
		held:       make(map[string]bool),
		stopc:      make(chan struct{}),
	}
}

// Start launches the lease-renewal goroutine and registers the cron jobs,
// then starts the cron scheduler. Start returns once everything is
// registered; jobs run on the cron's own goroutines from then on.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.ColonyTickCronSpec, func() { s.runPerRegion(ctx, "colony-tick", s.runColonyTick) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ElectionSweepCron, func() { s.runPerRegion(ctx, "election-sweep", s.runElectionSweep) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.TravelSweepCron, func() { s.runTravelSweep(ctx) }); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.renewLoop(ctx)

	s.cron.Start()
	return nil
}

// Stop halts the cron scheduler, releases every lease this instance holds,
// and waits for the renewal goroutine to exit.
func (s *Scheduler) Stop(ctx context.Context) {
	close(s.stopc)
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.wg.Wait()

	s.mu.RLock()
	held := make([]string, 0, len(s.held))
	for shardID, ok := range s.held {
		if ok {
			held = append(held, shardID)
		}
	}
	s.mu.RUnlock()
	for _, shardID := range held {
		_ = s.leases.Release(ctx, shardID, s.ownerID)
	}
}

// renewLoop periodically tries to acquire/renew the lease for every
// currently active region, and the one global lease backing the
// travel-timeout sweep. It is the sole place leases are claimed; cron
// jobs only consult s.held to decide whether to run.
func (s *Scheduler) renewLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.LeaseRenewInterval)
	defer ticker.Stop()

	s.renewAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopc:
			return
		case <-ticker.C:
			s.renewAll(ctx)
		}
	}
}

func (s *Scheduler) renewAll(ctx context.Context) {
	expiresAt := time.Now().UTC().Add(s.cfg.LeaseTTL)

	s.tryHold(ctx, database.GlobalShardID, expiresAt)

	regions, err := s.regionRepo.ListActive(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("scheduler: list active regions failed")
		return
	}
	seen := make(map[string]bool, len(regions)+1)
	seen[database.GlobalShardID] = true
	for _, r := range regions {
		seen[r.ID] = true
		s.tryHold(ctx, r.ID, expiresAt)
	}

	s.mu.Lock()
	for shardID := range s.held {
		if !seen[shardID] {
			delete(s.held, shardID)
		}
	}
	s.mu.Unlock()
}

func (s *Scheduler) tryHold(ctx context.Context, shardID string, expiresAt time.Time) {
	ok, err := s.leases.Acquire(ctx, shardID, s.ownerID, expiresAt)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("scheduler: lease acquire failed")
		return
	}
	s.mu.Lock()
	s.held[shardID] = ok
	s.mu.Unlock()
}

func (s *Scheduler) holds(shardID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held[shardID]
}

// runPerRegion runs job for every active region whose lease this instance
// currently holds, using that region's own shard connection.
func (s *Scheduler) runPerRegion(ctx context.Context, jobName string, job func(ctx context.Context, regionID string, registry *database.Registry) error) {
	regions, err := s.regionRepo.ListActive(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("scheduler: " + jobName + ": list active regions failed")
		return
	}
	for _, r := range regions {
		if !s.holds(r.ID) {
			continue
		}
		if _, ok := s.registry.Region(r.ID); !ok {
			continue
		}
		if err := job(ctx, r.ID, s.registry); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("scheduler: " + jobName + " failed for region " + r.ID)
		}
	}
}

func (s *Scheduler) runColonyTick(ctx context.Context, regionID string, registry *database.Registry) error {
	shardDB, ok := registry.Region(regionID)
	if !ok {
		return nil
	}
	planets := database.NewPlanetRepository(shardDB)
	svc := simulation.NewColonyTickService(planets, s.publisher)
	tickIndex := time.Now().UTC().Unix() / 3600
	_, err := svc.Run(ctx, tickIndex, domain.SystemClock{})
	return err
}

func (s *Scheduler) runElectionSweep(ctx context.Context, regionID string, registry *database.Registry) error {
	shardDB, ok := registry.Region(regionID)
	if !ok {
		return nil
	}
	governanceRepo := database.NewGovernanceRepository(shardDB)
	membershipRepo := database.NewMembershipRepository(shardDB)
	svc := governance.NewService(governanceRepo, membershipRepo, s.publisher)

	now := time.Now().UTC()
	closing, err := governanceRepo.ListOpenElectionsClosingBefore(ctx, now)
	if err != nil {
		return err
	}
	for _, e := range closing {
		if _, err := svc.CloseElection(ctx, e.ID, now); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("scheduler: close election failed for " + e.ID)
		}
	}
	return nil
}

// runTravelSweep fails every travel recorded in the global shard longer
// ago than cfg.TravelTimeout without having materialized, compensating
// the in-flight saga the same way an explicit Fail call would. It runs
// behind the global lease, not a per-region one, since travels live in
// the global shard.
func (s *Scheduler) runTravelSweep(ctx context.Context) {
	if !s.holds(database.GlobalShardID) {
		return
	}
	cutoff := time.Now().UTC().Add(-s.cfg.TravelTimeout)
	timedOut, err := s.travels.ListInTransitRecordedBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("scheduler: list timed-out travels failed")
		return
	}
	for _, t := range timedOut {
		if err := s.travelSvc.Fail(ctx, t.ID, "travel-timeout"); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("scheduler: fail timed-out travel " + t.ID)
		}
	}
}
