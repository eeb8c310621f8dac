// Command gameserver runs the Sectorwars2102 API surface for one region
// shard, plus the background scheduler that contends for every active
// region's lease. Running one instance per region (each pointed at a
// different GAME_REGION_NAME) gives every region its own gameplay API
// while the lease manager lets any instance pick up another region's
// scheduled jobs if that region's own instance is down.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/advisory"
	"github.com/sectorwars2102/gameserver/internal/api"
	"github.com/sectorwars2102/gameserver/internal/combatengine"
	"github.com/sectorwars2102/gameserver/internal/config"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/account"
	"github.com/sectorwars2102/gameserver/internal/eventfabric"
	"github.com/sectorwars2102/gameserver/internal/faction"
	"github.com/sectorwars2102/gameserver/internal/federation"
	"github.com/sectorwars2102/gameserver/internal/governance"
	"github.com/sectorwars2102/gameserver/internal/identity"
	"github.com/sectorwars2102/gameserver/internal/logging"
	"github.com/sectorwars2102/gameserver/internal/messaging"
	"github.com/sectorwars2102/gameserver/internal/provisioner"
	"github.com/sectorwars2102/gameserver/internal/scheduler"
	"github.com/sectorwars2102/gameserver/internal/security"
	"github.com/sectorwars2102/gameserver/internal/simulation"
	"github.com/sectorwars2102/gameserver/internal/team"
	"github.com/sectorwars2102/gameserver/internal/trading"
	"github.com/sectorwars2102/gameserver/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(logging.Options{Service: "gameserver", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	globalDB, err := database.Open(ctx, cfg.GlobalDatabaseURL, cfg.DBMaxConnections, cfg.DBIdleTimeout)
	if err != nil {
		log.Fatalf("connect to global shard: %v", err)
	}
	defer globalDB.Close()
	if err := database.NewMigrator(migrations.GlobalFS()).Apply(ctx, globalDB); err != nil {
		log.Fatalf("apply global migrations: %v", err)
	}

	regions := database.NewRegionRepository(globalDB)
	shards := database.NewRegionShardRepository(globalDB)
	accounts := database.NewAccountRepository(globalDB)
	players := database.NewPlayerRepository(globalDB)
	refreshTokens := database.NewRefreshTokenRepository(globalDB)
	auditRepo := database.NewAuditRepository(globalDB)
	travels := database.NewTravelRepository(globalDB)
	treaties := database.NewTreatyRepository(globalDB)
	messages := database.NewMessageRepository(globalDB)
	factions := database.NewFactionRepository(globalDB)
	leases := database.NewLeaseRepository(globalDB)
	deliveries := database.NewProvisionerDeliveryRepository(globalDB)

	registry := database.NewRegistry(globalDB)
	assignments, err := shards.List(ctx)
	if err != nil {
		log.Fatalf("list region shard assignments: %v", err)
	}
	for _, a := range assignments {
		regionDB, err := database.Open(ctx, a.ShardDSN, cfg.DBMaxConnections, cfg.DBIdleTimeout)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("gameserver: skip region shard " + a.RegionID + ": connect failed")
			continue
		}
		if err := database.NewMigrator(migrations.RegionFS()).Apply(ctx, regionDB); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("gameserver: skip region shard " + a.RegionID + ": migrate failed")
			regionDB.Close()
			continue
		}
		registry.RegisterRegion(a.RegionID, regionDB)
	}
	defer registry.CloseAll()

	thisRegion, err := regions.GetByName(ctx, cfg.GameRegionName)
	if err != nil {
		log.Fatalf("resolve GAME_REGION_NAME %q: %v", cfg.GameRegionName, err)
	}
	regionDB, ok := registry.Region(thisRegion.ID)
	if !ok {
		log.Fatalf("no shard connection registered for region %q (%s)", cfg.GameRegionName, thisRegion.ID)
	}

	sectors := database.NewSectorRepository(regionDB)
	ships := database.NewShipRepository(regionDB)
	stations := database.NewStationRepository(regionDB)
	planets := database.NewPlanetRepository(regionDB)
	combats := database.NewCombatRepository(regionDB)
	drones := database.NewDroneRepository(regionDB)
	teams := database.NewTeamRepository(regionDB)
	governanceRepo := database.NewGovernanceRepository(regionDB)
	membershipRepo := database.NewMembershipRepository(regionDB)

	store := eventfabric.NewStore(globalDB)
	fabric := eventfabric.NewHub(store, cfg.WSOutboundHighWater, cfg.WSDurableSendDeadline)
	bus := eventfabric.NewPGBus(cfg.GlobalDatabaseURL, globalDB, fabric)
	fabric.SetBus(bus)
	if err := bus.Start(ctx); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("gameserver: event fabric bus failed to start, falling back to in-process delivery only")
	}
	go fabric.Run(ctx)

	hasher := identity.NewCredentialHasher(cfg.Argon2Memory, cfg.Argon2Iterations)
	tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessExpiry)
	mfa := identity.NewMFAManager("Sectorwars2102")
	oauth := identity.NewOAuthClient(map[account.Provider]identity.ProviderCredentials{
		account.ProviderCodeHost:       {ClientID: cfg.OAuthGithubClientID, ClientSecret: cfg.OAuthGithubClientSecret},
		account.ProviderSearchEngine:   {ClientID: cfg.OAuthGoogleClientID, ClientSecret: cfg.OAuthGoogleClientSecret},
		account.ProviderGamingPlatform: {ClientID: cfg.OAuthDiscordClientID, ClientSecret: cfg.OAuthDiscordClientSecret},
	})
	identitySvc := identity.NewService(accounts, players, regions, refreshTokens, auditRepo, hasher, tokens, mfa, oauth, cfg.RefreshExpiry)

	tradingSvc := trading.NewService(stations, ships, players, sectors, regions, factions, fabric)
	combatSvc := combatengine.NewService(combats, ships, drones, fabric)
	teamSvc := team.NewService(teams, fabric)
	governanceSvc := governance.NewService(governanceRepo, membershipRepo, fabric)
	messagingSvc := messaging.NewService(messages, fabric)
	factionSvc := faction.NewService(factions, fabric)

	generator := simulation.NewGenerator(func() string { return uuid.New().String() })
	sectorsFor := func(regionID string) *database.SectorRepository {
		db, ok := registry.Region(regionID)
		if !ok {
			return nil
		}
		return database.NewSectorRepository(db)
	}
	regionSvc := federation.NewRegionService(regions, shards, sectorsFor, generator, fabric)
	treatySvc := federation.NewTreatyService(treaties, regions, governanceRepo, fabric)
	travelSvc := federation.NewTravelService(travels, regions, treatySvc, players, fabric)

	var providers []advisory.Provider
	for i, spec := range cfg.AIProviderKeys {
		endpoint, apiKey, _ := strings.Cut(spec, "=")
		p, err := advisory.NewHTTPProvider("advisor-"+strconv.Itoa(i), endpoint, apiKey)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("gameserver: skip misconfigured advisory provider index " + strconv.Itoa(i))
			continue
		}
		providers = append(providers, p)
	}
	advisorySvc := advisory.NewService(providers, auditRepo, sectors, cfg.AICallTimeout, cfg.AICacheTTL)

	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	abuse := security.NewAbuseDetector(cfg.RateLimitWindow, 5, 20, 30)
	audits := security.NewAuditWriter(auditRepo)

	server := api.NewServer(
		logger, identitySvc, tokens, tradingSvc, combatSvc, teamSvc, governanceSvc, messagingSvc, factionSvc,
		regionSvc, travelSvc, treatySvc, advisorySvc, fabric,
		sectors, ships, players, planets, auditRepo,
		limiter, abuse, audits,
	)

	mux := http.NewServeMux()
	mux.Handle("/", server.Router())
	if cfg.ProvisionerWebhookSecret != "" {
		orchestrator, err := provisioner.NewOrchestratorClient(cfg.OrchestratorBaseURL)
		if err != nil {
			log.Fatalf("build orchestrator client: %v", err)
		}
		webhook := provisioner.NewWebhookHandler(cfg.ProvisionerWebhookSecret, deliveries, regionSvc, orchestrator, audits, logger)
		mux.Handle("/provisioner/webhook", webhook)
	}

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.APIPort),
		Handler:      mux,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	schedCfg := scheduler.Config{
		LeaseTTL:           cfg.SchedulerLeaseTTL,
		LeaseRenewInterval: cfg.SchedulerLeaseRenewInterval,
		ColonyTickCronSpec: cfg.ColonyTickCronSpec,
		ElectionSweepCron:  cfg.ElectionSweepCronSpec,
		TravelSweepCron:    cfg.TravelSweepCronSpec,
		TravelTimeout:      cfg.TravelTimeout,
	}
	ownerID := thisRegion.ID + "-" + uuid.New().String()[:8]
	sched := scheduler.New(ownerID, schedCfg, registry, regions, leases, travels, travelSvc, fabric, logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}

	go func() {
		logger.WithContext(ctx).Info("gameserver: listening on " + httpServer.Addr + " for region " + cfg.GameRegionName)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithContext(ctx).WithError(err).Error("gameserver: http server failed")
		}
	}()

	<-ctx.Done()
	logger.WithContext(context.Background()).Info("gameserver: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sched.Stop(shutdownCtx)
}
