package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sectorwars2102/gameserver/internal/advisory"
	"github.com/sectorwars2102/gameserver/internal/combatengine"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/eventfabric"
	"github.com/sectorwars2102/gameserver/internal/faction"
	"github.com/sectorwars2102/gameserver/internal/federation"
	"github.com/sectorwars2102/gameserver/internal/governance"
	"github.com/sectorwars2102/gameserver/internal/identity"
	"github.com/sectorwars2102/gameserver/internal/logging"
	"github.com/sectorwars2102/gameserver/internal/messaging"
	"github.com/sectorwars2102/gameserver/internal/security"
	"github.com/sectorwars2102/gameserver/internal/team"
	"github.com/sectorwars2102/gameserver/internal/trading"
)

// timeLayout is the wire format every timestamp field in a response body
// uses, matching time.RFC3339Nano's layout (fractional seconds, trailing
// zeros trimmed).
const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Server holds every domain service the API surface dispatches into. One
// instance is built in cmd/gameserver/main.go and lives for the process.
type Server struct {
	logger *logging.Logger

	identity     *identity.Service
	tokens       *identity.TokenManager
	trading      *trading.Service
	combat       *combatengine.Service
	team         *team.Service
	governance   *governance.Service
	messaging    *messaging.Service
	faction      *faction.Service
	regions      *federation.RegionService
	travel       *federation.TravelService
	treaties     *federation.TreatyService
	advisory     *advisory.Service
	fabric       *eventfabric.Hub
	sectors      *database.SectorRepository
	ships        *database.ShipRepository
	players      *database.PlayerRepository
	planets      *database.PlanetRepository
	audit        *database.AuditRepository

	limiter *security.RateLimiter
	abuse   *security.AbuseDetector
	audits  *security.AuditWriter
}

// NewServer wires a Server over already-constructed services.
func NewServer(
	logger *logging.Logger,
	identitySvc *identity.Service,
	tokens *identity.TokenManager,
	tradingSvc *trading.Service,
	combatSvc *combatengine.Service,
	teamSvc *team.Service,
	governanceSvc *governance.Service,
	messagingSvc *messaging.Service,
	factionSvc *faction.Service,
	regions *federation.RegionService,
	travel *federation.TravelService,
	treaties *federation.TreatyService,
	advisorySvc *advisory.Service,
	fabric *eventfabric.Hub,
	sectors *database.SectorRepository,
	ships *database.ShipRepository,
	players *database.PlayerRepository,
	planets *database.PlanetRepository,
	audit *database.AuditRepository,
	limiter *security.RateLimiter,
	abuse *security.AbuseDetector,
	audits *security.AuditWriter,
) *Server {
	return &Server{
		logger:     logger,
		identity:   identitySvc,
		tokens:     tokens,
		trading:    tradingSvc,
		combat:     combatSvc,
		team:       teamSvc,
		governance: governanceSvc,
		messaging:  messagingSvc,
		faction:    factionSvc,
		regions:    regions,
		travel:     travel,
		treaties:   treaties,
		advisory:   advisorySvc,
		fabric:     fabric,
		sectors:    sectors,
		ships:      ships,
		players:    players,
		planets:    planets,
		audit:      audit,
		limiter:    limiter,
		abuse:      abuse,
		audits:     audits,
	}
}

// routeVar reads a gorilla/mux path variable; handlers call this instead
// of importing mux directly.
func routeVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// Router builds the full gorilla/mux router. The auth, trade, combat,
// messages, governance and administrative families each get their own
// sub-router and middleware chain; the self, navigation, team, faction
// and regional routes share one authenticated sub-router rate-limited
// under the default family. No planet routes are mounted.
func (s *Server) Router() http.Handler {
	root := mux.NewRouter()
	root.Use(requestIDMiddleware(s.logger))
	root.Use(loggingMiddleware(s.logger))
	root.Use(corsMiddleware)

	root.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := root.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(rateLimitMiddleware(s.limiter, security.FamilyAuth))
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/sign-in", s.handleSignIn).Methods(http.MethodPost)
	auth.HandleFunc("/mfa/challenge", s.handleCompleteMFAChallenge).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	auth.HandleFunc("/providers/{provider}/callback", s.handleProviderCallback).Methods(http.MethodPost)

	authed := api.PathPrefix("").Subrouter()
	authed.Use(requireAuth(s.tokens))
	authed.Use(rateLimitMiddleware(s.limiter, security.FamilyDefault))

	authed.HandleFunc("/self/mfa/enroll", s.handleEnrollMFA).Methods(http.MethodPost)
	authed.HandleFunc("/self/mfa/confirm", s.handleConfirmMFAEnrollment).Methods(http.MethodPost)
	authed.HandleFunc("/self/profile", s.handleSelfProfile).Methods(http.MethodGet)

	authed.HandleFunc("/navigation/sectors", s.handleListSectors).Methods(http.MethodGet)
	authed.HandleFunc("/navigation/route", s.handleOptimizeRoute).Methods(http.MethodGet)
	authed.HandleFunc("/navigation/sectors/{id}/scan", s.handleScanSector).Methods(http.MethodGet)

	trade := api.PathPrefix("/trade").Subrouter()
	trade.Use(requireAuth(s.tokens))
	trade.Use(rateLimitMiddleware(s.limiter, security.FamilyTrade))
	trade.HandleFunc("/market/{stationId}", s.handleMarketAnalysis).Methods(http.MethodGet)
	trade.HandleFunc("/buy", s.handleTradeBuy).Methods(http.MethodPost)
	trade.HandleFunc("/sell", s.handleTradeSell).Methods(http.MethodPost)

	combat := api.PathPrefix("/combat").Subrouter()
	combat.Use(requireAuth(s.tokens))
	combat.Use(rateLimitMiddleware(s.limiter, security.FamilyCombat))
	combat.HandleFunc("/engage", s.handleCombatEngage).Methods(http.MethodPost)
	combat.HandleFunc("/{id}", s.handleCombatStatus).Methods(http.MethodGet)
	combat.HandleFunc("/{id}/rounds", s.handleCombatResolveRound).Methods(http.MethodPost)
	combat.HandleFunc("/{id}/retreat", s.handleCombatRetreat).Methods(http.MethodPost)
	combat.HandleFunc("/drones/deploy", s.handleDeployDrones).Methods(http.MethodPost)
	combat.HandleFunc("/drones/recall", s.handleRecallDrones).Methods(http.MethodPost)
	combat.HandleFunc("/drones", s.handleListDeployments).Methods(http.MethodGet)

	authed.HandleFunc("/teams", s.handleCreateTeam).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/apply", s.handleApplyToTeam).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/applications/{playerId}", s.handleManageTeamApplication).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/roles/{playerId}", s.handleAssignTeamRole).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/treasury", s.handleTeamTreasury).Methods(http.MethodPost)

	messages := api.PathPrefix("/messages").Subrouter()
	messages.Use(requireAuth(s.tokens))
	messages.Use(rateLimitMiddleware(s.limiter, security.FamilyMessages))
	messages.HandleFunc("/inbox", s.handleInbox).Methods(http.MethodGet)
	messages.HandleFunc("", s.handleSendMessage).Methods(http.MethodPost)
	messages.HandleFunc("/{id}/reply", s.handleReplyMessage).Methods(http.MethodPost)
	messages.HandleFunc("/{id}/read", s.handleMarkMessageRead).Methods(http.MethodPost)

	authed.HandleFunc("/factions", s.handleListFactions).Methods(http.MethodGet)
	authed.HandleFunc("/factions/{id}", s.handleFactionDetail).Methods(http.MethodGet)
	authed.HandleFunc("/factions/{id}/reputation", s.handleFactionReputation).Methods(http.MethodGet)
	authed.HandleFunc("/factions/relations", s.handleFactionRelations).Methods(http.MethodGet)

	governanceRouter := api.PathPrefix("/governance").Subrouter()
	governanceRouter.Use(requireAuth(s.tokens))
	governanceRouter.Use(rateLimitMiddleware(s.limiter, security.FamilyGovernance))
	governanceRouter.HandleFunc("/policies", s.handleProposePolicy).Methods(http.MethodPost)
	governanceRouter.HandleFunc("/policies/{id}/vote", s.handleCastPolicyVote).Methods(http.MethodPost)
	governanceRouter.HandleFunc("/elections", s.handleScheduleElection).Methods(http.MethodPost)
	governanceRouter.HandleFunc("/elections/{id}/ballots", s.handleCastBallot).Methods(http.MethodPost)

	authed.HandleFunc("/regional/regions", s.handleListRegions).Methods(http.MethodGet)
	authed.HandleFunc("/regional/travel", s.handleBeginTravel).Methods(http.MethodPost)

	admin := api.PathPrefix("/administrative").Subrouter()
	admin.Use(requireAuth(s.tokens))
	admin.Use(requireAdmin())
	admin.HandleFunc("/fabric", s.handleFabricPresence).Methods(http.MethodGet)
	admin.HandleFunc("/regions/{name}/suspend", s.handleAdminSuspendRegion).Methods(http.MethodPost)
	admin.HandleFunc("/regions/{name}/resume", s.handleAdminResumeRegion).Methods(http.MethodPost)

	root.PathPrefix("/ws").Handler(requireAuth(s.tokens)(http.HandlerFunc(s.handleWebsocket)))

	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "player:" + claims.AccountID
	}
	eventfabric.ServeWS(s.fabric, w, r, []string{scope}, claims.Role == "administrator", 0)
}

func (s *Server) handleFabricPresence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.fabric.Presence())
}
