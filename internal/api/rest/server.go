package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atg247/iGM/internal/cache"
	"github.com/atg247/iGM/internal/push"
	"github.com/atg247/iGM/internal/scheduler"
	"github.com/atg247/iGM/internal/service"
	"github.com/atg247/iGM/internal/store"
	"github.com/atg247/iGM/internal/tulospalvelu"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, redisCache *cache.RedisCache, results *tulospalvelu.Client,
	dashboard *service.DashboardService, compare *service.CompareService, pushSvc *push.Service,
	sched *scheduler.Orchestrator) *Server {

	handler := NewHandler(db, redisCache, results, dashboard, compare, sched)
	pushHandler := NewPushHandler(pushSvc, dashboard)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// User provisioning, called by the fronting proxy (which also stamps
	// X-User-ID on the /api routes)
	router.HandleFunc("/users", handler.CreateUser).Methods("POST")
	router.HandleFunc("/users/{username}", handler.GetUser).Methods("GET")

	// API routes, all user-scoped
	api := router.PathPrefix("/api").Subrouter()
	api.Use(UserMiddleware)

	// Results-service lookups for the team picker
	api.HandleFunc("/gamefetcher/levels", handler.GetLevels).Methods("GET")
	api.HandleFunc("/gamefetcher/statgroups", handler.GetStatGroups).Methods("GET")
	api.HandleFunc("/gamefetcher/teams", handler.GetStatGroupTeams).Methods("GET")

	// Tracked teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams", handler.TrackTeam).Methods("POST")
	api.HandleFunc("/teams/{teamID}", handler.UntrackTeam).Methods("DELETE")

	// Schedules and comparison
	api.HandleFunc("/schedules", handler.GetSchedules).Methods("GET")
	api.HandleFunc("/jopox_games", handler.GetJopoxGames).Methods("GET")
	api.HandleFunc("/compare", handler.Compare).Methods("POST")

	// Jopox game writes
	api.HandleFunc("/jopox_form_information", handler.JopoxFormInformation).Methods("POST")
	api.HandleFunc("/update_jopox", handler.UpdateJopox).Methods("POST")
	api.HandleFunc("/create_jopox", pushHandler.HandleBulkCreate).Methods("POST")
	api.HandleFunc("/create_jopox/status", pushHandler.HandleSyncStatus).Methods("GET")
	api.HandleFunc("/create_jopox/status/{jobID}", pushHandler.HandleJobStatus).Methods("GET")

	// Jopox account
	api.HandleFunc("/jopox_status", handler.JopoxStatus).Methods("GET")
	api.HandleFunc("/jopox_credentials", handler.SetJopoxCredentials).Methods("POST")

	// Background refresher
	api.HandleFunc("/scheduler/status", handler.SchedulerStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
