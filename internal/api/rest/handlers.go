package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atg247/iGM/internal/cache"
	"github.com/atg247/iGM/internal/correction"
	"github.com/atg247/iGM/internal/publisher"
	"github.com/atg247/iGM/internal/schedule"
	"github.com/atg247/iGM/internal/scheduler"
	"github.com/atg247/iGM/internal/service"
	"github.com/atg247/iGM/internal/store"
	"github.com/atg247/iGM/internal/store/repository"
	"github.com/atg247/iGM/internal/tulospalvelu"
)

// maxCompareItems caps the size of one comparison request.
const maxCompareItems = 2000

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db        *store.Database
	cache     *cache.RedisCache
	results   *tulospalvelu.Client
	dashboard *service.DashboardService
	compare   *service.CompareService
	sched     *scheduler.Orchestrator
	events    *publisher.RedisStreamPublisher
	teamRepo  *repository.TeamRepository
	userRepo  *repository.UserRepository
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, redisCache *cache.RedisCache, results *tulospalvelu.Client, dashboard *service.DashboardService, compare *service.CompareService, sched *scheduler.Orchestrator) *Handler {
	return &Handler{
		db:        db,
		cache:     redisCache,
		results:   results,
		dashboard: dashboard,
		compare:   compare,
		sched:     sched,
		events:    publisher.NewRedisStreamPublisher(redisCache.Client()),
		teamRepo:  repository.NewTeamRepository(db),
		userRepo:  repository.NewUserRepository(db),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{"database": "ok", "redis": "ok"}

	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	}
	if err := h.cache.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		checks["redis"] = err.Error()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"service": "igm",
		"checks":  checks,
	})
}

// GetLevels returns the competition levels of a season
func (h *Handler) GetLevels(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	if season == "" {
		respondError(w, http.StatusBadRequest, "Missing season parameter", nil)
		return
	}

	levels, err := h.results.Levels(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch levels", err)
		return
	}

	respondJSON(w, http.StatusOK, levels)
}

// GetStatGroups returns the series of a level
func (h *Handler) GetStatGroups(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	levelID := r.URL.Query().Get("level_id")
	if season == "" || levelID == "" {
		respondError(w, http.StatusBadRequest, "Missing season or level_id parameter", nil)
		return
	}

	groups, err := h.results.StatGroups(r.Context(), season, levelID, r.URL.Query().Get("district_id"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch stat groups", err)
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// GetStatGroupTeams returns the teams of a series
func (h *Handler) GetStatGroupTeams(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	statGroupID := r.URL.Query().Get("stat_group_id")
	if season == "" || statGroupID == "" {
		respondError(w, http.StatusBadRequest, "Missing season or stat_group_id parameter", nil)
		return
	}

	teams, err := h.results.Teams(r.Context(), season, statGroupID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, teams)
}

// GetTeams returns the user's tracked teams with roles
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.dashboard.UserTeams(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	if teams == nil {
		teams = []*store.UserTeamView{}
	}

	respondJSON(w, http.StatusOK, teams)
}

type trackTeamRequest struct {
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	TeamAssoc     string `json:"team_association"`
	StatGroupID   string `json:"stat_group_id"`
	StatGroupName string `json:"stat_group_name"`
	Season        string `json:"season"`
	LevelID       string `json:"level_id"`
	Role          string `json:"role"`
}

// TrackTeam links a team to the user as managed or followed
func (h *Handler) TrackTeam(w http.ResponseWriter, r *http.Request) {
	var req trackTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TeamID == "" || req.StatGroupID == "" || req.Season == "" {
		respondError(w, http.StatusBadRequest, "team_id, stat_group_id and season are required", nil)
		return
	}
	if req.Role != store.RoleManage && req.Role != store.RoleFollow {
		respondError(w, http.StatusBadRequest, "role must be manage or follow", nil)
		return
	}

	teamRowID, err := h.teamRepo.Upsert(r.Context(), &store.Team{
		TeamID:        req.TeamID,
		TeamName:      req.TeamName,
		TeamAssoc:     req.TeamAssoc,
		StatGroupID:   req.StatGroupID,
		StatGroupName: req.StatGroupName,
		Season:        req.Season,
		LevelID:       req.LevelID,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save team", err)
		return
	}

	if err := h.teamRepo.SetUserTeam(r.Context(), userFrom(r), teamRowID, req.Role); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to link team", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   teamRowID,
		"role": req.Role,
	})
}

// UntrackTeam removes a team from the user's dashboard
func (h *Handler) UntrackTeam(w http.ResponseWriter, r *http.Request) {
	teamRowID, err := strconv.Atoi(mux.Vars(r)["teamID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team id", err)
		return
	}

	if err := h.teamRepo.RemoveUserTeam(r.Context(), userFrom(r), teamRowID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to unlink team", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Team removed"})
}

// GetSchedules returns the merged normalized schedule of the user's teams
func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	games, err := h.dashboard.Schedules(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch schedules", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetJopoxGames returns the user's Jopox calendar entries
func (h *Handler) GetJopoxGames(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dashboard.JopoxGames(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch Jopox games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": entries,
		"count": len(entries),
	})
}

type compareRequest struct {
	Games []schedule.Game `json:"games"`
}

// Compare matches the posted games against the user's Jopox calendar
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Games) > maxCompareItems {
		respondError(w, http.StatusRequestEntityTooLarge, "Too many games to compare", nil)
		return
	}

	results, summary, err := h.compare.Compare(r.Context(), userFrom(r), req.Games)
	if errors.Is(err, service.ErrNoJopoxGames) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "skipped",
			"reason": "no_jopox_games",
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "Comparison failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"summary": summary,
		"results": results,
	})
}

type formInfoRequest struct {
	Game schedule.Game `json:"game"`
	UID  string        `json:"uid"`
}

// JopoxFormInformation returns the current Jopox form for a game together
// with the computed corrections.
func (h *Handler) JopoxFormInformation(w http.ResponseWriter, r *http.Request) {
	var req formInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UID == "" {
		respondError(w, http.StatusBadRequest, "uid is required", nil)
		return
	}

	client, err := h.dashboard.JopoxClient(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Jopox login failed", err)
		return
	}

	form, err := client.GameDetails(r.Context(), req.UID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch Jopox form", err)
		return
	}

	set := correction.Build(req.Game, form)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"form":        form,
		"corrections": set,
		"in_sync":     set.InSync(),
	})
}

type updateJopoxRequest struct {
	Game schedule.Game `json:"game"`
	UID  string        `json:"uid"`
}

// UpdateJopox writes the corrected values for one game back to Jopox
func (h *Handler) UpdateJopox(w http.ResponseWriter, r *http.Request) {
	var req updateJopoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UID == "" {
		respondError(w, http.StatusBadRequest, "uid is required", nil)
		return
	}

	userID := userFrom(r)
	client, err := h.dashboard.JopoxClient(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Jopox login failed", err)
		return
	}

	form, err := client.GameDetails(r.Context(), req.UID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch Jopox form", err)
		return
	}

	set := correction.Build(req.Game, form)
	if set.InSync() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Entry already in sync",
			"changes": []string{},
		})
		return
	}

	payload := correction.Payload(req.Game, set, form)
	if err := client.ModifyGame(r.Context(), payload, req.UID); err != nil {
		respondError(w, http.StatusBadGateway, "Jopox update failed", err)
		return
	}

	h.dashboard.InvalidateJopoxGames(r.Context(), userID)

	err = h.events.Publish(r.Context(), publisher.EventJopoxGameSaved, map[string]interface{}{
		"user_id": userID,
		"uid":     req.UID,
		"game_id": req.Game.GameID,
	})
	if err != nil {
		log.Printf("[rest] publishing save event failed: %v", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game updated",
		"changes": set.Changes,
	})
}

// SchedulerStatus reports the refresher's configuration.
func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sched.GetStatus())
}

type createUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// CreateUser provisions a dashboard user. The fronting proxy owns
// authentication, so it supplies the hash it verifies logins against.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Email == "" || req.PasswordHash == "" {
		respondError(w, http.StatusBadRequest, "username, email and password_hash are required", nil)
		return
	}

	id, err := h.userRepo.Create(r.Context(), &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"user_id": id})
}

// GetUser resolves a username to its user record, the lookup the proxy
// needs before it can stamp X-User-ID.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found", err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// JopoxStatus reports whether the user has working Jopox credentials
func (h *Handler) JopoxStatus(w http.ResponseWriter, r *http.Request) {
	hasCreds, err := h.userRepo.HasJopoxCredentials(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check credentials", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"configured": hasCreds,
	})
}

type jopoxCredentialsRequest struct {
	LoginURL    string `json:"login_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TeamID      string `json:"jopox_team_id"`
	CalendarURL string `json:"calendar_url"`
}

// SetJopoxCredentials stores the user's Jopox login details
func (h *Handler) SetJopoxCredentials(w http.ResponseWriter, r *http.Request) {
	var req jopoxCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required", nil)
		return
	}

	err := h.userRepo.SetJopoxCredentials(r.Context(), userFrom(r), req.LoginURL, req.Username, req.Password, req.TeamID, req.CalendarURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save credentials", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Credentials saved"})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
