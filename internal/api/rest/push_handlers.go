package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/atg247/iGM/internal/correction"
	"github.com/atg247/iGM/internal/push"
	"github.com/atg247/iGM/internal/reconcile"
	"github.com/atg247/iGM/internal/schedule"
	"github.com/atg247/iGM/internal/service"
)

// PushHandler proxies API calls to the bulk sync service.
type PushHandler struct {
	service   *push.Service
	dashboard *service.DashboardService
}

// NewPushHandler wires the REST layer to the push service.
func NewPushHandler(svc *push.Service, dashboard *service.DashboardService) *PushHandler {
	return &PushHandler{service: svc, dashboard: dashboard}
}

type bulkCreateRequest struct {
	Games []schedule.Game `json:"games"`
	Alias string          `json:"alias"`
}

// HandleBulkCreate handles POST /api/create_jopox: it re-checks which of
// the posted games are still missing from the calendar, then enqueues one
// create job for them. Only red, managed, future-dated games are pushed;
// the rest of the selection is ignored rather than rejected, so a game
// that turned green between compare and submit is silently skipped.
func (h *PushHandler) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Games) == 0 {
		respondError(w, http.StatusBadRequest, "games is required", nil)
		return
	}
	if len(req.Games) > maxCompareItems {
		respondError(w, http.StatusRequestEntityTooLarge, "Too many games", nil)
		return
	}

	userID := userFrom(r)
	ctx := r.Context()

	entries, err := h.dashboard.JopoxGames(ctx, userID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch Jopox games", err)
		return
	}

	managed, err := h.dashboard.ManagedTeamIDs(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve managed teams", err)
		return
	}

	results := service.ResultsByGameID(reconcile.Compare(req.Games, entries))
	eligible := correction.SelectBulkEligible(req.Games, results, managed, time.Now().UTC())
	if len(eligible) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "skipped",
			"message": "No eligible games to create",
		})
		return
	}

	items := make([]push.WorkItem, 0, len(eligible))
	for _, g := range eligible {
		items = append(items, push.WorkItem{
			GameID:  g.GameID,
			Label:   fmt.Sprintf("%s %s - %s", g.Date, g.HomeTeam, g.AwayTeam),
			Payload: correction.CreatePayload(g, req.Alias),
		})
	}

	job, err := h.service.Enqueue(ctx, userID, push.JobTypeCreate, items)
	if errors.Is(err, push.ErrJobInProgress) {
		respondError(w, http.StatusConflict, "A sync job is already running", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to start sync job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job":      job,
		"selected": len(items),
	})
}

// HandleSyncStatus handles GET /api/create_jopox/status
func (h *PushHandler) HandleSyncStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetStatus(r.Context(), userFrom(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	respondJSON(w, http.StatusOK, buildStatusPayload(summary))
}

// HandleJobStatus handles GET /api/create_jopox/status/{jobID}
func (h *PushHandler) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.Atoi(mux.Vars(r)["jobID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job id", err)
		return
	}

	job, items, err := h.service.GetJobStatus(r.Context(), userFrom(r), jobID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch job", err)
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "Job not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":   jobPayload(job),
		"items": items,
	})
}

func buildStatusPayload(summary *push.StatusSummary) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active jobs",
		"history": []map[string]interface{}{},
	}

	if summary.ActiveJob != nil {
		response["status"] = summary.ActiveJob.Status
		response["message"] = fmt.Sprintf("%d/%d games processed", summary.ActiveJob.ProcessedItems, summary.ActiveJob.TotalItems)
		response["active_job"] = jobPayload(summary.ActiveJob)
	}

	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, job := range summary.History {
		history = append(history, jobPayload(job))
	}
	response["history"] = history

	if summary.Items != nil {
		response["items"] = summary.Items
	}

	return response
}

func jobPayload(job *push.Job) map[string]interface{} {
	if job == nil {
		return nil
	}

	payload := map[string]interface{}{
		"job_id":          job.JobID,
		"job_type":        job.JobType,
		"status":          job.Status,
		"total_items":     job.TotalItems,
		"processed_items": job.ProcessedItems,
		"failed_items":    job.FailedItems,
		"created_at":      job.CreatedAt,
		"updated_at":      job.UpdatedAt,
	}

	if job.ErrorMessage.Valid {
		payload["error_message"] = job.ErrorMessage.String
	}
	if job.StartedAt.Valid {
		payload["started_at"] = job.StartedAt.Time
	}
	if job.CompletedAt.Valid {
		payload["completed_at"] = job.CompletedAt.Time
	}

	return payload
}
