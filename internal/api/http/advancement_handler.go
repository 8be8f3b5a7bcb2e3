package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ailubes/veterans-orden-sub001/internal/catalog"
	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/service"
)

// AdvancementHandler exposes the role-progression engine to the admin
// dashboard.
type AdvancementHandler struct {
	advancementSvc service.AdvancementService
	progressSvc    service.ProgressService
	catalog        *catalog.Catalog
}

func NewAdvancementHandler(advancementSvc service.AdvancementService, progressSvc service.ProgressService, cat *catalog.Catalog) *AdvancementHandler {
	return &AdvancementHandler{
		advancementSvc: advancementSvc,
		progressSvc:    progressSvc,
		catalog:        cat,
	}
}

// RegisterRoutes mounts the handler under /api/v1. All routes require an
// admin bearer token.
func (h *AdvancementHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/roles/requirements", h.HandleListRequirements).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/progress", h.HandleGetProgress).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/check", h.HandleCheckAndAdvance).Methods(http.MethodPost)
	api.HandleFunc("/members/{id}/advance", h.HandleManualAdvance).Methods(http.MethodPost)
	api.HandleFunc("/advancements", h.HandleRecentAdvancements).Methods(http.MethodGet)
	api.HandleFunc("/requests/pending", h.HandlePendingRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/process", h.HandleProcessRequest).Methods(http.MethodPost)
}

func (h *AdvancementHandler) HandleListRequirements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

func (h *AdvancementHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r)
	if !ok {
		return
	}
	progress, err := h.progressSvc.Evaluate(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *AdvancementHandler) HandleCheckAndAdvance(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := AdminIDFromContext(r.Context())
	result, err := h.advancementSvc.CheckAndAdvance(r.Context(), memberID, &adminID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if result.Queued {
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "approval_required", "result": result})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdvancementHandler) HandleManualAdvance(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := AdminIDFromContext(r.Context())

	var body struct {
		ToRole domain.MembershipRole `json:"to_role"`
		Reason string                `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.advancementSvc.ManuallyAdvance(r.Context(), memberID, body.ToRole, adminID, body.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"advanced": true, "new_role": body.ToRole})
}

func (h *AdvancementHandler) HandleRecentAdvancements(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	advs, err := h.advancementSvc.RecentAdvancements(r.Context(), int32(limit))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advs)
}

func (h *AdvancementHandler) HandlePendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.advancementSvc.PendingRequests(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *AdvancementHandler) HandleProcessRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := AdminIDFromContext(r.Context())

	var body struct {
		Approved        bool   `json:"approved"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.advancementSvc.ProcessRequest(r.Context(), requestID, adminID, body.Approved, body.RejectionReason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return int32(id), true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyProcessed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
