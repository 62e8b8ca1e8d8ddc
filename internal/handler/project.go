package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitesmith/sitesmith-go/internal/middleware"
	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/service"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

// HandleCreate handles POST /api/v1/projects requests.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreateProjectRequest
	if !decodeBody(w, r, 10<<20, &req) {
		return
	}

	resp, err := h.service.CreateProject(r.Context(), userID, req)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/v1/projects requests.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	projects, err := h.service.ListUserProjects(r.Context(), userID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleListCommunity handles GET /api/v1/projects/community requests.
func (h *ProjectHandler) HandleListCommunity(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListCommunityProjects(r.Context())
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleGet handles GET /api/v1/projects/{project_id} requests. Published
// projects are readable anonymously; private ones require the owner.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	// Zero when no credential was presented; the read policy decides.
	actorID, _ := middleware.UserIDFromContext(r.Context())

	resp, err := h.service.GetProject(r.Context(), projectID, actorID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTimeline handles GET /api/v1/projects/{project_id}/timeline
// requests.
func (h *ProjectHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	actorID, _ := middleware.UserIDFromContext(r.Context())

	items, err := h.service.GetTimeline(r.Context(), projectID, actorID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleUpdate handles PUT /api/v1/projects/{project_id} requests.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req model.UpdateProjectRequest
	if !decodeBody(w, r, 10<<20, &req) {
		return
	}

	resp, err := h.service.UpdateProject(r.Context(), projectID, userID, req)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTogglePublish handles PATCH /api/v1/projects/{project_id}/publish
// requests.
func (h *ProjectHandler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.TogglePublish(r.Context(), projectID, userID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRollback handles POST /api/v1/projects/{project_id}/rollback
// requests.
func (h *ProjectHandler) HandleRollback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req model.RollbackRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.Rollback(r.Context(), projectID, userID, req.VersionID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/v1/projects/{project_id} requests.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProject(r.Context(), projectID, userID); err != nil {
		writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "project_id")
	if id == "" || len(id) > 36 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid project id"))
		return "", false
	}
	return id, true
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNameRequired),
		errors.Is(err, service.ErrPromptRequired),
		errors.Is(err, service.ErrNoCode),
		errors.Is(err, service.ErrInsufficientCredits):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrVersionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrGenerationFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
