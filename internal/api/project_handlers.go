package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"pagecraft.ai/pagecraft/internal/core"
	"pagecraft.ai/pagecraft/internal/store"
)

type CreateProjectRequest struct {
	InitialPrompt string `json:"initial_prompt"`
}

func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.pipelineService.CreateProject(userID, req.InitialPrompt)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyPrompt):
			respondMessage(w, http.StatusBadRequest, "Valid prompt is required")
		case errors.Is(err, store.ErrInsufficientCredits):
			respondMessage(w, http.StatusForbidden, "Insufficient credits")
		default:
			log.Printf("Error creating project for user %d: %v", userID, err)
			respondMessage(w, http.StatusInternalServerError, "Failed to create project")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"projectId": project.ID,
		"message":   "Project created, generation in progress",
	})
}

type RevisionRequest struct {
	Message string `json:"message"`
}

func (h *APIHandler) MakeRevisionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	var req RevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	err := h.pipelineService.MakeRevision(r.Context(), userID, projectID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyPrompt):
			respondMessage(w, http.StatusBadRequest, "Valid prompt is required")
		case errors.Is(err, store.ErrInsufficientCredits):
			respondMessage(w, http.StatusForbidden, "Not enough credits")
		case errors.Is(err, core.ErrProjectNotFound):
			respondMessage(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, core.ErrGenerationEmpty):
			// The debit was already refunded; the caller gets an explicit
			// failure instead of a hollow success.
			respondMessage(w, http.StatusBadGateway, "Unable to generate code, please try again")
		default:
			log.Printf("Error making revision for user %d, project %s: %v", userID, projectID, err)
			respondMessage(w, http.StatusInternalServerError, "Failed to make revision")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Changes made successfully")
}

type SaveProjectRequest struct {
	Code string `json:"code"`
}

func (h *APIHandler) SaveProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	var req SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Code == "" {
		respondMessage(w, http.StatusBadRequest, "Code is required")
		return
	}

	if err := h.projectService.SaveCode(projectID, userID, req.Code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("Error saving project %s for user %d: %v", projectID, userID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to save project")
		return
	}

	respondMessage(w, http.StatusOK, "Project saved successfully")
}

func (h *APIHandler) RollbackHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")
	versionID := chi.URLParam(r, "versionID")

	err := h.projectService.Rollback(projectID, userID, versionID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrProjectNotFound):
			respondMessage(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, core.ErrVersionNotFound):
			respondMessage(w, http.StatusNotFound, "Version not found")
		default:
			log.Printf("Error rolling back project %s to version %s: %v", projectID, versionID, err)
			respondMessage(w, http.StatusInternalServerError, "Failed to roll back")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Version rolled back")
}

func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("Error deleting project %s for user %d: %v", projectID, userID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	respondMessage(w, http.StatusOK, "Project deleted successfully")
}

func (h *APIHandler) TogglePublishHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	if err := h.projectService.TogglePublish(projectID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("Error toggling publish for project %s: %v", projectID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to toggle publish")
		return
	}

	respondMessage(w, http.StatusOK, "Project publish status toggled successfully")
}

type ProjectDetailsResponse struct {
	*store.Project
	Conversation []store.ConversationEntry `json:"conversation"`
	Versions     []store.Version           `json:"versions"`
}

func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	project, conversation, versions, err := h.projectService.GetProjectDetails(projectID, userID)
	if err != nil {
		log.Printf("Error getting project %s for user %d: %v", projectID, userID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to get project")
		return
	}
	if project == nil {
		respondMessage(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"project": ProjectDetailsResponse{
			Project:      project,
			Conversation: conversation,
			Versions:     versions,
		},
	})
}

func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	projects, err := h.projectService.GetProjects(userID)
	if err != nil {
		log.Printf("Error listing projects for user %d: %v", userID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type ProjectPreviewResponse struct {
	*store.Project
	Versions []store.Version `json:"versions"`
}

func (h *APIHandler) GetProjectPreviewHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	projectID := chi.URLParam(r, "projectID")

	project, versions, err := h.projectService.GetProjectPreview(projectID, userID)
	if err != nil {
		log.Printf("Error getting preview for project %s: %v", projectID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to get project")
		return
	}
	if project == nil {
		respondMessage(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"project": ProjectPreviewResponse{Project: project, Versions: versions},
	})
}

func (h *APIHandler) GetPublishedProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.GetPublishedProjects()
	if err != nil {
		log.Printf("Error listing published projects: %v", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to list published projects")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *APIHandler) GetPublishedProjectCodeHandler(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	code, err := h.projectService.GetPublishedProjectCode(projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Printf("Error getting published code for project %s: %v", projectID, err)
		respondMessage(w, http.StatusInternalServerError, "Failed to get project code")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"code": code})
}
