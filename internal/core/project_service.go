package core

import (
	"fmt"

	"pagecraft.ai/pagecraft/internal/config"
	"pagecraft.ai/pagecraft/internal/store"
)

// ProjectService covers everything around the pipeline: user resolution,
// project reads, rollback, manual save, publish toggling and deletion.
type ProjectService struct {
	dbStore *store.SQLiteStore
}

func NewProjectService(db *store.SQLiteStore) *ProjectService {
	return &ProjectService{dbStore: db}
}

func (s *ProjectService) GetUserByExternalID(externalUserID string) (*store.User, error) {
	return s.dbStore.GetUserByExternalID(externalUserID)
}

func (s *ProjectService) CreateUser(externalUserID, passwordHash string) (*store.User, error) {
	return s.dbStore.CreateUser(externalUserID, passwordHash, config.AppConfig.NewUserCredits)
}

func (s *ProjectService) GetUserCredits(userID int64) (int, error) {
	return s.dbStore.GetUserCredits(userID)
}

// GetProjectDetails returns a project with its full transcript and version
// history, both in append order. A nil project means not found.
func (s *ProjectService) GetProjectDetails(projectID string, userID int64) (*store.Project, []store.ConversationEntry, []store.Version, error) {
	project, err := s.dbStore.GetProjectByID(projectID, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, nil, nil, nil // Not found
	}

	conversation, err := s.dbStore.GetConversationByProjectID(projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	versions, err := s.dbStore.GetVersionsByProjectID(projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get versions: %w", err)
	}
	return project, conversation, versions, nil
}

func (s *ProjectService) GetProjectPreview(projectID string, userID int64) (*store.Project, []store.Version, error) {
	project, err := s.dbStore.GetProjectByID(projectID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, nil, nil // Not found
	}

	versions, err := s.dbStore.GetVersionsByProjectID(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get versions: %w", err)
	}
	return project, versions, nil
}

func (s *ProjectService) GetProjects(userID int64) ([]store.Project, error) {
	return s.dbStore.GetProjectsByUserID(userID)
}

func (s *ProjectService) GetPublishedProjects() ([]store.Project, error) {
	return s.dbStore.GetPublishedProjects()
}

func (s *ProjectService) GetPublishedProjectCode(projectID string) (string, error) {
	return s.dbStore.GetPublishedProjectCode(projectID)
}

// Rollback repoints the project's live code at a previously committed
// version. It never forks history: no new version is created, existing ones
// are untouched. Rolling back to the already-current version is a no-op in
// effect.
func (s *ProjectService) Rollback(projectID string, userID int64, versionID string) error {
	project, err := s.dbStore.GetProjectByID(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return ErrProjectNotFound
	}

	version, err := s.dbStore.GetVersion(projectID, versionID)
	if err != nil {
		return fmt.Errorf("failed to look up version: %w", err)
	}
	if version == nil {
		return ErrVersionNotFound
	}

	if err := s.dbStore.SetCurrentVersion(projectID, version.ID, version.Code); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	if _, err := s.dbStore.AppendConversation(projectID, "assistant", "Rolled back to selected version"); err != nil {
		return fmt.Errorf("failed to record rollback: %w", err)
	}
	return nil
}

// SaveCode overwrites the live code directly and clears the version pointer.
// The saved code is deliberately not versioned; the project stays unlinked
// from history until the next pipeline commit or rollback.
func (s *ProjectService) SaveCode(projectID string, userID int64, code string) error {
	return s.dbStore.SaveProjectCode(projectID, userID, code)
}

func (s *ProjectService) TogglePublish(projectID string, userID int64) error {
	return s.dbStore.ToggleProjectPublish(projectID, userID)
}

func (s *ProjectService) DeleteProject(projectID string, userID int64) error {
	return s.dbStore.DeleteProject(projectID, userID)
}
