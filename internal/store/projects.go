package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project methods
func (s *SQLiteStore) CreateProject(userID int64, name, initialPrompt string) (*Project, error) {
	projectID := uuid.NewString()
	stmt, err := s.db.Prepare("INSERT INTO projects (id, user_id, name, initial_prompt, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare project insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.Exec(projectID, userID, name, initialPrompt, StatusIdle, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to execute project insert: %w", err)
	}
	return &Project{
		ID:            projectID,
		UserID:        userID,
		Name:          name,
		InitialPrompt: initialPrompt,
		Status:        StatusIdle,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *SQLiteStore) GetProjectByID(projectID string, userID int64) (*Project, error) {
	row := s.db.QueryRow("SELECT id, user_id, name, initial_prompt, current_code, current_version_index, status, is_published, created_at, updated_at FROM projects WHERE id = ? AND user_id = ?", projectID, userID)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*Project, error) {
	var project Project
	var currentCode sql.NullString
	err := row.Scan(&project.ID, &project.UserID, &project.Name, &project.InitialPrompt, &currentCode,
		&project.CurrentVersionIndex, &project.Status, &project.IsPublished, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if currentCode.Valid {
		project.CurrentCode = &currentCode.String
	}
	return &project, nil
}

func (s *SQLiteStore) GetProjectsByUserID(userID int64) ([]Project, error) {
	rows, err := s.db.Query("SELECT id, user_id, name, initial_prompt, current_code, current_version_index, status, is_published, created_at, updated_at FROM projects WHERE user_id = ? ORDER BY updated_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	return collectProjects(rows)
}

func (s *SQLiteStore) GetPublishedProjects() ([]Project, error) {
	rows, err := s.db.Query("SELECT id, user_id, name, initial_prompt, current_code, current_version_index, status, is_published, created_at, updated_at FROM projects WHERE is_published = TRUE ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query published projects: %w", err)
	}
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]Project, error) {
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var project Project
		var currentCode sql.NullString
		if err := rows.Scan(&project.ID, &project.UserID, &project.Name, &project.InitialPrompt, &currentCode,
			&project.CurrentVersionIndex, &project.Status, &project.IsPublished, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		if currentCode.Valid {
			project.CurrentCode = &currentCode.String
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// GetPublishedProjectCode returns the live code of a published project.
// Unpublished projects and projects with no generated code are invisible here.
func (s *SQLiteStore) GetPublishedProjectCode(projectID string) (string, error) {
	var code sql.NullString
	var isPublished bool
	err := s.db.QueryRow("SELECT current_code, is_published FROM projects WHERE id = ?", projectID).Scan(&code, &isPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query published project: %w", err)
	}
	if !isPublished || !code.Valid || code.String == "" {
		return "", ErrNotFound
	}
	return code.String, nil
}

func (s *SQLiteStore) SetProjectStatus(projectID string, status string) error {
	res, err := s.db.Exec("UPDATE projects SET status = ? WHERE id = ?", status, projectID)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveProjectCode is the manual-save path: it overwrites the live code and
// clears the version pointer, detaching the project from its history.
func (s *SQLiteStore) SaveProjectCode(projectID string, userID int64, code string) error {
	res, err := s.db.Exec("UPDATE projects SET current_code = ?, current_version_index = '', updated_at = ? WHERE id = ? AND user_id = ?",
		code, time.Now(), projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to save project code: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCurrentVersion repoints the project at an existing version's code.
// Version membership is the caller's responsibility.
func (s *SQLiteStore) SetCurrentVersion(projectID string, versionID string, code string) error {
	res, err := s.db.Exec("UPDATE projects SET current_code = ?, current_version_index = ?, updated_at = ? WHERE id = ?",
		code, versionID, time.Now(), projectID)
	if err != nil {
		return fmt.Errorf("failed to set current version: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ToggleProjectPublish(projectID string, userID int64) error {
	res, err := s.db.Exec("UPDATE projects SET is_published = NOT is_published WHERE id = ? AND user_id = ?", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle publish: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project and its conversation and version history in
// one transaction. The ownership check rides on the project delete itself.
func (s *SQLiteStore) DeleteProject(projectID string, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM projects WHERE id = ? AND user_id = ?", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if _, err = tx.Exec("DELETE FROM conversations WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("failed to delete project conversations: %w", err)
	}
	if _, err = tx.Exec("DELETE FROM versions WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("failed to delete project versions: %w", err)
	}

	return tx.Commit()
}

// Conversation methods
//
// AppendConversation assigns the next per-project sequence number inside the
// insert transaction, so transcript order never depends on clock resolution.
func (s *SQLiteStore) AppendConversation(projectID, role, content string) (*ConversationEntry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin conversation transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err = tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM conversations WHERE project_id = ?", projectID).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to compute conversation seq: %w", err)
	}

	entry := ConversationEntry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Seq:       seq,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	_, err = tx.Exec("INSERT INTO conversations (id, project_id, seq, role, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.ProjectID, entry.Seq, entry.Role, entry.Content, entry.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit conversation entry: %w", err)
	}
	return &entry, nil
}

func (s *SQLiteStore) GetConversationByProjectID(projectID string) ([]ConversationEntry, error) {
	rows, err := s.db.Query("SELECT id, project_id, seq, role, content, timestamp FROM conversations WHERE project_id = ? ORDER BY seq ASC", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	var entries []ConversationEntry
	for rows.Next() {
		var entry ConversationEntry
		if err := rows.Scan(&entry.ID, &entry.ProjectID, &entry.Seq, &entry.Role, &entry.Content, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Version methods
//
// CommitVersion appends an immutable version and advances the project's
// current pointer in the same transaction, so a reader never observes a
// version without the matching pointer update or vice versa.
func (s *SQLiteStore) CommitVersion(projectID, code, description string) (*Version, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err = tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM versions WHERE project_id = ?", projectID).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to compute version seq: %w", err)
	}

	version := Version{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Seq:         seq,
		Code:        code,
		Description: description,
		Timestamp:   time.Now(),
	}
	_, err = tx.Exec("INSERT INTO versions (id, project_id, seq, code, description, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		version.ID, version.ProjectID, version.Seq, version.Code, version.Description, version.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert version: %w", err)
	}

	res, err := tx.Exec("UPDATE projects SET current_code = ?, current_version_index = ?, status = ?, updated_at = ? WHERE id = ?",
		code, version.ID, StatusReady, version.Timestamp, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to advance current version: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit version: %w", err)
	}
	return &version, nil
}

func (s *SQLiteStore) GetVersionsByProjectID(projectID string) ([]Version, error) {
	rows, err := s.db.Query("SELECT id, project_id, seq, code, description, timestamp FROM versions WHERE project_id = ? ORDER BY seq ASC", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var version Version
		if err := rows.Scan(&version.ID, &version.ProjectID, &version.Seq, &version.Code, &version.Description, &version.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan version row: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, nil
}

func (s *SQLiteStore) GetVersion(projectID, versionID string) (*Version, error) {
	var version Version
	err := s.db.QueryRow("SELECT id, project_id, seq, code, description, timestamp FROM versions WHERE id = ? AND project_id = ?", versionID, projectID).
		Scan(&version.ID, &version.ProjectID, &version.Seq, &version.Code, &version.Description, &version.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}
