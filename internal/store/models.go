package store

import "time"

// Project generation status, owned by the pipeline.
const (
	StatusIdle       = "idle"
	StatusGenerating = "generating"
	StatusFailed     = "failed"
	StatusReady      = "ready"
)

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	Credits        int       `json:"credits"`
	TotalCreations int       `json:"total_creations"`
	CreatedAt      time.Time `json:"created_at"`
}

type Project struct {
	ID                  string    `json:"id"` // Using UUID for external ID
	UserID              int64     `json:"user_id"`
	Name                string    `json:"name"`
	InitialPrompt       string    `json:"initial_prompt"`
	CurrentCode         *string   `json:"current_code"` // Nullable until first commit
	CurrentVersionIndex string    `json:"current_version_index"`
	Status              string    `json:"status"`
	IsPublished         bool      `json:"is_published"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ConversationEntry struct {
	ID        string    `json:"id"` // Using UUID for external ID
	ProjectID string    `json:"project_id"`
	Seq       int64     `json:"seq"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Version struct {
	ID          string    `json:"id"` // Using UUID for external ID
	ProjectID   string    `json:"project_id"`
	Seq         int64     `json:"seq"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
