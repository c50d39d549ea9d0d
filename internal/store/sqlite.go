package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var (
	// ErrNotFound is returned when a record is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientCredits is returned when a debit would take a balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        credits INTEGER NOT NULL DEFAULT 0,
        total_creations INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        initial_prompt TEXT NOT NULL,
        current_code TEXT,
        current_version_index TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL DEFAULT 'idle' CHECK (status IN ('idle', 'generating', 'failed', 'ready')),
        is_published BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS conversations (
        id TEXT PRIMARY KEY, -- UUID
        project_id TEXT NOT NULL,
        seq INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE (project_id, seq),
        FOREIGN KEY (project_id) REFERENCES projects (id)
    );

    CREATE TABLE IF NOT EXISTS versions (
        id TEXT PRIMARY KEY, -- UUID
        project_id TEXT NOT NULL,
        seq INTEGER NOT NULL,
        code TEXT NOT NULL,
        description TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE (project_id, seq),
        FOREIGN KEY (project_id) REFERENCES projects (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, credits, total_creations, created_at FROM users WHERE external_user_id = ?", externalUserID).
		Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.Credits, &user.TotalCreations, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string, startingCredits int) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash, credits) VALUES (?, ?, ?)", externalUserID, passwordHash, startingCredits)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, credits, total_creations, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.Credits, &user.TotalCreations, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserCredits(userID int64) (int, error) {
	var credits int
	err := s.db.QueryRow("SELECT credits FROM users WHERE id = ?", userID).Scan(&credits)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to query credits: %w", err)
	}
	return credits, nil
}

// Ledger methods
//
// DebitCredits is the single admission gate for paid operations. The balance
// guard lives in the UPDATE itself so two concurrent debits for the same user
// cannot both pass a stale read.
func (s *SQLiteStore) DebitCredits(userID int64, amount int) error {
	res, err := s.db.Exec("UPDATE users SET credits = credits - ? WHERE id = ? AND credits >= ?", amount, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// CreditCredits refunds a previously debited amount. Unconditional; callers
// are responsible for invoking it at most once per failed attempt.
func (s *SQLiteStore) CreditCredits(userID int64, amount int) error {
	res, err := s.db.Exec("UPDATE users SET credits = credits + ? WHERE id = ?", amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit credits: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) IncrementTotalCreations(userID int64) error {
	_, err := s.db.Exec("UPDATE users SET total_creations = total_creations + 1 WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to increment total creations: %w", err)
	}
	return nil
}
