package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/web-terminal-gateway/backend/internal/workspace"
)

// WorkspaceRepository stores the single workspace layout as one JSON row.
type WorkspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository.
func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Load reads the persisted workspace. The second return is false when no
// workspace has ever been saved.
func (r *WorkspaceRepository) Load() (workspace.State, bool, error) {
	query := `SELECT state FROM workspace WHERE id = 1`

	var raw string
	err := r.db.QueryRow(query).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return workspace.State{}, false, nil
	}
	if err != nil {
		return workspace.State{}, false, fmt.Errorf("failed to load workspace: %w", err)
	}

	var state workspace.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return workspace.State{}, false, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return state, true, nil
}

// Save upserts the workspace row.
func (r *WorkspaceRepository) Save(state workspace.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	query := `
		INSERT INTO workspace (id, state, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, string(raw), time.Now()); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}
