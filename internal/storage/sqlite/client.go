package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/storage/models"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		learner_profile TEXT,
		max_rounds INTEGER NOT NULL,
		rounds_done INTEGER NOT NULL DEFAULT 0,
		zpd_estimate TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		category TEXT NOT NULL,
		intensity TEXT NOT NULL,
		justification TEXT,
		prompts TEXT,
		follow_ups TEXT,
		conclusion TEXT,
		started_at INTEGER NOT NULL,
		concluded_at INTEGER,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);
	CREATE INDEX IF NOT EXISTS idx_interactions_category ON interactions(category);

	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		interaction_id TEXT NOT NULL,
		text TEXT NOT NULL,
		tag TEXT,
		pattern_reply TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (interaction_id) REFERENCES interactions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_responses_interaction ON responses(interaction_id);

	CREATE TABLE IF NOT EXISTS map_snapshots (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		map_json TEXT NOT NULL,
		concept_count INTEGER NOT NULL,
		relationship_count INTEGER NOT NULL,
		connectivity_ratio REAL NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_session ON map_snapshots(session_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (c *Client) UpsertSession(rec *models.SessionRecord) error {
	now := time.Now().Unix()
	_, err := c.db.Exec(`
		INSERT INTO sessions (id, learner_profile, max_rounds, rounds_done, zpd_estimate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			learner_profile = excluded.learner_profile,
			rounds_done = excluded.rounds_done,
			zpd_estimate = excluded.zpd_estimate,
			updated_at = excluded.updated_at`,
		rec.ID, rec.LearnerProfile, rec.MaxRounds, rec.RoundsDone, rec.ZPDEstimate, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (c *Client) GetSession(id string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	var createdAt, updatedAt int64

	err := c.db.QueryRow(`
		SELECT id, learner_profile, max_rounds, rounds_done, zpd_estimate, created_at, updated_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.LearnerProfile, &rec.MaxRounds, &rec.RoundsDone, &rec.ZPDEstimate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func (c *Client) SaveInteraction(rec *models.InteractionRecord) error {
	prompts, err := json.Marshal(rec.Prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	followUps, err := json.Marshal(rec.FollowUps)
	if err != nil {
		return fmt.Errorf("failed to marshal follow-ups: %w", err)
	}

	var concludedAt interface{}
	if !rec.ConcludedAt.IsZero() {
		concludedAt = rec.ConcludedAt.Unix()
	}

	_, err = c.db.Exec(`
		INSERT INTO interactions (id, session_id, round, category, intensity, justification, prompts, follow_ups, conclusion, started_at, concluded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			follow_ups = excluded.follow_ups,
			conclusion = excluded.conclusion,
			concluded_at = excluded.concluded_at`,
		rec.ID, rec.SessionID, rec.Round, rec.Category, rec.Intensity, rec.Justification,
		string(prompts), string(followUps), rec.Conclusion, rec.StartedAt.Unix(), concludedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (c *Client) SaveResponse(rec *models.ResponseRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := c.db.Exec(`
		INSERT INTO responses (id, interaction_id, text, tag, pattern_reply, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.InteractionID, rec.Text, rec.Tag, rec.PatternReply, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

func (c *Client) SaveMapSnapshot(rec *models.MapSnapshot) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := c.db.Exec(`
		INSERT INTO map_snapshots (id, session_id, round, map_json, concept_count, relationship_count, connectivity_ratio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Round, rec.MapJSON, rec.ConceptCount, rec.RelationshipCount,
		rec.ConnectivityRatio, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save map snapshot: %w", err)
	}
	return nil
}

func (c *Client) GetInteractions(sessionID string) ([]*models.InteractionRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, session_id, round, category, intensity, justification, prompts, follow_ups, conclusion, started_at, concluded_at
		FROM interactions WHERE session_id = ? ORDER BY round ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var records []*models.InteractionRecord
	for rows.Next() {
		var rec models.InteractionRecord
		var prompts, followUps string
		var startedAt int64
		var concludedAt sql.NullInt64

		err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Round, &rec.Category, &rec.Intensity,
			&rec.Justification, &prompts, &followUps, &rec.Conclusion, &startedAt, &concludedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}

		if err := json.Unmarshal([]byte(prompts), &rec.Prompts); err != nil {
			rec.Prompts = nil
		}
		if err := json.Unmarshal([]byte(followUps), &rec.FollowUps); err != nil {
			rec.FollowUps = nil
		}
		rec.StartedAt = time.Unix(startedAt, 0)
		if concludedAt.Valid {
			rec.ConcludedAt = time.Unix(concludedAt.Int64, 0)
		}

		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (c *Client) GetResponses(interactionID string) ([]*models.ResponseRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, interaction_id, text, tag, pattern_reply, created_at
		FROM responses WHERE interaction_id = ? ORDER BY created_at ASC`, interactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var records []*models.ResponseRecord
	for rows.Next() {
		var rec models.ResponseRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.InteractionID, &rec.Text, &rec.Tag, &rec.PatternReply, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
