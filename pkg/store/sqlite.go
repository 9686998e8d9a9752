package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/agentcanvas/engine/pkg/models"
)

// SQLiteStore implements Store on a local SQLite database. List-valued and
// map-valued item fields are stored as JSON columns.
type SQLiteStore struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and bootstraps the
// schema.
func NewSQLiteStore(path string, logger *logrus.Entry) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, log: logger.WithField("component", "store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		canvas_id TEXT NOT NULL,
		name TEXT NOT NULL,
		objective TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		tools TEXT NOT NULL DEFAULT '[]',
		journey_steps TEXT NOT NULL DEFAULT '[]',
		demo_link TEXT NOT NULL DEFAULT '',
		video_link TEXT NOT NULL DEFAULT '',
		adoption INTEGER NOT NULL DEFAULT 0,
		satisfaction INTEGER NOT NULL DEFAULT 0,
		roi_tier TEXT NOT NULL DEFAULT '',
		usage_this_week TEXT NOT NULL DEFAULT '',
		time_saved TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '{}',
		phase TEXT NOT NULL DEFAULT '',
		phase_order INTEGER NOT NULL DEFAULT 0,
		item_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_canvas ON items(canvas_id);
	CREATE INDEX IF NOT EXISTS idx_items_canvas_live ON items(canvas_id, deleted_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const itemColumns = `id, canvas_id, name, objective, description, tools, journey_steps,
	demo_link, video_link, adoption, satisfaction, roi_tier, usage_this_week, time_saved,
	tags, phase, phase_order, item_order, created_at, updated_at, deleted_at`

func (s *SQLiteStore) List(ctx context.Context, canvasID string) ([]models.Item, error) {
	return s.list(ctx, canvasID, false)
}

func (s *SQLiteStore) ListDeleted(ctx context.Context, canvasID string) ([]models.Item, error) {
	return s.list(ctx, canvasID, true)
}

func (s *SQLiteStore) list(ctx context.Context, canvasID string, deleted bool) ([]models.Item, error) {
	cond := "deleted_at IS NULL"
	if deleted {
		cond = "deleted_at IS NOT NULL"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM items WHERE canvas_id = ? AND %s ORDER BY phase_order, item_order, created_at",
		itemColumns, cond,
	)

	rows, err := s.db.QueryContext(ctx, query, canvasID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return items, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM items WHERE id = ?", itemColumns), id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	return item, nil
}

func (s *SQLiteStore) Create(ctx context.Context, item *models.Item) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := s.insert(ctx, s.db, item); err != nil {
		return "", &StoreError{Op: "create", Err: err}
	}
	s.log.WithField("item", item.ID).Debug("created item")
	return item.ID, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, db execer, item *models.Item) error {
	tools, err := json.Marshal(emptyIfNil(item.Tools))
	if err != nil {
		return err
	}
	steps, err := json.Marshal(emptyIfNil(item.JourneySteps))
	if err != nil {
		return err
	}
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}
	record := item.Metrics.Record()

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO items (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemColumns),
		item.ID, item.CanvasID, item.Name, item.Objective, item.Description,
		string(tools), string(steps), item.DemoLink, item.VideoLink,
		record.Adoption, record.Satisfaction, record.ROITier,
		item.Metrics.UsageThisWeek, item.Metrics.TimeSaved,
		string(tags), item.Phase, item.PhaseOrder, item.ItemOrder,
		item.CreatedAt, item.UpdatedAt, item.DeletedAt,
	)
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch ItemPatch) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	applyPatch(item, patch)
	item.UpdatedAt = time.Now().UTC()

	tools, _ := json.Marshal(emptyIfNil(item.Tools))
	steps, _ := json.Marshal(emptyIfNil(item.JourneySteps))
	tags, _ := json.Marshal(item.Tags)
	record := item.Metrics.Record()

	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, objective = ?, description = ?, tools = ?,
			journey_steps = ?, demo_link = ?, video_link = ?, adoption = ?,
			satisfaction = ?, roi_tier = ?, usage_this_week = ?, time_saved = ?,
			tags = ?, phase = ?, phase_order = ?, item_order = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Objective, item.Description, string(tools),
		string(steps), item.DemoLink, item.VideoLink, record.Adoption,
		record.Satisfaction, record.ROITier, item.Metrics.UsageThisWeek,
		item.Metrics.TimeSaved, string(tags), item.Phase, item.PhaseOrder,
		item.ItemOrder, item.UpdatedAt, id,
	)
	if err != nil {
		return &StoreError{Op: "update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().UTC(), time.Now().UTC(), id)
	if err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkReplace substitutes a canvas's entire item set in one transaction,
// including its audit rows: an import starts the canvas's history over.
func (s *SQLiteStore) BulkReplace(ctx context.Context, canvasID string, items []models.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "bulk-replace", Err: err}
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE canvas_id = ?", canvasID); err != nil {
		return &StoreError{Op: "bulk-replace", Err: err}
	}

	now := time.Now().UTC()
	for i := range items {
		item := items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.CanvasID = canvasID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		if err := s.insert(ctx, tx, &item); err != nil {
			return &StoreError{Op: "bulk-replace", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "bulk-replace", Err: err}
	}
	s.log.WithFields(logrus.Fields{"canvas": canvasID, "items": len(items)}).Info("replaced canvas items")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item         models.Item
		tools, steps string
		tags         string
		record       models.MetricsRecord
		deletedAt    sql.NullTime
	)
	err := row.Scan(
		&item.ID, &item.CanvasID, &item.Name, &item.Objective, &item.Description,
		&tools, &steps, &item.DemoLink, &item.VideoLink,
		&record.Adoption, &record.Satisfaction, &record.ROITier,
		&item.Metrics.UsageThisWeek, &item.Metrics.TimeSaved,
		&tags, &item.Phase, &item.PhaseOrder, &item.ItemOrder,
		&item.CreatedAt, &item.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tools), &item.Tools); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &item.JourneySteps); err != nil {
		return nil, fmt.Errorf("decode journey steps: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if item.Metrics.ROIContribution == "" {
		item.Metrics.ROIContribution = record.ROITier
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		item.DeletedAt = &t
	}
	return &item, nil
}

func applyPatch(item *models.Item, patch ItemPatch) {
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Objective != nil {
		item.Objective = *patch.Objective
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Tools != nil {
		item.Tools = *patch.Tools
	}
	if patch.JourneySteps != nil {
		item.JourneySteps = *patch.JourneySteps
	}
	if patch.DemoLink != nil {
		item.DemoLink = *patch.DemoLink
	}
	if patch.VideoLink != nil {
		item.VideoLink = *patch.VideoLink
	}
	if patch.Metrics != nil {
		item.Metrics = *patch.Metrics
	}
	if patch.Tags != nil {
		item.Tags = *patch.Tags
	}
	if patch.Phase != nil {
		item.Phase = *patch.Phase
	}
	if patch.PhaseOrder != nil {
		item.PhaseOrder = *patch.PhaseOrder
	}
	if patch.ItemOrder != nil {
		item.ItemOrder = *patch.ItemOrder
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
