package pinstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Faultbox/panoview/internal/overlay"
)

//go:embed schema.sql
var schemaSQL string

// SQLStore keeps pins in a SQLite database. Pins of a model are ordered by
// their position column.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore opens path and applies the schema.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening pin database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying pin schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Pins returns the pins of modelID in stored order.
func (s *SQLStore) Pins(ctx context.Context, modelID string) ([]overlay.Pin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pin_id, anchor_x, anchor_y, anchor_z, stem_x, stem_y, stem_z,
		       opacity, stem_visible, color, icon_id, attachment
		FROM pins
		WHERE model_id = ?
		ORDER BY position
	`, modelID)
	if err != nil {
		return nil, fmt.Errorf("querying pins: %w", err)
	}
	defer rows.Close()

	var pins []overlay.Pin
	for rows.Next() {
		var (
			p           overlay.Pin
			stemVisible int
		)
		if err := rows.Scan(
			&p.ID,
			&p.Anchor.X, &p.Anchor.Y, &p.Anchor.Z,
			&p.Stem.X, &p.Stem.Y, &p.Stem.Z,
			&p.Opacity, &stemVisible, &p.Color, &p.IconID, &p.Attachment,
		); err != nil {
			return nil, fmt.Errorf("scanning pin: %w", err)
		}
		p.StemVisible = stemVisible != 0
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pins: %w", err)
	}
	if len(pins) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, modelID)
	}
	return pins, nil
}

// Save replaces the pins of modelID in one transaction.
func (s *SQLStore) Save(ctx context.Context, modelID string, pins []overlay.Pin) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pins WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("clearing pins: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pins (model_id, position, pin_id, anchor_x, anchor_y, anchor_z,
		                  stem_x, stem_y, stem_z, opacity, stem_visible, color, icon_id, attachment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range pins {
		stemVisible := 0
		if p.StemVisible {
			stemVisible = 1
		}
		if _, err := stmt.ExecContext(ctx,
			modelID, i, p.ID,
			p.Anchor.X, p.Anchor.Y, p.Anchor.Z,
			p.Stem.X, p.Stem.Y, p.Stem.Z,
			p.Opacity, stemVisible, p.Color, p.IconID, p.Attachment,
		); err != nil {
			return fmt.Errorf("inserting pin %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pins: %w", err)
	}
	return nil
}

// Models lists the model ids with stored pins.
func (s *SQLStore) Models(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT model_id FROM pins ORDER BY model_id`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		models = append(models, id)
	}
	return models, rows.Err()
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
