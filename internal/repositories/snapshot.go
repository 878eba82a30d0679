package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

const snapshotColumns = `id, sequence, topic, playlist_ref, columns, item_count, payload, received_at, created_at`

// SnapshotRepository implements models.Repository[*models.SnapshotRecord] for the snapshot journal.
//
// Records are append-only; Delete is a soft delete.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a record with a generated ID and the next sequence number
func (r *SnapshotRepository) Create(record *models.SnapshotRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO snapshots (` + snapshotColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		string(record.Topic),
		record.PlaylistRef,
		strings.Join(record.Columns, ","),
		record.ItemCount,
		record.Payload,
		record.ReceivedAt,
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	record.SetID(id)
	record.Sequence = sequence
	return nil
}

// Get retrieves a record by ID, excluding soft-deleted records
func (r *SnapshotRepository) Get(id string) (*models.SnapshotRecord, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE id = ? AND deleted_at IS NULL`

	record, err := scanSnapshot(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	return record, err
}

// Delete soft-deletes a record by ID
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE snapshots SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves records in sequence order, excluding soft-deleted records.
//
// Supported criteria: "topic" (models.Topic or string), "playlist_ref" (string), "limit" (int, keeps the most
// recent records).
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.SnapshotRecord, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE deleted_at IS NULL`
	args := []any{}

	switch topic := criteria["topic"].(type) {
	case models.Topic:
		query += " AND topic = ?"
		args = append(args, string(topic))
	case string:
		if topic != "" {
			query += " AND topic = ?"
			args = append(args, topic)
		}
	}

	if ref, ok := criteria["playlist_ref"].(string); ok && ref != "" {
		query += " AND playlist_ref = ?"
		args = append(args, ref)
	}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query = `SELECT * FROM (` + query + ` ORDER BY sequence DESC LIMIT ?) ORDER BY sequence ASC`
		args = append(args, limit)
	} else {
		query += " ORDER BY sequence ASC"
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []*models.SnapshotRecord
	for rows.Next() {
		record, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of live records.
func (r *SnapshotRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSnapshot scans a row from either [sql.Row] or [sql.Rows] into a [models.SnapshotRecord]
func scanSnapshot(row scanner) (*models.SnapshotRecord, error) {
	var (
		id          string
		sequence    int
		topic       string
		playlistRef string
		columns     string
		itemCount   int
		payload     []byte
		receivedAt  time.Time
		createdAt   time.Time
	)

	err := row.Scan(&id, &sequence, &topic, &playlistRef, &columns, &itemCount, &payload, &receivedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	var cols []string
	if columns != "" {
		cols = strings.Split(columns, ",")
	}

	record := models.NewSnapshotRecord(models.Topic(topic), playlistRef, cols, itemCount, payload)
	record.SetID(id)
	record.Sequence = sequence
	record.ReceivedAt = receivedAt
	record.SetCreatedAt(createdAt)
	return record, nil
}
