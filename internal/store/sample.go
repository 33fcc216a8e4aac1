package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/signspell/internal/detector"
)

// Sample is a recorded hand pose labeled with the symbol it was meant to spell.
type Sample struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Handedness string            `json:"handedness,omitempty"`
	Landmarks  detector.JointSet `json:"landmarks"`
	CreatedAt  time.Time         `json:"created_at"`
}

// SampleRepository provides CRUD operations for samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts a sample. An empty ID is filled with a new UUID.
func (r *SampleRepository) Create(s *Sample) error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidSample)
	}
	if !s.Landmarks.Complete() {
		return fmt.Errorf("%w: got %d landmarks, expected %d", ErrInvalidSample, len(s.Landmarks), detector.NumLandmarks)
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now()

	data, err := json.Marshal(s.Landmarks)
	if err != nil {
		return fmt.Errorf("encode landmarks: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO samples (id, symbol, handedness, landmarks, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Symbol, s.Handedness, string(data), s.CreatedAt,
	)
	return err
}

// GetByID retrieves a sample by its ID.
func (r *SampleRepository) GetByID(id string) (*Sample, error) {
	row := r.db.QueryRow(
		`SELECT id, symbol, handedness, landmarks, created_at
		 FROM samples WHERE id = ?`,
		id,
	)

	s, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns samples ordered by creation time. A non-empty symbol limits
// the result to that symbol.
func (r *SampleRepository) List(symbol string) ([]*Sample, error) {
	query := `SELECT id, symbol, handedness, landmarks, created_at FROM samples`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Delete removes a sample by its ID.
func (r *SampleRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM samples WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CountBySymbol returns how many samples exist for each symbol.
func (r *SampleRepository) CountBySymbol() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT symbol, COUNT(*) FROM samples GROUP BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		counts[symbol] = n
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (*Sample, error) {
	s := &Sample{}
	var data string
	if err := row.Scan(&s.ID, &s.Symbol, &s.Handedness, &data, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &s.Landmarks); err != nil {
		return nil, fmt.Errorf("decode landmarks for sample %s: %w", s.ID, err)
	}
	return s, nil
}
