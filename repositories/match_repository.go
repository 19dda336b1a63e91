package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickleball-league/models"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchConflict         = errors.New("match with this id already exists")
	ErrMatchRevisionConflict = errors.New("match was modified by another session")
)

// MatchRepository stores each match as a single JSON document keyed by id.
// Save is a compare-and-swap on the revision column.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	Save(ctx context.Context, match *models.Match) (int64, error)
}

type sqlMatchRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewMatchRepository(db *sql.DB, dialect Dialect) MatchRepository {
	return &sqlMatchRepository{db: db, dialect: dialect}
}

func (r *sqlMatchRepository) Create(ctx context.Context, match *models.Match) error {
	doc, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to encode match %s: %w", match.ID, err)
	}

	query := r.dialect.rebind(`
		INSERT INTO matches (id, tournament_id, status, revision, document, updated_at)
		VALUES ($1, $2, $3, 1, $4, $5)`)

	_, err = r.db.ExecContext(ctx, query, match.ID, match.TournamentID, string(match.Status), string(doc), time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMatchConflict
		}
		return err
	}
	match.Revision = 1
	return nil
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := r.dialect.rebind(`SELECT id, revision, document FROM matches WHERE id = $1`)

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := r.dialect.rebind(`
		SELECT id, revision, document
		FROM matches
		WHERE tournament_id = $1
		ORDER BY id ASC`)

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// Save overwrites the whole document if the stored revision still equals
// match.Revision and returns the new revision.
func (r *sqlMatchRepository) Save(ctx context.Context, match *models.Match) (int64, error) {
	doc, err := json.Marshal(match)
	if err != nil {
		return 0, fmt.Errorf("failed to encode match %s: %w", match.ID, err)
	}

	query := r.dialect.rebind(`
		UPDATE matches
		SET document = $1, status = $2, revision = revision + 1, updated_at = $3
		WHERE id = $4 AND revision = $5`)

	result, err := r.db.ExecContext(ctx, query, string(doc), string(match.Status), time.Now().UTC(), match.ID, match.Revision)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return 0, err
	}
	if rowsAffected == 0 {
		var exists int
		existsQuery := r.dialect.rebind(`SELECT 1 FROM matches WHERE id = $1`)
		if err := r.db.QueryRowContext(ctx, existsQuery, match.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrMatchNotFound
			}
			return 0, err
		}
		return 0, ErrMatchRevisionConflict
	}
	return match.Revision + 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		id       string
		revision int64
		doc      []byte
	)
	if err := row.Scan(&id, &revision, &doc); err != nil {
		return nil, err
	}
	match := &models.Match{}
	if err := json.Unmarshal(doc, match); err != nil {
		return nil, fmt.Errorf("failed to decode match %s: %w", id, err)
	}
	match.ID = id
	match.Revision = revision
	return match, nil
}
