package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/pickleball-league/models"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player with this id already exists")
)

// PlayerRepository holds club rosters used to pick substitutes.
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error)
}

type sqlPlayerRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewPlayerRepository(db *sql.DB, dialect Dialect) PlayerRepository {
	return &sqlPlayerRepository{db: db, dialect: dialect}
}

func (r *sqlPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := r.dialect.rebind(`INSERT INTO players (id, team_id, name, gender) VALUES ($1, $2, $3, $4)`)
	_, err := r.db.ExecContext(ctx, query, player.ID, player.TeamID, player.Name, string(player.Gender))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlayerConflict
		}
		return err
	}
	return nil
}

func (r *sqlPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := r.dialect.rebind(`SELECT id, team_id, name, gender FROM players WHERE id = $1`)

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&player.ID, &player.TeamID, &player.Name, &player.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *sqlPlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	query := r.dialect.rebind(`
		SELECT id, team_id, name, gender
		FROM players
		WHERE team_id = $1
		ORDER BY name ASC`)

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(&player.ID, &player.TeamID, &player.Name, &player.Gender); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
