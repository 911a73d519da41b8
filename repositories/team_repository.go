package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rank-ladder/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	query := `SELECT id, name, owner_id, created_at FROM teams WHERE id = $1`

	var team models.Team
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, classifyError(fmt.Errorf("failed to get team by id %d: %w", id, err))
	}
	return &team, nil
}
