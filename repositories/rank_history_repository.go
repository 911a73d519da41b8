package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/lib/pq"
)

var ErrRankHistoryReferenceInvalid = errors.New("rank history user, team or challenge conflict or invalid")

// RankHistoryRepository is append-only: there is no update or delete.
type RankHistoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.RankHistory) error
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int, userID *int) ([]*models.RankHistory, error)
	ListByChallenge(ctx context.Context, exec SQLExecutor, challengeID int) ([]*models.RankHistory, error)
}

type postgresRankHistoryRepository struct {
	db *sql.DB
}

func NewPostgresRankHistoryRepository(db *sql.DB) RankHistoryRepository {
	return &postgresRankHistoryRepository{db: db}
}

func (r *postgresRankHistoryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.RankHistory) error {
	query := `
		INSERT INTO rank_histories (user_id, team_id, previous_rank, new_rank, challenge_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executorOr(exec, r.db).QueryRowContext(ctx, query,
		entry.UserID, entry.TeamID, entry.PreviousRank, entry.NewRank, entry.ChallengeID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrRankHistoryReferenceInvalid, pqErr.Constraint)
		}
		return classifyError(err)
	}
	return nil
}

func (r *postgresRankHistoryRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int, userID *int) ([]*models.RankHistory, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, user_id, team_id, previous_rank, new_rank, challenge_id, created_at
		FROM rank_histories
		WHERE team_id = $1`)

	args := []interface{}{teamID}
	if userID != nil {
		queryBuilder.WriteString(" AND user_id = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *userID)
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	return r.query(ctx, exec, queryBuilder.String(), args...)
}

func (r *postgresRankHistoryRepository) ListByChallenge(ctx context.Context, exec SQLExecutor, challengeID int) ([]*models.RankHistory, error) {
	query := `
		SELECT id, user_id, team_id, previous_rank, new_rank, challenge_id, created_at
		FROM rank_histories
		WHERE challenge_id = $1
		ORDER BY id ASC`
	return r.query(ctx, exec, query, challengeID)
}

func (r *postgresRankHistoryRepository) query(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.RankHistory, error) {
	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query rank history: %w", err))
	}
	defer rows.Close()

	entries := make([]*models.RankHistory, 0)
	for rows.Next() {
		var h models.RankHistory
		if scanErr := rows.Scan(&h.ID, &h.UserID, &h.TeamID, &h.PreviousRank, &h.NewRank, &h.ChallengeID, &h.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan rank history row: %w", scanErr)
		}
		entries = append(entries, &h)
	}
	if err = rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error during rank history rows iteration: %w", err))
	}
	return entries, nil
}
