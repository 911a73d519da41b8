package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/lib/pq"
)

var (
	ErrChallengeNotFound       = errors.New("challenge not found")
	ErrChallengeStatusConflict = errors.New("challenge status changed concurrently")
	ErrChallengeUserInvalid    = errors.New("challenge user conflict or invalid")
	ErrChallengeTeamInvalid    = errors.New("challenge team conflict or invalid")
)

type ChallengeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, challenge *models.Challenge) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Challenge, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Challenge, error)
	ListByUser(ctx context.Context, exec SQLExecutor, userID int, status *models.ChallengeStatus) ([]*models.Challenge, error)
	// UpdateStatus moves the challenge from -> to. It returns
	// ErrChallengeStatusConflict when the row is no longer in from.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.ChallengeStatus) error
	// Complete records the winner and loser of an accepted challenge and
	// pins the team the verdict was applied in.
	Complete(ctx context.Context, exec SQLExecutor, id, teamID, winnerID, loserID int, completedAt time.Time) error
}

type postgresChallengeRepository struct {
	db *sql.DB
}

func NewPostgresChallengeRepository(db *sql.DB) ChallengeRepository {
	return &postgresChallengeRepository{db: db}
}

const challengeColumns = `id, challenger_id, opponent_id, witness_id, team_id, status, banned_agent,
		winner_id, loser_id, completed_at, created_at, updated_at`

func (r *postgresChallengeRepository) scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		c           models.Challenge
		bannedAgent []byte
	)
	err := row.Scan(
		&c.ID,
		&c.ChallengerID,
		&c.OpponentID,
		&c.WitnessID,
		&c.TeamID,
		&c.Status,
		&bannedAgent,
		&c.WinnerID,
		&c.LoserID,
		&c.CompletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, classifyError(err)
	}
	if len(bannedAgent) > 0 {
		c.BannedAgent = bannedAgent
	}
	return &c, nil
}

func (r *postgresChallengeRepository) Create(ctx context.Context, exec SQLExecutor, challenge *models.Challenge) error {
	query := `
		INSERT INTO challenges (challenger_id, opponent_id, witness_id, team_id, status, banned_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	var bannedAgent interface{}
	if len(challenge.BannedAgent) > 0 {
		bannedAgent = string(challenge.BannedAgent)
	}

	err := executorOr(exec, r.db).QueryRowContext(ctx, query,
		challenge.ChallengerID,
		challenge.OpponentID,
		challenge.WitnessID,
		challenge.TeamID,
		challenge.Status,
		bannedAgent,
	).Scan(&challenge.ID, &challenge.CreatedAt, &challenge.UpdatedAt)

	return r.handleChallengeError(err)
}

func (r *postgresChallengeRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	c, err := r.scanChallenge(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrChallengeNotFound) {
		return nil, fmt.Errorf("failed to scan challenge by id %d: %w", id, err)
	}
	return c, err
}

func (r *postgresChallengeRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1 FOR UPDATE`
	c, err := r.scanChallenge(executorOr(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrChallengeNotFound) {
		return nil, fmt.Errorf("failed to lock challenge %d: %w", id, err)
	}
	return c, err
}

func (r *postgresChallengeRepository) ListByUser(ctx context.Context, exec SQLExecutor, userID int, status *models.ChallengeStatus) ([]*models.Challenge, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE (challenger_id = $1 OR opponent_id = $1 OR witness_id = $1)`)

	args := []interface{}{userID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := executorOr(exec, r.db).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query challenges for user %d: %w", userID, err))
	}
	defer rows.Close()

	challenges := make([]*models.Challenge, 0)
	for rows.Next() {
		c, scanErr := r.scanChallenge(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", scanErr)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error during challenge rows iteration: %w", err))
	}
	return challenges, nil
}

func (r *postgresChallengeRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.ChallengeStatus) error {
	query := `UPDATE challenges SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return r.handleChallengeError(err)
	}
	return checkAffectedRows(result, ErrChallengeStatusConflict)
}

func (r *postgresChallengeRepository) Complete(ctx context.Context, exec SQLExecutor, id, teamID, winnerID, loserID int, completedAt time.Time) error {
	query := `
		UPDATE challenges
		SET status = $1, winner_id = $2, loser_id = $3, completed_at = $4, updated_at = $4,
		    team_id = COALESCE(team_id, $5)
		WHERE id = $6 AND status = $7`
	result, err := executorOr(exec, r.db).ExecContext(ctx, query,
		models.ChallengeStatusCompleted, winnerID, loserID, completedAt, teamID, id, models.ChallengeStatusAccepted)
	if err != nil {
		return r.handleChallengeError(err)
	}
	return checkAffectedRows(result, ErrChallengeStatusConflict)
}

func (r *postgresChallengeRepository) handleChallengeError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "challenges_challenger_id_fkey", "challenges_opponent_id_fkey", "challenges_witness_id_fkey",
			"challenges_winner_id_fkey", "challenges_loser_id_fkey":
			return ErrChallengeUserInvalid
		case "challenges_team_id_fkey":
			return ErrChallengeTeamInvalid
		}
	}
	return classifyError(err)
}
