package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/lib/pq"
)

var (
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrMembershipRankInvalid = errors.New("membership rank conflict or invalid")
)

type MembershipRepository interface {
	ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.Membership, error)
	GetByTeamAndUser(ctx context.Context, exec SQLExecutor, teamID, userID int) (*models.Membership, error)
	// LockByTeamAndUsers returns the memberships of userIDs in teamID, locked
	// FOR UPDATE in ascending user id order. Missing users are simply absent.
	LockByTeamAndUsers(ctx context.Context, exec SQLExecutor, teamID int, userIDs ...int) ([]*models.Membership, error)
	UpdateRank(ctx context.Context, exec SQLExecutor, teamID, userID, rank int) error
	ListLadder(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.LadderEntry, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

const membershipColumns = `id, team_id, user_id, rank, status, role, created_at, updated_at`

func (r *postgresMembershipRepository) scanMembership(row rowScanner) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Rank, &m.Status, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, classifyError(err)
	}
	return &m, nil
}

func (r *postgresMembershipRepository) queryMemberships(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Membership, error) {
	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query memberships: %w", err))
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		m, scanErr := r.scanMembership(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", scanErr)
		}
		memberships = append(memberships, m)
	}
	if err = rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error during membership rows iteration: %w", err))
	}
	return memberships, nil
}

func (r *postgresMembershipRepository) ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM team_memberships WHERE user_id = $1 ORDER BY team_id ASC`
	return r.queryMemberships(ctx, exec, query, userID)
}

func (r *postgresMembershipRepository) GetByTeamAndUser(ctx context.Context, exec SQLExecutor, teamID, userID int) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM team_memberships WHERE team_id = $1 AND user_id = $2`
	return r.scanMembership(executorOr(exec, r.db).QueryRowContext(ctx, query, teamID, userID))
}

func (r *postgresMembershipRepository) LockByTeamAndUsers(ctx context.Context, exec SQLExecutor, teamID int, userIDs ...int) ([]*models.Membership, error) {
	if len(userIDs) == 0 {
		return []*models.Membership{}, nil
	}
	query := `
		SELECT ` + membershipColumns + `
		FROM team_memberships
		WHERE team_id = $1 AND user_id = ANY($2)
		ORDER BY user_id ASC
		FOR UPDATE`
	return r.queryMemberships(ctx, exec, query, teamID, pq.Array(toInt64s(userIDs)))
}

func (r *postgresMembershipRepository) UpdateRank(ctx context.Context, exec SQLExecutor, teamID, userID, rank int) error {
	query := `UPDATE team_memberships SET rank = $1, updated_at = NOW() WHERE team_id = $2 AND user_id = $3`
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, rank, teamID, userID)
	if err != nil {
		return r.handleMembershipError(err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) ListLadder(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.LadderEntry, error) {
	query := `
		SELECT tm.team_id, tm.user_id, u.nickname, u.discord_handle, tm.rank, tm.role
		FROM team_memberships tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1 AND tm.status IN ('approved', 'active')
		ORDER BY tm.rank ASC, tm.user_id ASC`

	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query ladder for team %d: %w", teamID, err))
	}
	defer rows.Close()

	entries := make([]*models.LadderEntry, 0)
	for rows.Next() {
		var e models.LadderEntry
		if scanErr := rows.Scan(&e.TeamID, &e.UserID, &e.Nickname, &e.DiscordHandle, &e.Rank, &e.Role); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ladder row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error during ladder rows iteration: %w", err))
	}
	return entries, nil
}

func (r *postgresMembershipRepository) handleMembershipError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "team_memberships_rank_check", "team_memberships_team_rank_key":
			return fmt.Errorf("%w: %s", ErrMembershipRankInvalid, pqErr.Message)
		}
	}
	return classifyError(err)
}
