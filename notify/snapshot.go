package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/storage"
)

const (
	snapshotCacheControl = "public, max-age=31536000, immutable"
	latestCacheControl   = "no-cache"
)

// LadderReader loads a team together with its ordered ladder.
type LadderReader interface {
	GetTeamLadder(ctx context.Context, teamID int) (*models.Team, error)
}

// SnapshotArchiver writes the team ladder to object storage every time ranks
// are swapped. Each snapshot is stored under its event id and also as the
// team's latest.json.
type SnapshotArchiver struct {
	ladders  LadderReader
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewSnapshotArchiver(ladders LadderReader, uploader storage.FileUploader, logger *slog.Logger) *SnapshotArchiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotArchiver{ladders: ladders, uploader: uploader, logger: logger}
}

type ladderSnapshot struct {
	EventID  string                `json:"event_id"`
	TeamID   int                   `json:"team_id"`
	TeamName string                `json:"team_name"`
	TakenAt  time.Time             `json:"taken_at"`
	Members  []*models.LadderEntry `json:"members"`
}

func SnapshotKey(teamID int, eventID string) string {
	return fmt.Sprintf("ladders/%s/%s.json", TeamRoom(teamID), eventID)
}

func LatestSnapshotKey(teamID int) string {
	return fmt.Sprintf("ladders/%s/latest.json", TeamRoom(teamID))
}

func (a *SnapshotArchiver) Name() string { return "snapshot_archiver" }

func (a *SnapshotArchiver) Deliver(ctx context.Context, event Event) error {
	if event.Type != EventRankingsUpdated || event.TeamID == 0 {
		return nil
	}

	team, err := a.ladders.GetTeamLadder(ctx, event.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load ladder of team %d: %w", event.TeamID, err)
	}
	body, err := json.Marshal(ladderSnapshot{
		EventID:  event.ID,
		TeamID:   team.ID,
		TeamName: team.Name,
		TakenAt:  event.OccurredAt,
		Members:  team.Members,
	})
	if err != nil {
		return fmt.Errorf("failed to encode ladder snapshot: %w", err)
	}

	objects := []storage.Object{
		{Key: SnapshotKey(event.TeamID, event.ID), ContentType: "application/json", CacheControl: snapshotCacheControl, Body: body},
		{Key: LatestSnapshotKey(event.TeamID), ContentType: "application/json", CacheControl: latestCacheControl, Body: body},
	}
	for _, obj := range objects {
		stored, err := a.uploader.Upload(ctx, obj)
		if err != nil {
			return err
		}
		a.logger.DebugContext(ctx, "ladder snapshot stored",
			slog.String("key", stored.Key),
			slog.String("url", stored.URL),
			slog.Int("size", stored.Size),
		)
	}
	return nil
}
