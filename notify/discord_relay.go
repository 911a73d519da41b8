package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/rank-ladder/models"
)

const defaultRelayTimeout = 5 * time.Second

type DiscordRelayConfig struct {
	URL   string
	Token string
}

// DiscordRelay forwards events to the Discord bot relay service, which owns
// channel routing and message styling.
type DiscordRelay struct {
	url    string
	token  string
	client *http.Client
}

func NewDiscordRelay(cfg DiscordRelayConfig, client *http.Client) *DiscordRelay {
	if client == nil {
		client = &http.Client{Timeout: defaultRelayTimeout}
	}
	return &DiscordRelay{url: cfg.URL, token: cfg.Token, client: client}
}

type relayMessage struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	TeamID     int       `json:"team_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Content    string    `json:"content"`
	Mentions   []string  `json:"mentions,omitempty"`
	Payload    any       `json:"payload"`
}

func (r *DiscordRelay) Name() string { return "discord_relay" }

func (r *DiscordRelay) Deliver(ctx context.Context, event Event) error {
	body, err := json.Marshal(relayMessage{
		EventID:    event.ID,
		Type:       event.Type,
		TeamID:     event.TeamID,
		OccurredAt: event.OccurredAt,
		Content:    relayContent(event),
		Mentions:   relayMentions(event),
		Payload:    event.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode relay message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.ID)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay responded %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func relayContent(event Event) string {
	switch p := event.Payload.(type) {
	case ChallengePayload:
		if p.Challenge == nil {
			return string(event.Type)
		}
		c := p.Challenge
		switch event.Type {
		case EventChallengeCreated:
			return fmt.Sprintf("Challenge #%d: user %d challenged user %d", c.ID, c.ChallengerID, c.OpponentID)
		case EventChallengeAccepted:
			return fmt.Sprintf("Challenge #%d accepted by user %d", c.ID, c.OpponentID)
		case EventChallengeDeclined:
			return fmt.Sprintf("Challenge #%d declined by user %d", c.ID, c.OpponentID)
		}
	case OutcomePayload:
		o := p.Outcome
		winner, loser := p.Winner.DisplayName(), p.Loser.DisplayName()
		if o.RanksSwapped {
			return fmt.Sprintf("%s defeated %s and moved from rank %d to %d", winner, loser, o.WinnerOldRank, o.WinnerNewRank)
		}
		return fmt.Sprintf("%s defeated %s, ranks unchanged", winner, loser)
	case RankingsPayload:
		return fmt.Sprintf("Ladder of team %d updated", p.TeamID)
	}
	return string(event.Type)
}

func relayMentions(event Event) []string {
	p, ok := event.Payload.(OutcomePayload)
	if !ok {
		return nil
	}
	var out []string
	for _, u := range []*models.User{p.Winner, p.Loser} {
		if u != nil && u.DiscordHandle != nil && *u.DiscordHandle != "" {
			out = append(out, *u.DiscordHandle)
		}
	}
	return out
}
