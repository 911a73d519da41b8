package models

// ChallengeOutcome is the committed result of a witnessed challenge.
type ChallengeOutcome struct {
	ChallengeID   int  `json:"challenge_id"`
	TeamID        int  `json:"team_id"`
	WinnerID      int  `json:"winner_id"`
	LoserID       int  `json:"loser_id"`
	WinnerOldRank int  `json:"winner_old_rank"`
	WinnerNewRank int  `json:"winner_new_rank"`
	LoserOldRank  int  `json:"loser_old_rank"`
	LoserNewRank  int  `json:"loser_new_rank"`
	RanksSwapped  bool `json:"ranks_swapped"`
}
