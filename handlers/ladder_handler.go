package handlers

import (
	"net/http"

	"github.com/Dosada05/rank-ladder/services"
)

type LadderHandler struct {
	ladderService services.LadderService
}

func NewLadderHandler(ls services.LadderService) *LadderHandler {
	return &LadderHandler{ladderService: ls}
}

// GetTeamLadder godoc
// @Summary Team ladder ordered by rank
// @Tags ladder
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} map[string]interface{} "team with members"
// @Failure 404 {object} map[string]string
// @Router /teams/{teamID}/ladder [get]
func (h *LadderHandler) GetTeamLadder(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.ladderService.GetTeamLadder(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRankHistory godoc
// @Summary Rank changes in a team, newest first
// @Tags ladder
// @Produce json
// @Param teamID path int true "Team ID"
// @Param user_id query int false "Only this player's changes"
// @Success 200 {object} map[string]interface{} "history"
// @Failure 404 {object} map[string]string
// @Router /teams/{teamID}/history [get]
func (h *LadderHandler) ListRankHistory(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getOptionalIntQuery(r, "user_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.ladderService.ListRankHistory(r.Context(), teamID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
