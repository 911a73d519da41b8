package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dosada05/rank-ladder/middleware"
	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/services"
)

type ChallengeHandler struct {
	challengeService services.ChallengeService
	outcomeService   services.OutcomeService
}

func NewChallengeHandler(cs services.ChallengeService, ocs services.OutcomeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: cs,
		outcomeService:   ocs,
	}
}

type submitOutcomeRequest struct {
	WinnerID int `json:"winner_id"`
}

// CreateChallenge godoc
// @Summary Challenge a teammate
// @Tags challenges
// @Accept json
// @Produce json
// @Param input body services.CreateChallengeInput true "Opponent, witness and optional team"
// @Success 201 {object} map[string]interface{} "challenge"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Player has no active membership"
// @Failure 409 {object} map[string]string "Team cannot be determined"
// @Security BearerAuth
// @Router /challenges [post]
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var input services.CreateChallengeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	input.ChallengerID = currentUserID

	challenge, err := h.challengeService.CreateChallenge(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"challenge": challenge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetChallenge godoc
// @Summary Get a challenge
// @Tags challenges
// @Produce json
// @Param challengeID path int true "Challenge ID"
// @Success 200 {object} map[string]interface{} "challenge"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /challenges/{challengeID} [get]
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID, err := getIDFromURL(r, "challengeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	challenge, err := h.challengeService.GetChallenge(r.Context(), challengeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"challenge": challenge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMyChallenges godoc
// @Summary List challenges the current user plays or witnesses
// @Tags challenges
// @Produce json
// @Param status query string false "pending, accepted, declined or completed"
// @Success 200 {object} map[string]interface{} "challenges"
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /me/challenges [get]
func (h *ChallengeHandler) ListMyChallenges(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var status *models.ChallengeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.ChallengeStatus(raw)
		status = &s
	}

	challenges, err := h.challengeService.ListChallengesForUser(r.Context(), currentUserID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"challenges": challenges}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptChallenge godoc
// @Summary Accept a pending challenge
// @Tags challenges
// @Produce json
// @Param challengeID path int true "Challenge ID"
// @Success 200 {object} map[string]interface{} "challenge"
// @Failure 403 {object} map[string]string "Not the opponent or not pending"
// @Security BearerAuth
// @Router /challenges/{challengeID}/accept [post]
func (h *ChallengeHandler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.challengeService.AcceptChallenge)
}

// DeclineChallenge godoc
// @Summary Decline a pending challenge
// @Tags challenges
// @Produce json
// @Param challengeID path int true "Challenge ID"
// @Success 200 {object} map[string]interface{} "challenge"
// @Failure 403 {object} map[string]string "Not the opponent or not pending"
// @Security BearerAuth
// @Router /challenges/{challengeID}/decline [post]
func (h *ChallengeHandler) DeclineChallenge(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.challengeService.DeclineChallenge)
}

type challengeAction func(ctx context.Context, challengeID, callerID int) (*models.Challenge, error)

func (h *ChallengeHandler) respond(w http.ResponseWriter, r *http.Request, action challengeAction) {
	challengeID, err := getIDFromURL(r, "challengeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	challenge, err := action(r.Context(), challengeID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"challenge": challenge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitOutcome godoc
// @Summary Record the winner of an accepted challenge
// @Description Only the witness may call this, once. Ranks are swapped when the winner stood below the loser.
// @Tags challenges
// @Accept json
// @Produce json
// @Param challengeID path int true "Challenge ID"
// @Param input body submitOutcomeRequest true "Winner"
// @Success 200 {object} map[string]interface{} "outcome"
// @Failure 403 {object} map[string]string "Not the witness or challenge not accepted"
// @Failure 404 {object} map[string]string "Player has no active membership"
// @Failure 409 {object} map[string]string "Outcome already recorded or team ambiguous"
// @Failure 422 {object} map[string]string "Winner is not a participant"
// @Failure 503 {object} map[string]string "Retry later"
// @Security BearerAuth
// @Router /challenges/{challengeID}/outcome [post]
func (h *ChallengeHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	challengeID, err := getIDFromURL(r, "challengeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitOutcomeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	outcome, err := h.outcomeService.RecordOutcome(r.Context(), challengeID, input.WinnerID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
