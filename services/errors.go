package services

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")

	// Outcome recording. Each kind is specific enough for the client to tell
	// "already judged" apart from "pick a valid winner".
	ErrNotAuthorizedOrWrongState     = errors.New("caller is not the witness of this challenge or the challenge is not accepted")
	ErrInvalidWinnerSelection        = errors.New("winner must be the challenger or the opponent")
	ErrAmbiguousOrMissingTeamContext = errors.New("cannot determine a single team shared by both players")
	ErrMembershipNotFound            = errors.New("player has no active membership in the team")
	ErrChallengeNotInAcceptableState = errors.New("challenge outcome has already been recorded")
	ErrTransientStorageFailure       = errors.New("storage temporarily unavailable, retry the request")

	ErrChallengeNotFound = errors.New("challenge not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrUserNotFound      = errors.New("user not found")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
)

// IsRetryable reports whether the same call may succeed when repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStorageFailure)
}
