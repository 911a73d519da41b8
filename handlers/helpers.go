package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/rank-ladder/services"
)

type jsonResponse map[string]interface{}

// retryAfterSeconds is sent with 503 responses for transient storage failures.
const retryAfterSeconds = "1"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

func getOptionalIntQuery(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("invalid %s query parameter: %q", name, raw)
	}
	return &v, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message interface{}, headers http.Header) {
	env := jsonResponse{"error": message, "code": code}
	if err := writeJSON(w, status, env, headers); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, "internal_error", message, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error(), nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, "unauthorized", message, nil)
}

// serviceError describes how one service error kind is rendered.
type serviceError struct {
	target error
	status int
	code   string
	// detailed errors describe only the request body and are returned in full.
	detailed bool
}

var serviceErrors = []serviceError{
	{services.ErrValidationFailed, http.StatusBadRequest, "validation_failed", true},
	{services.ErrNotAuthorizedOrWrongState, http.StatusForbidden, "not_authorized_or_wrong_state", false},
	{services.ErrInvalidWinnerSelection, http.StatusUnprocessableEntity, "invalid_winner_selection", false},
	{services.ErrChallengeNotInAcceptableState, http.StatusConflict, "challenge_not_in_acceptable_state", false},
	{services.ErrAmbiguousOrMissingTeamContext, http.StatusConflict, "ambiguous_or_missing_team_context", false},
	{services.ErrMembershipNotFound, http.StatusNotFound, "membership_not_found", false},
	{services.ErrTransientStorageFailure, http.StatusServiceUnavailable, "transient_storage_failure", false},
	{services.ErrChallengeNotFound, http.StatusNotFound, "challenge_not_found", false},
	{services.ErrTeamNotFound, http.StatusNotFound, "team_not_found", false},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found", false},
	{services.ErrAuthInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", false},
}

func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	for _, se := range serviceErrors {
		if !errors.Is(err, se.target) {
			continue
		}
		message := se.target.Error()
		if se.detailed {
			message = err.Error()
		}
		var headers http.Header
		if se.status == http.StatusServiceUnavailable {
			headers = http.Header{"Retry-After": []string{retryAfterSeconds}}
			slog.WarnContext(r.Context(), "transient storage failure", slog.String("path", r.URL.Path), slog.Any("error", err))
		} else {
			slog.InfoContext(r.Context(), "request rejected", slog.String("path", r.URL.Path), slog.String("code", se.code), slog.Any("error", err))
		}
		errorResponse(w, r, se.status, se.code, message, headers)
		return
	}
	serverErrorResponse(w, r, err)
}
