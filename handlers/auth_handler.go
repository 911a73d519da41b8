package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/rank-ladder/services"
)

const defaultTokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    defaultTokenTTL,
		now:         time.Now,
	}
}

// Login godoc
// @Summary Log in and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Credentials"
// @Success 200 {object} map[string]interface{} "token and user"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	now := h.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Nickname,
		"exp":     now.Add(h.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
