package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/rank-ladder/models"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context or invalid type")
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	var userID int
	switch v := userIDClaim.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		userID = int(v)
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %w", jwtClaimUserID, err)
		}
		userID = id
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", jwtClaimUserID, userIDClaim)
	}

	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}
	return userID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context or invalid type")
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid '%s' claim in token", jwtClaimRole)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RolePlayer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

// ContextWithUser returns ctx carrying the claims Authenticate would set.
func ContextWithUser(ctx context.Context, userID int, role models.UserRole) context.Context {
	return context.WithValue(ctx, userContextKey, jwt.MapClaims{
		jwtClaimUserID: float64(userID),
		jwtClaimRole:   string(role),
	})
}
