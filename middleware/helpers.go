package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/pickleball-league/models"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

// GetUserIDFromContext returns the user id claim. Numeric ids are accepted and
// returned in their decimal form.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	switch v := claims[jwtClaimUserID].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		if v > 0 && v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), nil
		}
	case nil:
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}
	return "", fmt.Errorf("invalid '%s' claim: %v", jwtClaimUserID, claims[jwtClaimUserID])
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid '%s' claim in token", jwtClaimRole)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleUmpire, models.RoleViewer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
