package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func stringClaim(ctx context.Context, name string) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	value, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, value)
	}
	return s, nil
}

func GetSubjectFromContext(ctx context.Context) (string, error) {
	return stringClaim(ctx, jwtClaimSubject)
}

func GetRoleFromContext(ctx context.Context) (string, error) {
	role, err := stringClaim(ctx, jwtClaimRole)
	if err != nil {
		return "", err
	}
	switch role {
	case RoleOrganizer, RoleViewer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", role)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
