package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/contest-system/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Определяем константы для имен JWT claims
const (
	jwtClaimAccount = "account"
	jwtClaimRole    = "role"
)

var errNoPrincipal = errors.New("user claims not found in context or invalid type")

// principalFromClaims проверяет claims токена и собирает из них вызывающего.
func principalFromClaims(claims jwt.MapClaims) (models.Principal, error) {
	accountClaim, ok := claims[jwtClaimAccount]
	if !ok {
		return models.Principal{}, fmt.Errorf("missing '%s' claim in token", jwtClaimAccount)
	}
	account, ok := accountClaim.(string)
	if !ok {
		return models.Principal{}, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimAccount, accountClaim)
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return models.Principal{}, fmt.Errorf("empty '%s' claim in token", jwtClaimAccount)
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return models.Principal{}, fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return models.Principal{}, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return models.Principal{}, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	return models.Principal{Account: account, Role: role}, nil
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, userContextKey, p)
}

func GetPrincipalFromContext(ctx context.Context) (models.Principal, error) {
	p, ok := ctx.Value(userContextKey).(models.Principal)
	if !ok {
		return models.Principal{}, errNoPrincipal
	}
	return p, nil
}

// GetAccountFromContext returns the account the services compare with a contest's creator.
func GetAccountFromContext(ctx context.Context) (string, error) {
	p, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return "", err
	}
	return p.Account, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	p, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}
