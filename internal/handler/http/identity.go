package http

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// identity is what the upstream identity provider asserts about the caller:
// a stable user id, a role, and the reference timezone used for day
// boundaries. The core trusts these claims without re-validating
// credentials.
type identity struct {
	UserID   string
	Role     string
	Timezone string
}

func identityFromContext(ctx context.Context) (identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return identity{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	role, _ := claims["role"].(string)
	tz, _ := claims["tz"].(string)

	return identity{UserID: userID, Role: role, Timezone: tz}, nil
}
