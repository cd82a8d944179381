package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin      Role = "admin"      // Full access, any division
	RoleSupervisor Role = "supervisor" // Approves attendance within own division
	RoleEmployee   Role = "employee"   // Own attendance and logbook only
)

// User is read-only here; accounts are owned by the identity service.
type User struct {
	ID         string
	FullName   string
	Email      string
	DivisionID *string
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Identity is the authenticated actor taken from verified token claims.
type Identity struct {
	UserID     string
	DivisionID *string
	Role       Role
}

// IsAdmin checks if the actor is an administrator
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsSupervisor checks if the actor is a supervisor
func (i Identity) IsSupervisor() bool {
	return i.Role == RoleSupervisor
}

// SameDivision reports whether both division IDs are set and equal.
func SameDivision(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}

// IdentityFromContext reads the actor from jwtauth claims.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrMissingIdentity
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return Identity{}, ErrMissingIdentity
	}

	id := Identity{UserID: userID, Role: Role(role)}
	if division, ok := claims["division_id"].(string); ok && division != "" {
		id.DivisionID = &division
	}

	return id, nil
}

// ContextWithIdentity stores id as verified claims, the way jwtauth.Verifier
// would after parsing a bearer token.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	token := jwt.New()
	_ = token.Set("user_id", id.UserID)
	_ = token.Set("role", string(id.Role))
	_ = token.Set("type", "access")
	if id.DivisionID != nil {
		_ = token.Set("division_id", *id.DivisionID)
	}
	return jwtauth.NewContext(ctx, token, nil)
}
