package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured session claims with role checking
type AuthClaims interface {
	Subject() string
	AccountID() string
	Role() Role
	DisplayName() string
	HasRole(role Role) bool
	IsAtLeast(min Role) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The identity
// provider stores role and display name in the user metadata bag; both are
// mirrored into the token.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string         `json:"uid,omitempty"`
	UserRole string         `json:"role,omitempty"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// AccountID returns the account ID
func (c *JWTClaims) AccountID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the role claim. Unrecognized values read as pending.
func (c *JWTClaims) Role() Role {
	if c.UserRole != "" {
		return NormalizeRole(c.UserRole)
	}
	if c.Metadata != nil {
		if raw, ok := c.Metadata["role"].(string); ok {
			return NormalizeRole(raw)
		}
	}
	return RolePending
}

// DisplayName returns the display name from the metadata bag, empty when
// onboarding never finished.
func (c *JWTClaims) DisplayName() string {
	if c.Metadata == nil {
		return ""
	}
	name, _ := c.Metadata["display_name"].(string)
	return name
}

// HasRole checks if the claims carry a specific role
func (c *JWTClaims) HasRole(role Role) bool {
	return c.Role() == role
}

// IsAtLeast checks if the claims' role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(min Role) bool {
	return c.Role().AtLeast(min)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ActorFromClaims resolves the acting admin candidate from session claims.
func ActorFromClaims(claims AuthClaims) (Actor, error) {
	if claims == nil {
		return Actor{}, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.AccountID())
	if err != nil {
		return Actor{}, ErrUnauthenticated.WithMetadata(map[string]any{
			"reason": "subject is not a valid account id",
		})
	}

	return Actor{ID: id, Role: claims.Role()}, nil
}
