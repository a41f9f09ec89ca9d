package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an authenticated session
type Session interface {
	GetAccountID() string
	GetAccountUUID() (uuid.UUID, error)
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetData() map[string]any
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Email() string
	Role() Role
}

// IdentityStore is the privileged interface over the authentication-side
// account records. Only the PrivilegeBoundary may call its mutating methods.
type IdentityStore interface {
	ListAccounts(ctx context.Context) ([]*Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdateAccountRole(ctx context.Context, id uuid.UUID, role Role) (*Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// ProfileFilter narrows profile queries and counts.
type ProfileFilter struct {
	Status *ApprovalStatus
	IDs    []uuid.UUID
}

// ProfileUpdate carries the owner-writable profile fields; nil fields are
// left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Timezone    *string
}

// ProfileStore is the interface over the member-facing profile records.
type ProfileStore interface {
	ApprovalStore
	QueryProfiles(ctx context.Context, filter ProfileFilter) ([]*Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetOrCreateProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Profile, error)
	CountProfiles(ctx context.Context, filter ProfileFilter) (int, error)
}

// CommunityCounts supplies the aggregate fast counters shown on the admin
// dashboard. The identity core only reads it.
type CommunityCounts interface {
	CountFasts(ctx context.Context) (int, error)
	CountActiveFasts(ctx context.Context) (int, error)
	CountParticipants(ctx context.Context) (int, error)
}

// TokenValidator validates externally issued session tokens.
type TokenValidator interface {
	Validate(token string) (AuthClaims, error)
}

// Config holds the options the HTTP layer needs to resolve callers.
type Config interface {
	GetSigningKey() string
	GetJWKSetURL() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
