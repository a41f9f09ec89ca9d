package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the authentication-side identity record. Role is the only
// privileged field; it changes exclusively through the PrivilegeBoundary.
type Account struct {
	bun.BaseModel       `bun:"table:accounts,alias:acc"`
	ID                  uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email               string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Role                Role           `bun:"role,notnull" json:"role,omitempty"`
	Metadata            map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt           *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastAuthenticatedAt *time.Time     `bun:"last_authenticated_at,nullzero" json:"last_authenticated_at,omitempty"`
}

// EnsureRole defaults a blank role to pending.
func (a *Account) EnsureRole() {
	if a.Role == "" {
		a.Role = RolePending
	}
}

// AddMetadata will append information to a metadata attribute
func (a *Account) AddMetadata(key string, val any) *Account {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = val
	return a
}

// Profile is the member-facing record paired 1:1 with an Account. The
// accounts table owns its lifetime: deleting the account cascades here.
type Profile struct {
	bun.BaseModel       `bun:"table:user_profiles,alias:prf"`
	ID                  uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	DisplayName         *string        `bun:"display_name" json:"display_name,omitempty"`
	ApprovalStatus      ApprovalStatus `bun:"approval_status,notnull" json:"approval_status,omitempty"`
	Timezone            string         `bun:"timezone" json:"timezone,omitempty"`
	TotalFastsCompleted int            `bun:"total_fasts_completed" json:"total_fasts_completed"`
	TotalHoursFasted    float64        `bun:"total_hours_fasted" json:"total_hours_fasted"`
	LongestFastHours    float64        `bun:"longest_fast_hours" json:"longest_fast_hours"`
	CurrentStreakDays   int            `bun:"current_streak_days" json:"current_streak_days"`
	CreatedAt           *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus defaults a blank approval status to pending.
func (p *Profile) EnsureStatus() {
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = ApprovalPending
	}
}

// Onboarded reports whether the member completed their profile. A missing
// display name means sign-up never finished.
func (p *Profile) Onboarded() bool {
	return p.DisplayName != nil && *p.DisplayName != ""
}

// AdminUser is the read-only Account x Profile projection returned by
// administrative listings. It is never persisted.
type AdminUser struct {
	ID                  uuid.UUID      `json:"id"`
	Email               string         `json:"email"`
	DisplayName         string         `json:"display_name,omitempty"`
	Role                Role           `json:"role"`
	ApprovalStatus      ApprovalStatus `json:"approval_status"`
	CreatedAt           *time.Time     `json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
	LastAuthenticatedAt *time.Time     `json:"last_authenticated_at,omitempty"`

	// Partial marks rows built without identity-store data: Role is reported
	// as pending and Email is empty, regardless of the real account.
	Partial bool `json:"partial,omitempty"`
}

// StatsUnknown is the documented sentinel for aggregate values that could
// not be computed, e.g. AdminStats.AdminUsers when the identity store join
// is unavailable. It is never a real count.
const StatsUnknown = -1

// AdminStats aggregates the counters shown on the admin dashboard.
type AdminStats struct {
	TotalUsers        int `json:"total_users"`
	PendingUsers      int `json:"pending_users"`
	ApprovedUsers     int `json:"approved_users"`
	AdminUsers        int `json:"admin_users"`
	TotalFasts        int `json:"total_fasts"`
	ActiveFasts       int `json:"active_fasts"`
	TotalParticipants int `json:"total_participants"`
}
