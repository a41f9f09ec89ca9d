package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GroupFast is a scheduled community fast. The identity core only counts
// these for the admin dashboard; the fasting domain owns the rest.
type GroupFast struct {
	bun.BaseModel `bun:"table:group_fasts,alias:gft"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CreatorID     uuid.UUID  `bun:"creator_id,notnull,type:uuid" json:"creator_id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	StartsAt      *time.Time `bun:"starts_at,nullzero" json:"starts_at,omitempty"`
	EndsAt        *time.Time `bun:"ends_at,nullzero" json:"ends_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// FastParticipant joins a member to a group fast.
type FastParticipant struct {
	bun.BaseModel `bun:"table:fast_participants,alias:fpt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FastID        uuid.UUID  `bun:"fast_id,notnull,type:uuid" json:"fast_id,omitempty"`
	ProfileID     uuid.UUID  `bun:"profile_id,notnull,type:uuid" json:"profile_id,omitempty"`
	JoinedAt      *time.Time `bun:"joined_at,nullzero,default:current_timestamp" json:"joined_at,omitempty"`
}

const fastStatusActive = "active"

// CommunityStats reads the aggregate fast counters for the dashboard.
type CommunityStats struct {
	db *bun.DB
}

var _ CommunityCounts = (*CommunityStats)(nil)

func NewCommunityStats(db *bun.DB) *CommunityStats {
	return &CommunityStats{db: db}
}

func (c *CommunityStats) CountFasts(ctx context.Context) (int, error) {
	return c.db.NewSelect().Model((*GroupFast)(nil)).Count(ctx)
}

func (c *CommunityStats) CountActiveFasts(ctx context.Context) (int, error) {
	return c.db.NewSelect().
		Model((*GroupFast)(nil)).
		Where("?TableAlias.status = ?", fastStatusActive).
		Count(ctx)
}

func (c *CommunityStats) CountParticipants(ctx context.Context) (int, error) {
	return c.db.NewSelect().Model((*FastParticipant)(nil)).Count(ctx)
}
