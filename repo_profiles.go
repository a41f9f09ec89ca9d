package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the bun-backed profile store.
type Profiles interface {
	repository.Repository[*Profile]
	ProfileStore
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
	_ ProfileStore                    = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (p *profiles) QueryProfiles(ctx context.Context, filter ProfileFilter) ([]*Profile, error) {
	var records []*Profile
	q := p.db.NewSelect().Model(&records)

	if filter.Status != nil {
		q.Where("?TableAlias.approval_status = ?", *filter.Status)
	}
	if len(filter.IDs) > 0 {
		q.Where("?TableAlias.id IN (?)", bun.In(filter.IDs))
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *profiles) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"id": id.String(),
			})
		}
		return nil, err
	}
	return record, nil
}

// GetOrCreateProfile returns the profile for the given account, creating a
// pending one when the sign-up flow never got that far. Creation requires
// the account row to exist.
func (p *profiles) GetOrCreateProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	record, err := p.GetProfile(ctx, id)
	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Profile{
		ID:             id,
		ApprovalStatus: ApprovalPending,
	}
	return p.Repository.Create(ctx, record)
}

func (p *profiles) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Profile, error) {
	record := &Profile{ID: id}

	if update.DisplayName != nil {
		record.DisplayName = update.DisplayName
	}
	if update.Timezone != nil {
		record.Timezone = *update.Timezone
	}

	now := time.Now()
	record.UpdatedAt = &now

	return p.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (p *profiles) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status ApprovalStatus) (*Profile, error) {
	now := time.Now()
	record := &Profile{
		ID:             id,
		ApprovalStatus: status,
		UpdatedAt:      &now,
	}
	return p.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (p *profiles) CountProfiles(ctx context.Context, filter ProfileFilter) (int, error) {
	q := p.db.NewSelect().Model((*Profile)(nil))

	if filter.Status != nil {
		q.Where("?TableAlias.approval_status = ?", *filter.Status)
	}
	if len(filter.IDs) > 0 {
		q.Where("?TableAlias.id IN (?)", bun.In(filter.IDs))
	}

	return q.Count(ctx)
}
