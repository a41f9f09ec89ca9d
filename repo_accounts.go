package identity

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the bun-backed identity store. The generic repository covers
// the CRUD surface; the named methods are the privileged operations the
// boundary and the HTTP layer actually call.
type Accounts interface {
	repository.Repository[*Account]
	IdentityStore

	GetOrCreateAccount(ctx context.Context, record *Account) (*Account, error)
	TouchAuthenticated(ctx context.Context, id uuid.UUID) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
	_ IdentityStore                   = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string { return "email" },
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) ListAccounts(ctx context.Context) ([]*Account, error) {
	var records []*Account
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *accounts) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
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

func (a *accounts) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}
	return record, nil
}

func (a *accounts) UpdateAccountRole(ctx context.Context, id uuid.UUID, role Role) (*Account, error) {
	record := &Account{
		ID:   id,
		Role: role,
	}
	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *accounts) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	return nil
}

func (a *accounts) GetOrCreateAccount(ctx context.Context, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	identifier := record.Email
	if record.ID != uuid.Nil {
		identifier = record.ID.String()
	}

	found, err := a.Repository.GetByIdentifier(ctx, identifier)
	if err == nil {
		return found, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.Repository.Create(ctx, record)
}

// TouchAuthenticated stamps the last seen time on sign-in. The ORM resets
// untouched nullable columns on partial updates, so this stays raw.
func (a *accounts) TouchAuthenticated(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET "last_authenticated_at" = ?
		WHERE "acc"."id" = ?
		AND ("acc"."last_authenticated_at" IS NULL OR "acc"."last_authenticated_at" < ?);
	`, now, id, now).Exec(ctx)

	return err
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.EnsureRole()
	record.Email = strings.TrimSpace(strings.ToLower(record.Email))

	if record.ID == uuid.Nil && record.Email != "" {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		}
	}
}
