package identity_test

import (
	"context"
	"testing"

	identity "github.com/krwicher/wil-fasting-group"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

func TestZZDiagGetOrCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := identity.NewAccountsRepository(db)
	ctx := context.Background()

	created, err := repo.GetOrCreateAccount(ctx, &identity.Account{Email: "Ana@Example.com"})
	t.Logf("first err: %v created=%+v", err, created)

	var rows []map[string]any
	if err := db.NewSelect().Table("accounts").Scan(ctx, &rows); err != nil {
		t.Logf("raw select err: %v", err)
	}
	t.Logf("rows: %v", rows)

	found, err := repo.GetByIdentifier(ctx, "ana@example.com")
	t.Logf("GetByIdentifier err: %v found=%+v", err, found)
	t.Logf("IsRecordNotFound=%v", repository.IsRecordNotFound(err))
	for e := err; e != nil; e = goerrors.Unwrap(e) {
		t.Logf("chain: %T %v", e, e)
	}
}
