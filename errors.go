package identity

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUnauthenticated is returned when no caller identity could be resolved
// from the request context.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the caller is authenticated but their role
// rank is insufficient. It is never retried or escalated.
var ErrForbidden = goerrors.New("admin access required", goerrors.CategoryAuthz).
	WithTextCode("FORBIDDEN").
	WithCode(goerrors.CodeForbidden)

// ErrAccountNotFound is returned when a target account does not exist.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode("ACCOUNT_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrProfileNotFound is returned when a target profile does not exist.
var ErrProfileNotFound = goerrors.New("profile not found", goerrors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidRole rejects unknown role values at write time.
var ErrInvalidRole = goerrors.New("invalid role", goerrors.CategoryBadInput).
	WithTextCode("INVALID_ROLE").
	WithCode(goerrors.CodeBadRequest)

// ErrInconsistentAccount marks a detected mismatch between an account role
// and its profile approval status, e.g. after a partial approve. The
// condition is recoverable: AdminService.RepairAccount re-runs the missing
// half of the write.
var ErrInconsistentAccount = goerrors.New("account and profile records disagree", goerrors.CategoryConflict).
	WithTextCode("INCONSISTENT_ACCOUNT").
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned for expired session tokens.
var ErrTokenExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature checks.
var ErrTokenMalformed = goerrors.New("session token malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims is returned when token claims lack the fields needed
// to build a session.
var ErrUnableToMapClaims = goerrors.New("unable to map token claims to session", goerrors.CategoryAuth).
	WithTextCode("UNMAPPABLE_CLAIMS").
	WithCode(goerrors.CodeUnauthorized)

// Store identifiers used when wrapping upstream failures, so callers and the
// repair path can tell which side of the identity pair failed.
const (
	StoreIdentity  = "identity_store"
	StoreProfile   = "profile_store"
	StoreCommunity = "community_store"
)

// wrapUpstream decorates a store failure with the originating store,
// operation, and target so it can drive the repair path.
func wrapUpstream(err error, store, op, targetID string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "upstream store call failed").
		WithTextCode("UPSTREAM_ERROR").
		WithMetadata(map[string]any{
			"store":     store,
			"operation": op,
			"target_id": targetID,
		})
}

// IsUpstream reports whether err originated in a backing store call.
func IsUpstream(err error) bool {
	var rich *goerrors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == "UPSTREAM_ERROR"
}

// IsInconsistent reports whether err marks a role/approval mismatch.
func IsInconsistent(err error) bool {
	return errors.Is(err, ErrInconsistentAccount)
}
