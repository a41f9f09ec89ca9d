package identity

import (
	"context"
	stderrors "errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// PrivilegeBoundary is the single gate for role writes and account deletion.
// Every caller, including internal services, goes through it: the boundary
// authenticates the acting caller, enforces the promotion rules, and records
// an activity event for every allowed or denied attempt.
type PrivilegeBoundary struct {
	store IdentityStore
	sink  ActivitySink
	log   Logger
	clock func() time.Time
}

// BoundaryOption configures a PrivilegeBoundary.
type BoundaryOption func(*PrivilegeBoundary)

// WithBoundaryLogger sets the logger used for audit failures.
func WithBoundaryLogger(logger Logger) BoundaryOption {
	return func(b *PrivilegeBoundary) {
		if logger != nil {
			b.log = logger
		}
	}
}

// WithBoundaryActivitySink sets the sink receiving audit events.
func WithBoundaryActivitySink(sink ActivitySink) BoundaryOption {
	return func(b *PrivilegeBoundary) {
		b.sink = normalizeActivitySink(sink)
	}
}

// WithBoundaryClock overrides the clock used to stamp audit events.
func WithBoundaryClock(clock func() time.Time) BoundaryOption {
	return func(b *PrivilegeBoundary) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewPrivilegeBoundary creates a boundary over the given identity store.
func NewPrivilegeBoundary(store IdentityStore, opts ...BoundaryOption) *PrivilegeBoundary {
	b := &PrivilegeBoundary{
		store: store,
		sink:  noopActivitySink{},
		log:   defLogger{},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Authenticate resolves the acting caller from ctx and requires at least the
// admin role. There is no partial access below admin.
func (b *PrivilegeBoundary) Authenticate(ctx context.Context) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}

	if !actor.Role.AtLeast(RoleAdmin) {
		return Actor{}, ErrForbidden.WithMetadata(map[string]any{
			"actor_id":   actor.ID.String(),
			"actor_role": string(actor.Role),
		})
	}

	return actor, nil
}

// AuthorizeRoleChange reports whether acting may grant target. Granting
// admin or super_admin requires the super_admin role; pending and approved
// require admin or above. Unknown target roles are never grantable.
func (b *PrivilegeBoundary) AuthorizeRoleChange(acting, target Role) bool {
	switch target {
	case RoleAdmin, RoleSuperAdmin:
		return acting == RoleSuperAdmin
	case RolePending, RoleApproved:
		return acting.AtLeast(RoleAdmin)
	default:
		return false
	}
}

// SetRole changes the role of the target account. The caller comes from ctx;
// denied attempts are audited with the reason before the error returns.
func (b *PrivilegeBoundary) SetRole(ctx context.Context, id uuid.UUID, role Role) (*Account, error) {
	actor, err := b.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if !role.IsValid() {
		return nil, ErrInvalidRole.WithMetadata(map[string]any{
			"role": string(role),
		})
	}

	if !b.AuthorizeRoleChange(actor.Role, role) {
		b.record(ctx, ActivityEvent{
			EventType: ActivityEventRoleChangeDenied,
			Actor:     actor.Ref(),
			AccountID: id.String(),
			ToRole:    role,
			Metadata: map[string]any{
				"reason": "insufficient privilege for target role",
			},
		})
		return nil, ErrForbidden.WithMetadata(map[string]any{
			"actor_role":  string(actor.Role),
			"target_role": string(role),
		})
	}

	account, err := b.store.GetAccount(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{
				"account_id": id.String(),
			})
		}
		return nil, wrapUpstream(err, StoreIdentity, "get_account", id.String())
	}

	fromRole := account.Role

	updated, err := b.store.UpdateAccountRole(ctx, id, role)
	if err != nil {
		return nil, wrapUpstream(err, StoreIdentity, "update_account_role", id.String())
	}

	b.record(ctx, ActivityEvent{
		EventType: ActivityEventRoleChanged,
		Actor:     actor.Ref(),
		AccountID: id.String(),
		FromRole:  fromRole,
		ToRole:    role,
	})

	return updated, nil
}

// DeleteAccount removes the target account. The profile row is removed by
// the storage layer cascade, never by a second write from here.
func (b *PrivilegeBoundary) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	actor, err := b.Authenticate(ctx)
	if err != nil {
		if stderrors.Is(err, ErrForbidden) {
			if denied, ok := ActorFromContext(ctx); ok {
				b.record(ctx, ActivityEvent{
					EventType: ActivityEventDeleteDenied,
					Actor:     denied.Ref(),
					AccountID: id.String(),
				})
			}
		}
		return err
	}

	account, err := b.store.GetAccount(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound.WithMetadata(map[string]any{
				"account_id": id.String(),
			})
		}
		return wrapUpstream(err, StoreIdentity, "get_account", id.String())
	}

	if err := b.store.DeleteAccount(ctx, id); err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound.WithMetadata(map[string]any{
				"account_id": id.String(),
			})
		}
		return wrapUpstream(err, StoreIdentity, "delete_account", id.String())
	}

	b.record(ctx, ActivityEvent{
		EventType: ActivityEventAccountDeleted,
		Actor:     actor.Ref(),
		AccountID: id.String(),
		FromRole:  account.Role,
	})

	return nil
}

func (b *PrivilegeBoundary) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.clock()
	}
	if err := b.sink.Record(ctx, event); err != nil {
		b.log.Warn("failed to record activity event %s: %s", event.EventType, err)
	}
}
