package identity

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventApprovalChanged  ActivityEventType = "account.approval.changed"
	ActivityEventRoleChanged      ActivityEventType = "account.role.changed"
	ActivityEventRoleChangeDenied ActivityEventType = "account.role.denied"
	ActivityEventAccountDeleted   ActivityEventType = "account.deleted"
	ActivityEventDeleteDenied     ActivityEventType = "account.delete.denied"
	ActivityEventAccountRepaired  ActivityEventType = "account.repaired"
)

// ActivityEvent captures audit-friendly information about an administrative
// action: who acted, on which account, and what changed.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	AccountID  string
	FromRole   Role
	ToRole     Role
	FromStatus ApprovalStatus
	ToStatus   ApprovalStatus
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
