package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ApprovalStatus is the moderation state carried on a Profile.
type ApprovalStatus string

const (
	// ApprovalPending is entered at account creation, awaiting review
	ApprovalPending ApprovalStatus = "pending"
	// ApprovalApproved is entered by an admin approving the account
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalRejected marks an account whose deletion is underway. It is
	// not a stable end state: a reject writes it immediately before the
	// account delete, so readers treat it as "pending deletion".
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid checks if the status is one of the predefined values.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// ParseApprovalStatus safely parses a string into an ApprovalStatus.
func ParseApprovalStatus(raw string) (ApprovalStatus, bool) {
	status := ApprovalStatus(raw)
	return status, status.IsValid()
}

// Consistent reports whether a role and an approval status agree: approved
// and above pair with an approved status, pending pairs with pending or
// rejected. Unrecognized roles are read as pending.
func Consistent(role Role, status ApprovalStatus) bool {
	if NormalizeRole(string(role)).AtLeast(RoleApproved) {
		return status == ApprovalApproved
	}
	return status == ApprovalPending || status == ApprovalRejected
}

const (
	textCodeInvalidTransition = "INVALID_APPROVAL_TRANSITION"
	textCodeTerminalStatus    = "TERMINAL_APPROVAL_STATUS"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid approval status transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalStatus is returned when attempting to move away from rejected,
// which only a forced transition (the repair path) may do.
var ErrTerminalStatus = goerrors.New("approval status is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalStatus).
	WithCode(goerrors.CodeConflict)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the recorded activity event.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithForceTransition bypasses validation rules. The repair path uses it to
// move a rejected profile back in line with its account.
func WithForceTransition() TransitionOption {
	return func(opts *transitionOptions) {
		opts.force = true
	}
}

// ApprovalStore persists status changes for the state machine.
type ApprovalStore interface {
	UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status ApprovalStatus) (*Profile, error)
}

// ApprovalStateMachine governs profile approval lifecycle transitions.
type ApprovalStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, profile *Profile, target ApprovalStatus, opts ...TransitionOption) (*Profile, error)
	CurrentStatus(profile *Profile) ApprovalStatus
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*approvalStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *approvalStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish status changes.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *approvalStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *approvalStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// NewApprovalStateMachine returns the default implementation backed by the
// provided profile store.
func NewApprovalStateMachine(profiles ApprovalStore, opts ...StateMachineOption) ApprovalStateMachine {
	sm := &approvalStateMachine{
		profiles: profiles,
		transitions: map[ApprovalStatus]map[ApprovalStatus]struct{}{
			ApprovalPending: {
				ApprovalApproved: {},
				ApprovalRejected: {},
			},
			ApprovalApproved: {
				ApprovalRejected: {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type approvalStateMachine struct {
	profiles     ApprovalStore
	transitions  map[ApprovalStatus]map[ApprovalStatus]struct{}
	now          func() time.Time
	activitySink ActivitySink
	logger       Logger
}

type transitionOptions struct {
	metadata TransitionMetadata
	force    bool
}

func (o *transitionOptions) cloneMetadata() map[string]any {
	if o.metadata.Reason == "" && len(o.metadata.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if o.metadata.Reason != "" {
		result["reason"] = o.metadata.Reason
	}
	for k, v := range o.metadata.Metadata {
		result[k] = v
	}
	return result
}

func (sm *approvalStateMachine) Transition(ctx context.Context, actor ActorRef, profile *Profile, target ApprovalStatus, opts ...TransitionOption) (*Profile, error) {
	if profile == nil {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "profile is nil",
		})
	}

	profile.EnsureStatus()
	from := profile.ApprovalStatus

	if !target.IsValid() {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "target status is not a valid approval status",
		})
	}

	if from == target {
		return profile, nil
	}

	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	if from == ApprovalRejected && !options.force {
		return nil, ErrTerminalStatus.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	if !options.force && !sm.canTransition(from, target) {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	updated, err := sm.profiles.UpdateApprovalStatus(ctx, profile.ID, target)
	if err != nil {
		return nil, err
	}

	if updated != nil && updated.ApprovalStatus != "" {
		profile.ApprovalStatus = updated.ApprovalStatus
		profile.UpdatedAt = updated.UpdatedAt
	} else {
		profile.ApprovalStatus = target
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventApprovalChanged,
		Actor:      actor,
		AccountID:  profile.ID.String(),
		FromStatus: from,
		ToStatus:   target,
		Metadata:   options.cloneMetadata(),
	})

	return profile, nil
}

func (sm *approvalStateMachine) CurrentStatus(profile *Profile) ApprovalStatus {
	if profile == nil {
		return ""
	}
	profile.EnsureStatus()
	return profile.ApprovalStatus
}

func (sm *approvalStateMachine) canTransition(from, to ApprovalStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *approvalStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("approval state machine activity sink error: %v", err)
	}
}
