package identity

import (
	"context"
	stderrors "errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ListFilter narrows administrative user listings.
type ListFilter struct {
	Status *ApprovalStatus
	Role   *Role
}

// AdminService implements the administrative operations over the paired
// account and profile records. Role writes and deletions are delegated to
// the PrivilegeBoundary; approval writes go through the state machine.
//
// Approve and reject each touch both stores without a shared transaction,
// so a crash between the two writes leaves the pair inconsistent. The
// ordering is fixed (profile first) so RepairAccount can always finish the
// second half.
type AdminService struct {
	identity  IdentityStore
	profiles  ProfileStore
	community CommunityCounts
	boundary  *PrivilegeBoundary
	machine   ApprovalStateMachine
	sink      ActivitySink
	log       Logger
	clock     func() time.Time
}

// AdminOption configures an AdminService.
type AdminOption func(*AdminService)

// WithAdminLogger sets the service logger.
func WithAdminLogger(logger Logger) AdminOption {
	return func(s *AdminService) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithAdminCommunityCounts wires the aggregate fast counters used by the
// dashboard stats. Without it those counters report zero.
func WithAdminCommunityCounts(community CommunityCounts) AdminOption {
	return func(s *AdminService) {
		s.community = community
	}
}

// WithAdminActivitySink sets the sink receiving repair audit events.
func WithAdminActivitySink(sink ActivitySink) AdminOption {
	return func(s *AdminService) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithAdminClock overrides the clock used to stamp audit events.
func WithAdminClock(clock func() time.Time) AdminOption {
	return func(s *AdminService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewAdminService wires the administrative operations over the given stores.
func NewAdminService(boundary *PrivilegeBoundary, identity IdentityStore, profiles ProfileStore, machine ApprovalStateMachine, opts ...AdminOption) *AdminService {
	s := &AdminService{
		identity: identity,
		profiles: profiles,
		boundary: boundary,
		machine:  machine,
		sink:     noopActivitySink{},
		log:      defLogger{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListUsers returns the Account x Profile projection for the admin screen,
// newest profile first. When the identity store is unavailable the listing
// still succeeds: rows are marked Partial with an empty email and a pending
// role instead of failing the whole screen.
func (s *AdminService) ListUsers(ctx context.Context, filter ListFilter) ([]AdminUser, error) {
	if _, err := s.boundary.Authenticate(ctx); err != nil {
		return nil, err
	}

	profiles, err := s.profiles.QueryProfiles(ctx, ProfileFilter{Status: filter.Status})
	if err != nil {
		return nil, wrapUpstream(err, StoreProfile, "query_profiles", "")
	}

	accounts := map[uuid.UUID]*Account{}
	partial := false
	list, err := s.identity.ListAccounts(ctx)
	if err != nil {
		s.log.Warn("identity store unavailable, listing users without account data: %s", err)
		partial = true
	} else {
		for _, account := range list {
			accounts[account.ID] = account
		}
	}

	users := make([]AdminUser, 0, len(profiles))
	for _, profile := range profiles {
		user := AdminUser{
			ID:             profile.ID,
			ApprovalStatus: profile.ApprovalStatus,
			Role:           RolePending,
			CreatedAt:      profile.CreatedAt,
			UpdatedAt:      profile.UpdatedAt,
			Partial:        partial,
		}
		if profile.DisplayName != nil {
			user.DisplayName = *profile.DisplayName
		}

		if account, ok := accounts[profile.ID]; ok {
			user.Email = account.Email
			user.Role = NormalizeRole(string(account.Role))
			user.LastAuthenticatedAt = account.LastAuthenticatedAt
		} else if !partial {
			// profile without a live account, should not survive the
			// delete cascade but is reported rather than hidden
			user.Partial = true
		}

		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}

		users = append(users, user)
	}

	return users, nil
}

// ApproveUser moves the target to the approved status and raises their role
// to approved. The profile write lands first; if the role write then fails
// the account is left detectably inconsistent and the error says so.
func (s *AdminService) ApproveUser(ctx context.Context, id uuid.UUID) error {
	actor, err := s.boundary.Authenticate(ctx)
	if err != nil {
		return err
	}

	profile, err := s.profiles.GetOrCreateProfile(ctx, id)
	if err != nil {
		return wrapUpstream(err, StoreProfile, "get_or_create_profile", id.String())
	}

	if _, err := s.machine.Transition(ctx, actor.Ref(), profile, ApprovalApproved); err != nil {
		return err
	}

	account, err := s.identity.GetAccount(ctx, id)
	if err != nil {
		return s.inconsistent(id, "approved profile but could not load account", err)
	}

	// admins keep their rank, the role write is a floor not an assignment
	if account.Role.AtLeast(RoleApproved) {
		return nil
	}

	if _, err := s.boundary.SetRole(ctx, id, RoleApproved); err != nil {
		return s.inconsistent(id, "approved profile but role write failed", err)
	}

	return nil
}

// RejectUser marks the target rejected and deletes their account. The
// rejected status lands first so a failed delete leaves a visible
// pending-deletion marker instead of a silently approved-looking row.
func (s *AdminService) RejectUser(ctx context.Context, id uuid.UUID) error {
	actor, err := s.boundary.Authenticate(ctx)
	if err != nil {
		return err
	}

	profile, err := s.profiles.GetOrCreateProfile(ctx, id)
	if err != nil {
		return wrapUpstream(err, StoreProfile, "get_or_create_profile", id.String())
	}

	if _, err := s.machine.Transition(ctx, actor.Ref(), profile, ApprovalRejected,
		WithTransitionReason("rejected by admin")); err != nil {
		return err
	}

	if err := s.boundary.DeleteAccount(ctx, id); err != nil {
		if stderrors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}

	return nil
}

// UpdateRole changes the target role through the privilege boundary. It does
// not touch the approval status; RepairAccount realigns the pair if needed.
func (s *AdminService) UpdateRole(ctx context.Context, id uuid.UUID, role Role) (*Account, error) {
	return s.boundary.SetRole(ctx, id, role)
}

// GetAdminStats aggregates the dashboard counters. The admin count depends
// on the identity store; when that store is unavailable it reports
// StatsUnknown rather than failing the rest of the dashboard.
func (s *AdminService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	if _, err := s.boundary.Authenticate(ctx); err != nil {
		return nil, err
	}

	stats := &AdminStats{}

	var err error
	if stats.TotalUsers, err = s.profiles.CountProfiles(ctx, ProfileFilter{}); err != nil {
		return nil, wrapUpstream(err, StoreProfile, "count_profiles", "")
	}

	pending := ApprovalPending
	if stats.PendingUsers, err = s.profiles.CountProfiles(ctx, ProfileFilter{Status: &pending}); err != nil {
		return nil, wrapUpstream(err, StoreProfile, "count_profiles", "")
	}

	approved := ApprovalApproved
	if stats.ApprovedUsers, err = s.profiles.CountProfiles(ctx, ProfileFilter{Status: &approved}); err != nil {
		return nil, wrapUpstream(err, StoreProfile, "count_profiles", "")
	}

	accounts, err := s.identity.ListAccounts(ctx)
	if err != nil {
		s.log.Warn("identity store unavailable, admin count unknown: %s", err)
		stats.AdminUsers = StatsUnknown
	} else {
		for _, account := range accounts {
			if account.Role.AtLeast(RoleAdmin) {
				stats.AdminUsers++
			}
		}
	}

	if s.community != nil {
		if stats.TotalFasts, err = s.community.CountFasts(ctx); err != nil {
			return nil, wrapUpstream(err, StoreCommunity, "count_fasts", "")
		}
		if stats.ActiveFasts, err = s.community.CountActiveFasts(ctx); err != nil {
			return nil, wrapUpstream(err, StoreCommunity, "count_active_fasts", "")
		}
		if stats.TotalParticipants, err = s.community.CountParticipants(ctx); err != nil {
			return nil, wrapUpstream(err, StoreCommunity, "count_participants", "")
		}
	}

	return stats, nil
}

// GetPendingUsersCount returns the number of profiles awaiting review. It
// never fails: any error, including an unauthorized caller, logs a warning
// and reports zero so navigation badges degrade instead of breaking.
func (s *AdminService) GetPendingUsersCount(ctx context.Context) int {
	if _, err := s.boundary.Authenticate(ctx); err != nil {
		s.log.Warn("pending count unavailable: %s", err)
		return 0
	}

	pending := ApprovalPending
	count, err := s.profiles.CountProfiles(ctx, ProfileFilter{Status: &pending})
	if err != nil {
		s.log.Warn("pending count unavailable: %s", err)
		return 0
	}

	return count
}

// RepairAccount finishes the missing half of an interrupted approve. When
// the role outranks the status the profile is force-moved to approved; when
// the status outran the role the role is raised to approved. A consistent
// pair is a no-op.
func (s *AdminService) RepairAccount(ctx context.Context, id uuid.UUID) error {
	actor, err := s.boundary.Authenticate(ctx)
	if err != nil {
		return err
	}

	account, err := s.identity.GetAccount(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound.WithMetadata(map[string]any{
				"account_id": id.String(),
			})
		}
		return wrapUpstream(err, StoreIdentity, "get_account", id.String())
	}

	profile, err := s.profiles.GetOrCreateProfile(ctx, id)
	if err != nil {
		return wrapUpstream(err, StoreProfile, "get_or_create_profile", id.String())
	}

	if Consistent(account.Role, profile.ApprovalStatus) {
		return nil
	}

	fromStatus := profile.ApprovalStatus
	fromRole := account.Role

	if account.Role.AtLeast(RoleApproved) {
		// the role write landed, the profile did not: force past the
		// rejected terminal state if necessary
		if _, err := s.machine.Transition(ctx, actor.Ref(), profile, ApprovalApproved,
			WithForceTransition(),
			WithTransitionReason("repair: role outranks approval status")); err != nil {
			return err
		}
	} else {
		if _, err := s.boundary.SetRole(ctx, id, RoleApproved); err != nil {
			return err
		}
	}

	s.record(ctx, ActivityEvent{
		EventType:  ActivityEventAccountRepaired,
		Actor:      actor.Ref(),
		AccountID:  id.String(),
		FromRole:   fromRole,
		FromStatus: fromStatus,
		ToRole:     RoleApproved,
		ToStatus:   ApprovalApproved,
	})

	return nil
}

// PromoteByEmail grants a role by account email. It exists for seeding the
// first super admin and goes through the same boundary as every other role
// write, so the caller still needs the rank to grant the target role.
func (s *AdminService) PromoteByEmail(ctx context.Context, email string, role Role) (*Account, error) {
	account, err := s.identity.FindAccountByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, wrapUpstream(err, StoreIdentity, "find_account_by_email", email)
	}

	updated, err := s.boundary.SetRole(ctx, account.ID, role)
	if err != nil {
		return nil, err
	}

	if role.AtLeast(RoleApproved) {
		profile, err := s.profiles.GetOrCreateProfile(ctx, account.ID)
		if err != nil {
			return nil, s.inconsistent(account.ID, "promoted account but could not load profile", err)
		}
		actor, _ := ActorFromContext(ctx)
		if _, err := s.machine.Transition(ctx, actor.Ref(), profile, ApprovalApproved,
			WithForceTransition(),
			WithTransitionReason("promotion alignment")); err != nil {
			return nil, s.inconsistent(account.ID, "promoted account but approval write failed", err)
		}
	}

	return updated, nil
}

func (s *AdminService) inconsistent(id uuid.UUID, reason string, cause error) error {
	clone := ErrInconsistentAccount.Clone()
	clone.Source = cause
	return clone.WithMetadata(map[string]any{
		"account_id": id.String(),
		"reason":     reason,
		"cause":      cause.Error(),
	})
}

func (s *AdminService) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock()
	}
	if err := s.sink.Record(ctx, event); err != nil {
		s.log.Warn("failed to record activity event %s: %s", event.EventType, err)
	}
}
