// Package identity implements the account gating and administration core of
// the fasting-group backend: the role hierarchy, the profile approval
// lifecycle, and the privileged operations admins use to review accounts.
//
// Identity records:
//   - Accounts live in the identity store and carry the Role that gates every
//     privileged action. Roles are totally ordered (pending < approved <
//     admin < super_admin) and validated at write time.
//   - Profiles live in the profile store, keyed by the account ID, and carry
//     ApprovalStatus plus the member-facing fields a user maintains. Profile
//     lifetime is bounded by the account: deleting an account cascades to its
//     profile.
//
// The two records are independently mutable and only eventually consistent.
// ApproveUser writes the profile first and the account second; a failure in
// between leaves a detectable mismatch that AdminService.RepairAccount can
// re-run. Readers must tolerate the transient disagreement.
//
// Privilege boundary:
//   - PrivilegeBoundary is the single path through which account roles change
//     or accounts get deleted. It resolves the acting admin from the request
//     context, enforces the promotion rules (only super admins may grant
//     admin or super_admin), and publishes an ActivityEvent for every
//     attempt, allowed or denied.
//
// Activity sinks run best-effort (errors are logged, never propagated) so an
// audit trail can be forwarded to a database or queue without blocking
// administrative work.
package identity
