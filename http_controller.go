package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AdminController exposes the administrative operations as a JSON API.
// Every route sits behind the admin role floor; the service re-checks the
// caller anyway so the middleware is belt, not boundary.
type AdminController struct {
	service *AdminService
	Logger  Logger
}

// NewAdminController creates the admin API controller.
func NewAdminController(service *AdminService) *AdminController {
	return &AdminController{
		service: service,
		Logger:  defLogger{},
	}
}

// RegisterRoutes mounts the admin routes on the given group.
func (c *AdminController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/users", c.ListUsers, mw...)
	group.Get("/users/pending/count", c.PendingCount, mw...)
	group.Get("/stats", c.Stats, mw...)
	group.Patch("/users/:id/role", c.UpdateRole, mw...)
	group.Post("/users/:id/approve", c.ApproveUser, mw...)
	group.Post("/users/:id/reject", c.RejectUser, mw...)
	group.Post("/users/:id/repair", c.RepairUser, mw...)
	group.Delete("/users/:id", c.DeleteUser, mw...)
}

// ListUsers returns the combined account and profile listing. Optional
// status and role query parameters narrow the result.
func (c *AdminController) ListUsers(ctx router.Context) error {
	filter := ListFilter{}

	if raw := ctx.Query("status", ""); raw != "" {
		status, ok := ParseApprovalStatus(raw)
		if !ok {
			return c.handleError(ctx, goerrors.New("invalid status filter", goerrors.CategoryBadInput).
				WithTextCode("INVALID_STATUS").
				WithCode(goerrors.CodeBadRequest).
				WithMetadata(map[string]any{
					"status": raw,
				}))
		}
		filter.Status = &status
	}

	if raw := ctx.Query("role", ""); raw != "" {
		role, ok := ParseRole(raw)
		if !ok {
			return c.handleError(ctx, ErrInvalidRole.WithMetadata(map[string]any{
				"role": raw,
			}))
		}
		filter.Role = &role
	}

	users, err := c.service.ListUsers(ctx.Context(), filter)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"users": users,
		"total": len(users),
	})
}

// PendingCount returns the number of profiles awaiting review. The badge
// endpoint never errors.
func (c *AdminController) PendingCount(ctx router.Context) error {
	count := c.service.GetPendingUsersCount(ctx.Context())
	return ctx.JSON(fiber.StatusOK, map[string]any{
		"count": count,
	})
}

// Stats returns the dashboard counters.
func (c *AdminController) Stats(ctx router.Context) error {
	stats, err := c.service.GetAdminStats(ctx.Context())
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(fiber.StatusOK, stats)
}

// UpdateRolePayload is the PATCH body for a role change.
type UpdateRolePayload struct {
	Role string `json:"role"`
}

// Validate will validate the payload
func (p UpdateRolePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Role, validation.Required, validation.In(
			string(RolePending),
			string(RoleApproved),
			string(RoleAdmin),
			string(RoleSuperAdmin),
		)),
	)
}

// UpdateRole changes the target account role.
func (c *AdminController) UpdateRole(ctx router.Context) error {
	id, err := c.targetID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	payload := UpdateRolePayload{}
	if err := ctx.Bind(&payload); err != nil {
		return c.handleError(ctx, ErrInvalidRole.WithMetadata(map[string]any{
			"reason": "malformed payload",
		}))
	}

	if err := payload.Validate(); err != nil {
		return c.handleError(ctx, ErrInvalidRole.WithMetadata(map[string]any{
			"reason": err.Error(),
		}))
	}

	account, err := c.service.UpdateRole(ctx.Context(), id, Role(payload.Role))
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"id":   account.ID,
		"role": account.Role,
	})
}

// ApproveUser approves the target member.
func (c *AdminController) ApproveUser(ctx router.Context) error {
	id, err := c.targetID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if err := c.service.ApproveUser(ctx.Context(), id); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"id":     id,
		"status": ApprovalApproved,
	})
}

// RejectUser rejects the target member and removes their account.
func (c *AdminController) RejectUser(ctx router.Context) error {
	id, err := c.targetID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if err := c.service.RejectUser(ctx.Context(), id); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

// RepairUser realigns an account whose role and approval status disagree.
func (c *AdminController) RepairUser(ctx router.Context) error {
	id, err := c.targetID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if err := c.service.RepairAccount(ctx.Context(), id); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"id":       id,
		"repaired": true,
	})
}

// DeleteUser removes the target account outright.
func (c *AdminController) DeleteUser(ctx router.Context) error {
	id, err := c.targetID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if err := c.service.boundary.DeleteAccount(ctx.Context(), id); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

func (c *AdminController) targetID(ctx router.Context) (uuid.UUID, error) {
	raw := ctx.Param("id", "")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrAccountNotFound.WithMetadata(map[string]any{
			"id":     raw,
			"reason": "not a valid account id",
		})
	}
	return id, nil
}

func (c *AdminController) handleError(ctx router.Context, err error) error {
	debugError(c.Logger, err)
	return respondError(ctx, err)
}
