package accesscontrol

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

const viewerKey = "auth_viewer"

// Middleware authenticates bearer tokens and stores the Viewer.
type Middleware struct {
	resolver *Resolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	viewer, err := m.resolver.Resolve(c.UserContext(), parts[1])
	if err != nil {
		return err
	}

	StoreViewer(c, viewer)
	return c.Next()
}

// StoreViewer attaches the resolved viewer to the request context.
func StoreViewer(c *fiber.Ctx, viewer *Viewer) {
	c.Locals(viewerKey, viewer)
}

// ViewerFromContext retrieves the authenticated viewer.
func ViewerFromContext(c *fiber.Ctx) (*Viewer, bool) {
	val := c.Locals(viewerKey)
	if val == nil {
		return nil, false
	}
	viewer, ok := val.(*Viewer)
	return viewer, ok
}

// RequireStaff ensures the caller holds the staff role.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := ViewerFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !viewer.IsStaff() {
			return apperrors.NewForbidden("staff role required")
		}
		return c.Next()
	}
}

// RequireTicketManager ensures the caller may manage tickets.
func RequireTicketManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := ViewerFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !CanManageTickets(viewer.StaffLevel) {
			return apperrors.NewForbidden("ticket management privileges required")
		}
		return c.Next()
	}
}

// RequireRoleManager ensures the caller may manage roles.
func RequireRoleManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := ViewerFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !CanManageRoles(viewer.StaffLevel) {
			return apperrors.NewForbidden("role management privileges required")
		}
		return c.Next()
	}
}

// RequireStepUpMFA blocks privileged mutations until the caller has a
// higher-assurance token. Applied before any mutation runs, and distinct
// from the plain forbidden 403.
func RequireStepUpMFA() fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := ViewerFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if RequiresStepUpMFA(viewer.StaffLevel, viewer.MFAVerified) {
			return apperrors.NewMfaRequired()
		}
		return c.Next()
	}
}
