package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Roles          *handlers.RolesHandler
	Billing        *handlers.BillingHandler
	Referrals      *handlers.ReferralHandler
	Advisor        *handlers.AdvisorHandler
	AuthMiddleware *accesscontrol.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// public referral redirect
	app.Get("/r/:code", cfg.Referrals.Redirect)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/register", cfg.Auth.Register)

	authed := app.Group("", cfg.AuthMiddleware.Handle)
	authed.Get("/me", cfg.Auth.Me)

	authed.Post("/requests/tutoring", cfg.Tickets.CreateTutoringRequest)
	authed.Post("/requests/support", cfg.Tickets.CreateSupportRequest)
	authed.Get("/tickets", cfg.Tickets.List)
	authed.Get("/tickets/:id", cfg.Tickets.Get)
	authed.Get("/tickets/:id/messages", cfg.Tickets.ListMessages)
	authed.Post("/tickets/:id/messages", cfg.Tickets.AddMessage)

	authed.Post("/advisor/chat", cfg.Advisor.Chat)
	authed.Post("/courses/search", cfg.Advisor.SearchCourses)
	authed.Post("/documents", cfg.Advisor.IngestDocument)

	billingGroup := authed.Group("/billing")
	billingGroup.Post("/checkout", cfg.Billing.CreateCheckout)
	billingGroup.Get("/subscription", cfg.Billing.GetSubscription)
	billingGroup.Post("/subscription/cancel", cfg.Billing.CancelSubscription)
	billingGroup.Post("/portal", cfg.Billing.CreatePortalSession)

	staff := authed.Group("/staff", accesscontrol.RequireStaff())
	staff.Get("/tickets", cfg.StaffTickets.List)
	staff.Get("/tickets/:id", cfg.StaffTickets.Get)
	staff.Get("/tickets/:id/messages", cfg.StaffTickets.ListMessages)
	staff.Post("/tickets/:id/messages", cfg.StaffTickets.AddMessage)
	staff.Get("/tickets/:id/notes", cfg.StaffTickets.ListNotes)
	staff.Post("/tickets/:id/notes", cfg.StaffTickets.AddNote)
	staff.Post("/tickets/:id/attachments", cfg.StaffTickets.CreateAttachment)
	staff.Get("/tickets/:id/attachments", cfg.StaffTickets.ListAttachments)
	staff.Get("/tickets/:id/attachments/:attachmentId/download", cfg.StaffTickets.DownloadAttachment)
	staff.Post("/tickets/:id/attachments/:attachmentId/link", cfg.StaffTickets.LinkAttachment)

	// privileged mutations require the manager tier and a step-up token
	managers := staff.Group("", accesscontrol.RequireTicketManager(), accesscontrol.RequireStepUpMFA())
	managers.Post("/tickets", cfg.StaffTickets.Create)
	managers.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	managers.Get("/tickets/:id/events", cfg.StaffTickets.ListEvents)

	// any staff may move a ticket assigned to them; the service enforces
	// the manager check for tickets assigned to someone else. The step-up
	// gate only fires for manager-tier callers without a verified factor.
	staff.Patch("/tickets/:id/status", accesscontrol.RequireStepUpMFA(), cfg.StaffTickets.ChangeStatus)

	roleAdmin := staff.Group("/roles", accesscontrol.RequireRoleManager(), accesscontrol.RequireStepUpMFA())
	roleAdmin.Get("/", cfg.Roles.List)
	roleAdmin.Get("/:userId", cfg.Roles.Get)
	roleAdmin.Put("/:userId", cfg.Roles.Assign)
}
