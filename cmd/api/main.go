package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/advisor"
	httptransport "github.com/brightpath/guidance-service/internal/api/http"
	"github.com/brightpath/guidance-service/internal/api/http/handlers"
	"github.com/brightpath/guidance-service/internal/billing"
	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/events"
	"github.com/brightpath/guidance-service/internal/identity"
	"github.com/brightpath/guidance-service/internal/observability"
	"github.com/brightpath/guidance-service/internal/persistence"
	"github.com/brightpath/guidance-service/internal/repository"
	"github.com/brightpath/guidance-service/internal/service"
	"github.com/brightpath/guidance-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewTicketEventRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	referralRepo := repository.NewReferralRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	localUserRepo := repository.NewLocalUserRepository(pool)

	var (
		provider      identity.Provider
		localProvider *identity.LocalProvider
	)
	switch cfg.Identity.Mode {
	case "local":
		localProvider = identity.NewLocalProvider(cfg.Identity, localUserRepo)
		provider = localProvider
	default:
		provider, err = identity.NewRemoteProvider(cfg.Identity)
		if err != nil {
			logger.Fatal("failed to init identity provider", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	resolver := accesscontrol.NewResolver(provider, roleRepo, logger)
	authMiddleware := accesscontrol.NewMiddleware(resolver)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	auditService := service.NewAuditService(eventRepo, logger, metrics)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		NoteRepo:    noteRepo,
		RequestRepo: requestRepo,
		RoleRepo:    roleRepo,
		Audit:       auditService,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})
	roleService := service.NewRoleService(roleRepo, logger)
	signer := storage.NewHTTPSigner(cfg.Storage)
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketService, signer, logger)
	referralService := service.NewReferralService(referralRepo, redis.Client, logger, metrics)
	billingService := billing.NewService(billing.NewHTTPProcessor(cfg.Billing), referralRepo, cfg.Billing)

	llm, err := advisor.NewGenAIClient(ctx, cfg.Advisor)
	if err != nil {
		logger.Warn("advisor llm unavailable; advisor endpoints will report not configured", zap.Error(err))
	}
	advisorService := advisor.NewService(llm, documentRepo, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(localProvider),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, attachmentService),
		Roles:          handlers.NewRolesHandler(roleService),
		Billing:        handlers.NewBillingHandler(billingService),
		Referrals:      handlers.NewReferralHandler(referralService),
		Advisor:        handlers.NewAdvisorHandler(advisorService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
