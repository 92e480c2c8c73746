// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"adscreen-service/internal/config"
	"adscreen-service/internal/db"
	auditHandler "adscreen-service/internal/handlers/audit"
	authHandler "adscreen-service/internal/handlers/auth"
	bookingHandler "adscreen-service/internal/handlers/booking"
	invoiceHandler "adscreen-service/internal/handlers/invoice"
	notifyH "adscreen-service/internal/handlers/notification"
	offerHandler "adscreen-service/internal/handlers/offer"
	paymentHandler "adscreen-service/internal/handlers/payment"
	screenHandler "adscreen-service/internal/handlers/screen"
	subscriptionHandler "adscreen-service/internal/handlers/subscription"
	wsHandler "adscreen-service/internal/handlers/websocket"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/session"
	"adscreen-service/internal/pkg/validation"
	"adscreen-service/internal/queue"
	"adscreen-service/internal/repository/postgres"
	auditUsecase "adscreen-service/internal/service/audit"
	authUsecase "adscreen-service/internal/service/auth"
	bookingUsecase "adscreen-service/internal/service/booking"
	"adscreen-service/internal/service/email"
	invoiceUsecase "adscreen-service/internal/service/invoice"
	notifyUsecase "adscreen-service/internal/service/notification"
	offerservice "adscreen-service/internal/service/offer"
	paymentUsecase "adscreen-service/internal/service/payment"
	"adscreen-service/internal/service/schedule"
	screenUsecase "adscreen-service/internal/service/screen"
	subscriptionUsecase "adscreen-service/internal/service/subscription"
	"adscreen-service/internal/storage"
	"adscreen-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	authService *authUsecase.AuthService
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start wires every dependency and serves HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logger := s.logger

	if err := validation.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// ----- PostgreSQL -----
	if s.cfg.RunMigrations {
		if err := db.RunMigrations(s.cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	pool, err := db.ConnectPostgres(ctx, db.PostgresConfig{
		URL:             s.cfg.DatabaseURL,
		MaxConns:        s.cfg.DBMaxConns,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.ConnectRedis(ctx, db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient, logger)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Media storage -----
	mediaStore, err := storage.NewLocalStore(s.cfg.UploadDir, s.cfg.PublicBaseURL+s.cfg.UploadsURLPath, logger)
	if err != nil {
		return err
	}

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, sessionManager, logger)
	go hub.Run(ctx)

	// ----- Email -----
	emails, closeEmails := s.emailQueue(logger)
	defer closeEmails()

	svc := s.buildServices(pool, redisClient, jwtManager, sessionManager, rateLimiter, hub, emails)
	s.authService = svc.auth

	hub.RegisterHandler(notifyUsecase.NewWSHandler(svc.notification))

	if err := s.initializeAdmin(ctx); err != nil {
		logger.Error("failed to initialize admin", zap.Error(err))
	}

	// ----- Scheduler -----
	scheduler, err := s.startScheduler(svc)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}()

	// ----- Handlers -----
	cookie := authHandler.CookieConfig{
		Name:   s.cfg.CookieName,
		Domain: s.cfg.CookieDomain,
		Secure: s.cfg.CookieSecure,
	}
	handlers := &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(svc.auth, hub, cookie, logger),
		OfferHandler:        offerHandler.NewOfferHandler(svc.offer),
		ScreenHandler:       screenHandler.NewScreenHandler(svc.location),
		BookingHandler:      bookingHandler.NewBookingHandler(svc.booking, mediaStore, logger),
		InvoiceHandler:      invoiceHandler.NewInvoiceHandler(svc.invoice),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(svc.plan, svc.subscription),
		PaymentHandler:      paymentHandler.NewPaymentHandler(svc.payment, logger),
		AuditHandler:        auditHandler.NewAuditHandler(svc.audit),
		NotifHandler:        notifyH.NewNotificationHandler(svc.notification),
		WSHandler:           wsHandler.NewWebSocketHandler(hub, s.cfg.AllowedOrigins, s.cfg.CookieName, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtManager.Verifier, sessionManager, s.cfg.CookieName, logger),
		UploadDir:           mediaStore.Dir(),
		UploadsURLPath:      s.cfg.UploadsURLPath,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestID(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.Metrics(),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
		middleware.Language(),
	)
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type services struct {
	auth         *authUsecase.AuthService
	notification *notifyUsecase.NotificationService
	offer        *offerservice.OfferService
	location     *screenUsecase.LocationService
	booking      *bookingUsecase.BookingService
	invoice      *invoiceUsecase.InvoiceService
	plan         *subscriptionUsecase.PlanService
	subscription *subscriptionUsecase.SubscriptionService
	payment      *paymentUsecase.PaymentService
	audit        *auditUsecase.AuditService
}

func (s *Server) buildServices(
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	rateLimiter *session.RateLimiter,
	hub *websocket.Hub,
	emails notifyUsecase.EmailQueue,
) *services {
	logger := s.logger

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	analysisRepo := postgres.NewAnalysisRepository(pool)
	locationRepo := postgres.NewScreenLocationRepository(pool)
	pricingRepo := postgres.NewPricingOptionRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	subscriptionRepo := postgres.NewMerchantSubscriptionRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// ----- Services (Usecases) -----
	notifService := notifyUsecase.NewNotificationService(notifyRepo, userRepo, hub, emails, logger)

	var analyzer offerservice.Analyzer = offerservice.DisabledAnalyzer{}
	if s.cfg.AnalyzerURL != "" {
		analyzer = offerservice.NewHTTPAnalyzer(s.cfg.AnalyzerURL, s.cfg.AnalyzerKey, s.cfg.AnalyzerTimeout)
	}

	invoiceService := invoiceUsecase.NewInvoiceService(
		dbWrapper,
		invoiceRepo,
		bookingRepo,
		auditRepo,
		notifService,
		invoiceUsecase.Seller{Name: s.cfg.SellerName, VATNumber: s.cfg.SellerVATNumber},
		logger,
	)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(
		dbWrapper,
		subscriptionRepo,
		planRepo,
		userRepo,
		invoiceService,
		auditRepo,
		notifService,
		subscriptionUsecase.Checkout{
			PublishableKey: s.cfg.MoyasarPublishableKey,
			CallbackURL:    s.cfg.MoyasarCallbackURL,
		},
		logger,
	)

	return &services{
		auth:         authUsecase.NewAuthService(userRepo, jwtManager.Generator, sessionManager, rateLimiter, logger),
		notification: notifService,
		offer:        offerservice.NewOfferService(dbWrapper, offerRepo, categoryRepo, userRepo, analysisRepo, analyzer, logger),
		location: screenUsecase.NewLocationService(
			locationRepo,
			pricingRepo,
			screenUsecase.NewRedisLocationCache(redisClient),
			logger,
		),
		booking: bookingUsecase.NewBookingService(
			dbWrapper,
			bookingRepo,
			locationRepo,
			pricingRepo,
			invoiceService,
			auditRepo,
			notifService,
			logger,
		),
		invoice:      invoiceService,
		plan:         subscriptionUsecase.NewPlanService(planRepo, logger),
		subscription: subscriptionService,
		payment: paymentUsecase.NewPaymentService(
			dbWrapper,
			invoiceRepo,
			subscriptionService,
			auditRepo,
			notifService,
			s.cfg.MoyasarWebhookSecret,
			logger,
		),
		audit: auditUsecase.NewAuditService(auditRepo),
	}
}

// emailQueue publishes to RabbitMQ when configured and otherwise sends
// directly over SMTP in the background. Without SMTP no emails are sent.
func (s *Server) emailQueue(logger *zap.Logger) (notifyUsecase.EmailQueue, func()) {
	if s.cfg.RabbitMQURL != "" {
		publisher := queue.NewPublisher(s.cfg.RabbitMQURL, logger)
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close email publisher", zap.Error(err))
			}
		}
	}

	if !s.cfg.SMTPConfigured() {
		logger.Warn("neither RABBITMQ_URL nor SMTP_HOST is set, email notifications are disabled")
		return nil, func() {}
	}

	sender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFrom,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)
	return email.NewAsyncSender(sender, logger), func() {}
}

func (s *Server) startScheduler(svc *services) (*schedule.Scheduler, error) {
	scheduler, err := schedule.NewScheduler(time.UTC, s.logger)
	if err != nil {
		return nil, err
	}

	jobs := []schedule.Job{
		{Name: "invoices.mark_overdue", Interval: s.cfg.OverdueInterval, Timeout: time.Minute, Run: svc.invoice.MarkOverdue},
		{Name: "subscriptions.expire", Interval: s.cfg.SubscriptionInterval, Timeout: time.Minute, Run: svc.subscription.ExpireEnded},
		{Name: "offers.expire", Interval: s.cfg.OfferExpiryInterval, Timeout: time.Minute, Run: svc.offer.ExpireEnded},
	}
	for _, job := range jobs {
		if err := scheduler.Add(job); err != nil {
			return nil, err
		}
	}

	scheduler.Start()
	return scheduler, nil
}

// initializeAdmin creates the bootstrap admin when ADMIN_EMAIL is set.
func (s *Server) initializeAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		s.logger.Info("ADMIN_EMAIL not set, skipping admin bootstrap")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName); err != nil {
		return fmt.Errorf("failed to ensure admin exists: %w", err)
	}
	return nil
}
