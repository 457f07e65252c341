package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "autodocs/docs"
	"autodocs/internal/config"
	"autodocs/internal/handlers"
	"autodocs/internal/metrics"
	"autodocs/internal/pdf"
	"autodocs/internal/repositories"
	"autodocs/internal/repositories/memory"
	"autodocs/internal/routes"
	"autodocs/internal/services"
)

// Repositories — набор хранилищ для выбранного драйвера.
type Repositories struct {
	Users           repositories.UserRepository
	Verifications   repositories.VerificationRepository
	References      repositories.ReferenceRepository
	Departments     repositories.DepartmentRepository
	ServiceRequests repositories.ServiceRequestRepository
}

func PostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Users:           repositories.NewUserRepository(db),
		Verifications:   repositories.NewVerificationRepository(db),
		References:      repositories.NewReferenceRepository(db),
		Departments:     repositories.NewDepartmentRepository(db),
		ServiceRequests: repositories.NewServiceRequestRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:           store.Users(),
		Verifications:   store.Verifications(),
		References:      store.References(),
		Departments:     store.Departments(),
		ServiceRequests: store.ServiceRequests(),
	}
}

// App — собранное приложение: роутер, фоновые задачи и сервисы.
type App struct {
	Router  *gin.Engine
	Jobs    *services.Dispatcher
	Metrics *metrics.Metrics

	Users         services.UserService
	Verifications services.VerificationService
}

// Deps — внешние зависимости, которые тесты подменяют.
type Deps struct {
	Repos    Repositories
	Email    services.EmailService
	Notifier services.AdminNotifier
}

func New(cfg *config.Config, deps Deps) *App {
	m := metrics.New()
	jobs := services.NewDispatcher()

	// === Services ===
	authService := services.NewAuthService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	refService := services.NewReferenceService(deps.Repos.References)
	userService := services.NewUserService(deps.Repos.Users, refService, authService, deps.Notifier, jobs, m)
	sessionService := services.NewSessionService(deps.Repos.Users, authService)
	verificationService := services.NewVerificationService(
		deps.Repos.Verifications,
		deps.Email,
		services.VerificationSettings{
			OTPMin:    cfg.OTP.Min,
			OTPMax:    cfg.OTP.Max,
			OTPTTL:    cfg.Verification.OTPTTL,
			LinkTTL:   cfg.Verification.LinkTTL,
			PublicURL: cfg.Verification.PublicURL,
		},
		jobs,
		m,
	)
	serialService := services.NewSerialService(deps.Repos.Users, deps.Repos.Departments, m)
	requestService := services.NewServiceRequestService(deps.Repos.ServiceRequests, deps.Repos.Users, serialService)
	overviewService := services.NewOverviewService(deps.Repos.ServiceRequests, deps.Repos.Users, cfg.Pricing.FlatUnitPrice)
	departmentService := services.NewDepartmentService(deps.Repos.Departments)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(sessionService)
	userHandler := handlers.NewUserHandler(userService)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	serviceHandler := handlers.NewServiceHandler(requestService, serialService, refService, pdf.NewSlipGenerator(cfg.Files.FontPath))
	adminHandler := handlers.NewAdminHandler(userService, requestService, departmentService)
	reportHandler := handlers.NewReportHandler(overviewService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(m.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	routes.SetupRoutes(
		router,
		authService,
		authHandler,
		userHandler,
		verifyHandler,
		serviceHandler,
		adminHandler,
		reportHandler,
	)

	return &App{
		Router:        router,
		Jobs:          jobs,
		Metrics:       m,
		Users:         userService,
		Verifications: verificationService,
	}
}

// OpenRepositories открывает хранилище по database.driver. cleanup освобождает ресурсы.
func OpenRepositories(ctx context.Context, cfg *config.Config) (repos Repositories, cleanup func(), err error) {
	if cfg.Database.Driver == "memory" {
		store := memory.New()
		// в памяти нет миграций — одна демонстрационная цепочка для кафедр
		uni := store.AddUniversity("Auto Docs University", "ADU")
		store.AddFaculty("Faculty of Science", uni)
		log.Printf("[app] using in-memory storage")
		return MemoryRepositories(store), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return Repositories{}, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return PostgresRepositories(db), func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] db close: %v", err)
		}
	}, nil
}

// Run поднимает HTTP-сервер и ждёт отмены ctx; при остановке дожидается
// фоновых писем и уведомлений.
func Run(ctx context.Context, cfg *config.Config) error {
	repos, closeRepos, err := OpenRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	notifier, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
	if err != nil {
		// уведомления не критичны для работы API
		log.Printf("[app] telegram notifier disabled: %v", err)
		notifier = nil
	}
	email := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	a := New(cfg, Deps{Repos: repos, Email: email, Notifier: notifier})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s (env=%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[app] shutdown: %v", err)
	}
	a.Jobs.Wait()
	log.Printf("[app] stopped")
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
