package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	overridesHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/availability_overrides"
	rulesHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/availability_rules"
	cancelBookingHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_client_bookings"
	getConflictsHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_conflicts"
	getProviderBookingsHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_provider_bookings"
	getProviderConfigHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/get_provider_config"
	updateProviderConfigHandler "github.com/m04kA/SMC-BeautyBooking/internal/api/handlers/update_provider_config"
	"github.com/m04kA/SMC-BeautyBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BeautyBooking/internal/config"
	"github.com/m04kA/SMC-BeautyBooking/internal/infra/cache"
	availabilityRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/config"
	catalogClient "github.com/m04kA/SMC-BeautyBooking/internal/integrations/catalog"
	identityClient "github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/notifier"
	availabilityService "github.com/m04kA/SMC-BeautyBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-BeautyBooking/internal/service/bookings"
	configService "github.com/m04kA/SMC-BeautyBooking/internal/service/config"
	createBookingUC "github.com/m04kA/SMC-BeautyBooking/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-BeautyBooking/internal/usecase/get_availability"
	getConflictsUC "github.com/m04kA/SMC-BeautyBooking/internal/usecase/get_conflicts"
	"github.com/m04kA/SMC-BeautyBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/metrics"
	"github.com/m04kA/SMC-BeautyBooking/pkg/rangelock"
	"github.com/m04kA/SMC-BeautyBooking/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BeautyBooking...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка снимает метрики запросов; без метрик работает как прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	txManager := txmanager.NewTransactionManager(wrappedDB,
		txmanager.WithMaxRetries(cfg.Booking.SerializationRetries),
		txmanager.WithOnRetry(func(attempt int, err error) {
			log.Warn("Serializable transaction retry #%d: %v", attempt, err)
			if metricsCollector != nil {
				metricsCollector.SerializationRetries.Inc()
			}
		}),
	)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)

	// Кэш правил доступности (если включен)
	var rulesCache availabilityService.RulesCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis is unavailable, rules are read from database: %v", err)
		}
		rulesCache = cache.NewRulesCache(redisClient, time.Duration(cfg.Redis.RulesTTL)*time.Second)
		log.Info("Rules cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.RulesTTL)
	}

	// Очередь событий бронирований (если включена)
	var publisher *notifier.Publisher
	if cfg.Notifications.Enabled {
		queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Notifications.RedisAddr})
		defer queueClient.Close()

		publisher = notifier.NewPublisher(queueClient, cfg.Notifications.Queue, cfg.Notifications.MaxRetry)
		log.Info("Booking events enabled (queue=%s)", cfg.Notifications.Queue)
	}

	// Инициализируем интеграционных клиентов
	catalog := catalogClient.NewClient(
		cfg.Catalog.URL,
		time.Duration(cfg.Catalog.Timeout)*time.Second,
		log,
	)
	identity := identityClient.NewClient(
		cfg.Identity.URL,
		time.Duration(cfg.Identity.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (Catalog=%s timeout=%ds, Identity=%s timeout=%ds)",
		cfg.Catalog.URL, cfg.Catalog.Timeout, cfg.Identity.URL, cfg.Identity.Timeout)

	// Инициализируем сервисы
	configSvc := configService.NewService(configRepository, log)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		rulesCache,
		txManager,
		metricsCollector,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		configSvc,
		publisher,
		txManager,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		configSvc,
		availabilitySvc,
		catalog,
		metricsCollector,
		log,
	)
	getConflictsUseCase := getConflictsUC.NewUseCase(
		bookingRepository,
		configSvc,
		availabilitySvc,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		configSvc,
		rangelock.New(),
		txManager,
		publisher,
		metricsCollector,
		time.Duration(cfg.Booking.LockTimeoutMs)*time.Millisecond,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getConflicts := getConflictsHandler.NewHandler(getConflictsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	getProviderConfig := getProviderConfigHandler.NewHandler(configSvc, log)
	updateProviderConfig := updateProviderConfigHandler.NewHandler(configSvc, log)
	rules := rulesHandler.NewHandler(availabilitySvc, log)
	overrides := overridesHandler.NewHandler(availabilitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты и карта конфликтов
	api.HandleFunc("/providers/{providerId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/conflicts", getConflicts.Handle).Methods(http.MethodGet)

	// Расписание и настройки мастера
	api.HandleFunc("/providers/{providerId}/config", getProviderConfig.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/rules", rules.List).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/overrides", overrides.List).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Authorization: Bearer <token>)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(identity, log))

	// --- Бронирования ---
	createHandler := http.Handler(http.HandlerFunc(createBooking.Handle))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		createHandler = limiter.Middleware()(createHandler)
		log.Info("Booking rate limit enabled (rps=%.2f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	protected.Handle("/bookings", createHandler).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/clients/me/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для мастеров) ---
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/rules", rules.Create).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/rules/{ruleId}", rules.Update).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/rules/{ruleId}", rules.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/overrides/{date}", overrides.Put).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/overrides/{date}", overrides.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/config", updateProviderConfig.Handle).Methods(http.MethodPut)

	// CORS и восстановление после паники
	handler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.HeaderRequestID}),
	)(r)
	handler = gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true))(handler)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
