package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	createTicketHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_ticket"
	deleteSettingsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/delete_settings"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_available_slots"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getSettingsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_settings"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	listSettingsOverridesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_settings_overrides"
	myTicketsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/my_tickets"
	queueActionHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/queue_action"
	queueBoardHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/queue_board"
	rescheduleReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/reschedule_reservation"
	updateReservationStatusHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation_status"
	updateSettingsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_settings"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	availabilityRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/availability"
	queueRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/queue"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/notifier"
	availabilityService "github.com/m04kA/SMC-ReservationService/internal/service/availability"
	intentGuardService "github.com/m04kA/SMC-ReservationService/internal/service/intentguard"
	queueService "github.com/m04kA/SMC-ReservationService/internal/service/queue"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	rescheduleReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-ReservationService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики: при выключенных остается nil, методы *Metrics его допускают
	var (
		metricsCollector *metrics.Metrics
		dbCollector      dbmetrics.Collector
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbCollector = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Уведомления
	publisher, err := notifier.New(cfg.Notifications, metricsCollector, log)
	if err != nil {
		log.Fatal("Failed to initialize notifier: %v", err)
	}
	defer publisher.Close()
	log.Info("Notifications transport: %s", cfg.Notifications.Transport)

	// Репозитории
	accounts := accountRepo.NewRepository(wrappedDB)
	schedules := availabilityRepo.NewRepository(wrappedDB)
	reservationsRepository := reservationRepo.NewRepository(wrappedDB)
	queueItems := queueRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)

	// Сервисы
	availabilitySvc := availabilityService.NewService(accounts, schedules, reservationsRepository, settingsRepository, log)
	guardSvc := intentGuardService.NewService(queueItems, reservationsRepository, log)
	queueSvc := queueService.NewService(
		queueItems,
		accounts,
		reservationsRepository,
		availabilitySvc,
		guardSvc,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)
	reservationsSvc := reservationsService.NewService(
		reservationsRepository,
		accounts,
		availabilitySvc,
		queueSvc,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)
	settingsSvc := settingsService.NewService(settingsRepository, accounts, log)

	// Use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(accounts, availabilitySvc, log)
	createReservationUseCase := createReservationUC.NewUseCase(
		accounts,
		reservationsRepository,
		availabilitySvc,
		guardSvc,
		queueSvc,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)
	rescheduleReservationUseCase := rescheduleReservationUC.NewUseCase(
		accounts,
		reservationsRepository,
		availabilitySvc,
		queueSvc,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(rescheduleReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationsSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationsSvc, log)
	updateReservationStatus := updateReservationStatusHandler.NewHandler(reservationsSvc, log)
	createTicket := createTicketHandler.NewHandler(queueSvc, log)
	queueAction := queueActionHandler.NewHandler(queueSvc, log)
	queueBoard := queueBoardHandler.NewHandler(queueSvc, log)
	myTickets := myTicketsHandler.NewHandler(queueSvc, log)
	getSettings := getSettingsHandler.NewHandler(settingsSvc, log)
	updateSettings := updateSettingsHandler.NewHandler(settingsSvc, log)
	deleteSettings := deleteSettingsHandler.NewHandler(settingsSvc, log)
	listSettingsOverrides := listSettingsOverridesHandler.NewHandler(settingsSvc, log)

	// Роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	account := r.PathPrefix("/api/v1/accounts/{accountId:[0-9]+}").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (гости допускаются, X-User-ID опционален)
	// ============================================================

	public := account.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuth)

	public.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	public.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)
	public.HandleFunc("/queue/tickets", createTicket.Handle).Methods(http.MethodPost)
	public.HandleFunc("/queue/my-tickets", myTickets.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := account.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", rescheduleReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/status", updateReservationStatus.Handle).Methods(http.MethodPatch)

	// --- Очередь ---
	protected.HandleFunc("/queue/board", queueBoard.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/queue/items/{itemId}/actions/{action}", queueAction.Handle).Methods(http.MethodPost)

	// --- Настройки (администратор) ---
	protected.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/settings", deleteSettings.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/settings/overrides", listSettingsOverrides.Handle).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
