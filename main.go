// File: concierge/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierge/config"
	"concierge/cron"
	"concierge/database"
	"concierge/database/repository"
	bookingRepo "concierge/database/repository/booking"
	deviceRepo "concierge/database/repository/device"
	documentRepo "concierge/database/repository/document"
	locationRepo "concierge/database/repository/location"
	masterRepo "concierge/database/repository/master"
	"concierge/handlers"
	"concierge/routes"
	"concierge/services/booking"
	"concierge/services/interpreter"
	"concierge/services/master"
	"concierge/services/notification"
	"concierge/services/reminder"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Storage backend: MongoDB for deployments, a JSON document file for
	// single-host setups.
	var (
		masters   repository.MasterRepository
		devices   repository.DeviceRepository
		bookings  repository.BookingRepository
		locations repository.LocationRepository
	)
	maxBookings := config.AppConfig.MaxBookingsPerMaster
	usingMongo := config.AppConfig.DatabaseBackend != "file"
	if usingMongo {
		database.InitDB()
		masters = masterRepo.NewMongoMasterRepo()
		devices = deviceRepo.NewMongoDeviceRepo()
		bookings = bookingRepo.NewMongoBookingRepo()
		locations = locationRepo.NewMongoLocationRepo()
	} else {
		store, err := documentRepo.Open(config.AppConfig.DataFile)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to open data file: %v", err)
		}
		masters = store.Masters()
		devices = store.Devices()
		bookings = store.Bookings()
		locations = store.Locations()
		// The data file can carry its own cap; it wins over the config default.
		if v := store.MaxBookings(); v > 0 {
			maxBookings = v
		}
	}

	// Push delivery needs Firebase credentials and the token collection;
	// otherwise notifications go to the log.
	var notifier notification.Notifier
	var tokens handlers.TokenRegistrar
	if usingMongo && config.AppConfig.FirebaseCredentialsFile != "" {
		utils.FirebaseInit()
		fcm := notification.NewFCMNotifier(logger)
		notifier = fcm
		tokens = fcm
	} else {
		notifier = &notification.LogNotifier{Logger: logger}
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}
	scheduler := reminder.NewAsynqScheduler(
		redisOpt,
		time.Duration(config.AppConfig.ReminderLeadLongMin)*time.Minute,
		time.Duration(config.AppConfig.ReminderLeadShortMin)*time.Minute,
		logger,
	)
	defer scheduler.Close()

	var interp interpreter.Interpreter
	if config.AppConfig.GeminiAPIKey != "" {
		gemini, err := interpreter.NewGeminiInterpreter(
			config.AppConfig.GeminiAPIKey,
			config.AppConfig.InterpreterTimeout,
		)
		if err != nil {
			logger.Sugar().Warnf("main: interpreter disabled: %v", err)
		} else {
			interp = gemini
		}
	}

	bookingService := &booking.DefaultBookingService{
		Masters:     masters,
		Devices:     devices,
		Bookings:    bookings,
		Reminders:   scheduler,
		Notifier:    notifier,
		MaxBookings: maxBookings,
	}
	masterService := &master.DefaultMasterService{
		Masters:         masters,
		Interpreter:     interp,
		DefaultLocation: config.AppConfig.DefaultSlotLocation,
	}

	cron.InitReminderWorker(notifier)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &routes.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService, logger),
		Master:  handlers.NewMasterHandler(masterService, logger),
		Device:  handlers.NewDeviceHandler(devices, locations, tokens, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
