package main

import (
	"context"
	"parkbook/internal/auth"
	"parkbook/internal/bookingevents"
	bookingshandler "parkbook/internal/bookings/handler"
	"parkbook/internal/bookings/locker"
	bookingsrepository "parkbook/internal/bookings/repository"
	bookingsservice "parkbook/internal/bookings/service"
	bookingsvalidator "parkbook/internal/bookings/validator"
	eventshandler "parkbook/internal/events/handler"
	eventsrepository "parkbook/internal/events/repository"
	eventsservice "parkbook/internal/events/service"
	eventsvalidator "parkbook/internal/events/validator"
	inventoryhandler "parkbook/internal/inventory/handler"
	inventoryrepository "parkbook/internal/inventory/repository"
	inventoryservice "parkbook/internal/inventory/service"
	inventoryvalidator "parkbook/internal/inventory/validator"
	usershandler "parkbook/internal/users/handler"
	usersrepository "parkbook/internal/users/repository"
	usersservice "parkbook/internal/users/service"
	usersvalidator "parkbook/internal/users/validator"
	"parkbook/pkg/app"
	"parkbook/pkg/config"
	"parkbook/pkg/contracts"
	"parkbook/pkg/kafka"
	kafka_config "parkbook/pkg/kafka/config"
	kafka_middleware "parkbook/pkg/kafka/middleware"
)

const ServiceName = "park"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Park service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher, closePublisher := initPublisher(cfg)
	defer closePublisher()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	handlers := initHandlers(cfg, tokens, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(auth.Authenticate(tokens, cfg.Log), handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, tokens *auth.TokenManager, publisher bookingevents.Publisher) []contracts.Handler {
	userRepo := usersrepository.NewMongoUserRepository(cfg)
	roomRepo := inventoryrepository.NewMongoRoomRepository(cfg)
	attractionRepo := inventoryrepository.NewMongoAttractionRepository(cfg)
	eventRepo := eventsrepository.NewMongoEventRepository(cfg)
	eventBookingRepo := eventsrepository.NewMongoEventBookingRepository(cfg)
	roomBookingRepo := bookingsrepository.NewRoomBookingRepository(cfg)
	slotLocks := locker.New(bookingsrepository.NewSlotLockRepository(cfg), cfg.SlotLockTTL, cfg.SlotLockWait, cfg.Log)

	userService := usersservice.NewUserService(userRepo, tokens, usersvalidator.NewUserValidator(cfg.Log), cfg)
	ensureAdmin(cfg, userService)

	inventoryValidator := inventoryvalidator.NewInventoryValidator(cfg.Log)
	roomService := inventoryservice.NewRoomService(roomRepo, inventoryValidator, cfg)
	attractionService := inventoryservice.NewAttractionService(attractionRepo, inventoryValidator, cfg)

	eventValidator := eventsvalidator.NewEventValidator(cfg.Log)
	eventService := eventsservice.NewEventService(eventRepo, eventBookingRepo, eventValidator, cfg)
	eventBookingService := eventsservice.NewEventBookingService(
		eventBookingRepo,
		eventRepo,
		userRepo,
		slotLocks,
		publisher,
		eventValidator,
		cfg,
	)

	roomBookingService := bookingsservice.NewRoomBookingService(
		roomBookingRepo,
		roomRepo,
		userRepo,
		slotLocks,
		publisher,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	listingService := bookingsservice.NewListingService(
		roomBookingRepo,
		eventBookingRepo,
		userRepo,
		roomRepo,
		eventRepo,
		cfg,
	)

	cfg.Log.Info("Park services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		usershandler.NewUserHandler(userService, cfg.Log),
		inventoryhandler.NewInventoryHandler(roomService, attractionService, cfg.Log),
		eventshandler.NewEventHandler(eventService, eventBookingService, cfg.Log),
		bookingshandler.NewBookingHandler(roomBookingService, listingService, cfg.Log),
	}
}

func ensureAdmin(cfg *config.Config, users usersservice.UserService) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := users.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		cfg.Log.Fatal("Failed to bootstrap admin account", "error", err)
	}
}

// initPublisher returns the Kafka-backed publisher when Kafka is enabled and a
// no-op one otherwise. The returned func closes the producer.
func initPublisher(cfg *config.Config) (bookingevents.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return bookingevents.NopPublisher{}, func() {}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(metrics.ProducerMiddleware())
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Kafka producer initialized",
		"brokers", kafkaCfg.Brokers,
		"topic", cfg.KafkaBookingsTopic,
	)

	publisher := bookingevents.NewKafkaPublisher(producer, cfg.Log, cfg.WriteTimeout, ServiceName)
	return publisher, func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.Log.Info("Kafka producer closed", metrics.Snapshot().LogAttrs()...)
	}
}
