package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dentabook/internal/appointments/events"
	"dentabook/internal/appointments/handler"
	"dentabook/internal/appointments/repository"
	"dentabook/internal/appointments/service"
	"dentabook/internal/appointments/validator"
	"dentabook/internal/metrics"
	"dentabook/internal/scheduling"
	"dentabook/pkg/app"
	"dentabook/pkg/config"
	"dentabook/pkg/kafka"
	kafkamiddleware "dentabook/pkg/kafka/middleware"
	"dentabook/pkg/sanitizer"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Appointments service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	store := initStore(cfg)
	engine := initEngine(cfg, store)
	publisher := initPublisher(cfg, collector)

	appointmentService := service.NewAppointmentService(service.Dependencies{
		Engine:    engine,
		Validator: validator.NewAppointmentValidator(cfg.Log),
		Publisher: publisher,
		Metrics:   collector,
		Phone:     sanitizer.PhoneNormalizer(cfg.PhoneRegions),
		Log:       cfg.Log,
	})
	cfg.Log.Info("Appointment service initialized")

	application := app.NewApplication()
	application.SetApp(
		cfg,
		handler.NewAppointmentHandler(appointmentService, cfg.Log),
		handler.NewHealthHandler(store, cfg.Log),
		metrics.Handler(registry),
	)
	application.OnShutdown("event-publisher", func(context.Context) error {
		return publisher.Close()
	})
	application.OnShutdown("mongo", func(context.Context) error {
		cfg.GracefulShutdown()
		return nil
	})
	application.Run()
}

func initStore(cfg *config.Config) repository.AppointmentRepository {
	if cfg.StoreBackend == config.StoreMemory {
		cfg.Log.Warn("Using in-memory appointment store, data is lost on restart")
		return repository.NewMemoryAppointmentRepository()
	}
	cfg.SetMongo()
	return repository.NewMongoAppointmentRepository(cfg)
}

func initEngine(cfg *config.Config, store scheduling.Store) *scheduling.Engine {
	services, err := scheduling.ParseServices(cfg.ServiceCatalog)
	if err != nil {
		cfg.Log.Fatal("Invalid service catalog", "error", err)
	}
	catalog, err := scheduling.NewStaticCatalog(services)
	if err != nil {
		cfg.Log.Fatal("Invalid service catalog", "error", err)
	}

	grid, err := scheduling.NewGrid(scheduling.GridConfig{
		Open:        cfg.ClinicOpen,
		Close:       cfg.ClinicClose,
		LunchStart:  cfg.ClinicLunchStart,
		LunchEnd:    cfg.ClinicLunchEnd,
		SlotMinutes: cfg.SlotMinutes,
		WorkingDays: cfg.WorkingDays,
		Holidays:    cfg.Holidays,
		Location:    cfg.ClinicLocation,
	})
	if err != nil {
		cfg.Log.Fatal("Invalid clinic hours", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	engine, err := scheduling.NewEngine(ctx, scheduling.Options{
		Catalog: catalog,
		Grid:    grid,
		Rules: scheduling.Rules{
			MinAdvance:         cfg.MinAdvance,
			MaxAdvance:         time.Duration(cfg.MaxAdvanceDays) * 24 * time.Hour,
			CancellationNotice: cfg.CancellationNotice,
		},
		Clock:           scheduling.SystemClock{Location: cfg.ClinicLocation},
		Store:           store,
		Logger:          cfg.Log,
		MaxAlternatives: cfg.MaxAlternatives,
		PhoneKey:        sanitizer.PhoneNormalizer(cfg.PhoneRegions),
	})
	if err != nil {
		cfg.Log.Fatal("Failed to start scheduling engine", "error", err)
	}
	return engine
}

func initPublisher(cfg *config.Config, collector *metrics.Collector) events.Publisher {
	if !cfg.Kafka.Enabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AppointmentsTopic, cfg.Kafka.AppointmentsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(collector.RecordPublish))

	cfg.Log.Info("Event publishing enabled",
		"topic", cfg.Kafka.AppointmentsTopic,
		"dlq_topic", cfg.Kafka.AppointmentsDLQTopic,
	)
	return events.NewKafkaPublisher(producer, cfg.Kafka.PublishTimeout, cfg.Log)
}
