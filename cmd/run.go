package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"insurecalc/config"
	"insurecalc/database"
	"insurecalc/events"
	"insurecalc/infrastructure"
	"insurecalc/repository"
	"insurecalc/server"
	"insurecalc/service"
)

// App holds the wired services shared by every command
type App struct {
	Config        *config.Config
	DB            *database.DB
	EventBus      *events.Bus
	Contributions service.ContributionService
	Imports       service.ImportService

	nats *infrastructure.NATSClient
}

// SetupLogging applies the configured level and formatter to the standard logrus logger
func SetupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// NewApp connects to the database and optional NATS servers and builds the services
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	tieBreak, err := service.ParseTieBreak(cfg.CityTieBreak)
	if err != nil {
		return nil, err
	}
	grouping, err := service.ParseGroupingKey(cfg.AggregateBy)
	if err != nil {
		return nil, err
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()
	app := &App{
		Config:   cfg,
		DB:       db,
		EventBus: eventBus,
	}

	if cfg.NATSServers != "" {
		if err := app.connectNATS(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	app.Contributions = service.NewContributionService(uowFactory, service.ContributionOptions{
		CityAliases: cfg.CityAliases,
		TieBreak:    tieBreak,
		Grouping:    grouping,
	})
	app.Imports = service.NewImportService(uowFactory, service.NewRecordValidator())

	log.WithFields(log.Fields{
		"tieBreak": tieBreak,
		"grouping": grouping,
		"aliases":  len(cfg.CityAliases),
	}).Info("Services initialized")

	return app, nil
}

func (a *App) connectNATS(ctx context.Context) error {
	client := infrastructure.NewNATSClient(a.Config.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.StreamName, mapper.GetAllSubjects()); err != nil {
		client.Close()
		return err
	}

	infrastructure.NewNATSEventPublisher(client, mapper).SubscribeTo(a.EventBus)
	a.nats = client
	return nil
}

// Close releases the NATS connection and the database pool
func (a *App) Close() {
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
	log.Info("Closing database connection...")
	a.DB.Close()
}

// Run starts the HTTP API and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	SetupLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting insurecalc...")

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.New(app.Contributions, app.Imports, cfg.Environment == "development")
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
		return err
	}

	// Let in-flight event handlers finish forwarding
	time.Sleep(500 * time.Millisecond)
	log.Info("Shutdown completed")
	return nil
}
