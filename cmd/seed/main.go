// Command seed loads sample photographers and events for trying out the API.
// Running it twice does not create duplicates.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/config"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/database"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/logger"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/service"
)

// checkStore rejects drivers whose data would vanish with the process.
func checkStore(cfg *config.Config) error {
	if cfg.StoreDriver != config.StorePostgres {
		return fmt.Errorf("seed requires STORE_DRIVER=%s, got %q", config.StorePostgres, cfg.StoreDriver)
	}
	return nil
}

type samplePhotographer struct {
	name, email, phone string
	active             bool
}

var samplePhotographers = []samplePhotographer{
	{"Alice Smith", "alice@example.com", "+1234567891", true},
	{"Bob Johnson", "bob@example.com", "+1234567892", true},
	{"Carol Williams", "carol@example.com", "+1234567893", true},
	{"David Brown", "david@example.com", "+1234567894", true},
	{"Eve Davis", "eve@example.com", "+1234567895", false},
}

type sampleEvent struct {
	name      string
	daysAhead int
	required  int
}

var sampleEvents = []sampleEvent{
	{"Corporate Conference 2026", 30, 2},
	{"Wedding Ceremony", 45, 3},
	{"Birthday Party", 15, 1},
	{"Product Launch", 60, 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := checkStore(cfg); err != nil {
		log.Error("seed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			log.Error("migrate", "error", err)
			os.Exit(1)
		}
	}
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)
	res, err := seed(ctx, log,
		service.NewEventService(store.Events),
		service.NewPhotographerService(store.Photographers),
		model.DateOf(time.Now()),
	)
	if err != nil {
		log.Error("seed failed", "error", err)
		pool.Close()
		os.Exit(1)
	}
	log.Info("sample data created",
		"photographers_created", res.photographers,
		"events_created", res.events,
	)
}

type seedResult struct {
	photographers int
	events        int
}

// seed creates the sample rows that do not exist yet. Photographers are
// matched by email, events by name and date.
func seed(
	ctx context.Context,
	log *slog.Logger,
	events *service.EventService,
	photographers *service.PhotographerService,
	today model.Date,
) (seedResult, error) {
	var res seedResult

	for _, sp := range samplePhotographers {
		active := sp.active
		_, err := photographers.CreatePhotographer(ctx, model.CreatePhotographerRequest{
			Name: sp.name, Email: sp.email, Phone: sp.phone, IsActive: &active,
		})
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			log.Warn("photographer already exists", "name", sp.name)
		case err != nil:
			return res, fmt.Errorf("create photographer %s: %w", sp.name, err)
		default:
			res.photographers++
			log.Info("created photographer", "name", sp.name)
		}
	}

	existing, err := events.ListEvents(ctx)
	if err != nil {
		return res, fmt.Errorf("list events: %w", err)
	}
	type key struct {
		name string
		date string
	}
	seen := make(map[key]bool, len(existing))
	for _, e := range existing {
		seen[key{e.Name, e.Date.String()}] = true
	}

	for _, se := range sampleEvents {
		date := today.AddDays(se.daysAhead)
		if seen[key{se.name, date.String()}] {
			log.Warn("event already exists", "name", se.name)
			continue
		}
		if _, err := events.CreateEvent(ctx, model.CreateEventRequest{
			Name: se.name, Date: date, PhotographersRequired: se.required,
		}); err != nil {
			return res, fmt.Errorf("create event %s: %w", se.name, err)
		}
		res.events++
		log.Info("created event", "name", se.name, "date", date.String())
	}
	return res, nil
}
