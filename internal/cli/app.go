package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pfrederiksen/ff-events/internal/config"
	"github.com/pfrederiksen/ff-events/internal/logger"
	"github.com/pfrederiksen/ff-events/internal/notifier"
	"github.com/pfrederiksen/ff-events/internal/render"
	"github.com/pfrederiksen/ff-events/internal/scraper"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

// app holds what every command builds from the configuration
type app struct {
	cfg     *config.Config
	closers []func()
}

func newApp(logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, logOutput))

	return &app{cfg: cfg}, nil
}

// Close releases everything opened through the app, last opened first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := storage.ConnectPostgres(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store, err := storage.NewFileStore(a.cfg.Storage.DataDir, a.cfg.Storage.FileName)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		return store, nil
	}
}

// newScraper drives Chrome, or replays a saved page when htmlFile is set
func (a *app) newScraper(htmlFile string) (*scraper.Scraper, error) {
	sc, err := a.cfg.ScraperConfig()
	if err != nil {
		return nil, err
	}

	var browser render.Browser
	if htmlFile != "" {
		static, err := render.NewStaticBrowserFromFile(htmlFile)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", htmlFile, err)
		}
		browser = static
	} else {
		browser = &render.ChromeBrowser{ExecPath: a.cfg.Scraper.ChromePath}
	}
	return scraper.NewWithBrowser(sc, browser)
}

// newNotifier builds the configured announcers. It returns nil when none is enabled.
func (a *app) newNotifier() (notifier.Notifier, error) {
	var multi notifier.Multi

	if len(a.cfg.Kafka.Brokers) > 0 {
		kn, err := notifier.NewKafkaNotifier(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("initializing kafka notifier: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := kn.Close(); err != nil {
				logger.Warn("Failed to close kafka writer", logger.Fields{"error": err.Error()})
			}
		})
		multi = append(multi, kn)
	}

	if a.cfg.Twitter.Enabled {
		tn, err := notifier.NewTwitterNotifier()
		if err != nil {
			return nil, fmt.Errorf("initializing twitter notifier: %w", err)
		}
		multi = append(multi, tn)
	}

	if a.cfg.Telegram.Enabled {
		loc, err := a.cfg.Location()
		if err != nil {
			return nil, err
		}
		tg, err := notifier.NewTelegramNotifier(loc)
		if err != nil {
			return nil, fmt.Errorf("initializing telegram notifier: %w", err)
		}
		multi = append(multi, tg)
	}

	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}
