// Command ls-globe is a terminal UI that shows online professionals on an
// interactive 3D globe.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-globe/internal/config"
	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	eventsCount   int
	watchInterval time.Duration
	snapshotPath  string
)

// headlessViewport is used when stdout is not a terminal.
var headlessViewport = globe.Viewport{Width: 80, Height: 40, CellAspect: 2}

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Config file (default: ./ls-globe.yaml or ~/.config/ls-globe/ls-globe.yaml)")
	entities := flag.String("entities", "", "Roster file or URL (.yaml, .json, .geojson); default is the bundled roster")
	refresh := flag.Duration("refresh", 0, "Roster reload interval (e.g., 30s, 5m); 0 disables reloading")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (console, json)")
	logFile := flag.String("log-file", "", "Write logs to this file (the TUI discards logs otherwise)")
	ascii := flag.Bool("ascii", false, "Draw the globe with ASCII dots instead of braille")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.IntVar(&eventsCount, "events", 0, "Print the last N roster events (0 = disabled)")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "entities":
			cfg.Roster.Source = *entities
		case "refresh":
			cfg.Roster.Refresh = *refresh
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "log-file":
			cfg.Log.File = *logFile
		case "ascii":
			cfg.UI.Braille = !*ascii
		}
	})
	cfg.Validate()

	headless := summaryMode || eventsCount > 0 || snapshotPath != ""

	// Set up logging
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))
	logger.SetFormat(logging.ParseFormat(cfg.Log.Format))
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		// The TUI owns the terminal
		logger.SetOutput(io.Discard)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	source := entity.NewSource(cfg.Roster.Source, entity.WithTimeout(cfg.Roster.Timeout))

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = cfg.Roster.Refresh
	stateMgr := state.NewManager(stateCfg)

	if headless {
		if err := runHeadless(ctx, cfg, source, stateMgr, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	engine := globe.New(cfg.Engine(), globe.WithLogger(logger))
	logger.Info("session %s, roster %s", engine.SessionID(), source.Origin())

	engine.SetOnSelect(func(id string) {
		name := id
		if ent, ok := engine.Entity(id); ok {
			name = ent.Name
		}
		stateMgr.Record(state.EventSelected, id, name)
	})

	settings := ui.Settings{
		FrameInterval: cfg.FrameInterval(),
		CellAspect:    cfg.UI.CellAspect,
		Braille:       cfg.UI.Braille,
	}
	model := ui.New(engine, stateMgr, settings,
		ui.WithLogger(logger),
		ui.WithCollaborate(func(ent entity.Entity) {
			logger.Info("collaboration requested with %s (%s)", ent.Name, ent.ID)
		}),
	)

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	// Start roster loop in background
	go runRosterLoop(ctx, source, stateMgr, p, logger)

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func runRosterLoop(ctx context.Context, source *entity.Source, stateMgr *state.Manager, p *tea.Program, logger *logging.Logger) {
	// Do initial load immediately
	doLoad(ctx, source, stateMgr, p, logger)

	interval := stateMgr.RefreshInterval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Roster loop shutting down")
			return
		case <-ticker.C:
			doLoad(ctx, source, stateMgr, p, logger)
		}
	}
}

func doLoad(ctx context.Context, source *entity.Source, stateMgr *state.Manager, p *tea.Program, logger *logging.Logger) {
	logger.Debug("Loading roster from %s...", source.Origin())

	result := source.Load(ctx)

	if result.Error != nil {
		logger.Error("Roster load failed: %v", result.Error)
		stateMgr.Update(nil, result.Duration, result.Error)
		p.Send(ui.ErrorMsg{Error: result.Error})
		return
	}

	logger.Debug("Roster loaded: %d entities in %v", len(result.Roster.Entities), result.Duration)

	stateMgr.Update(result.Roster, result.Duration, nil)
	p.Send(ui.RosterUpdateMsg{Snapshot: stateMgr.Snapshot()})
}

// runHeadless prints a summary table, the event log or a JSON snapshot without
// starting the TUI, once or every watchInterval.
func runHeadless(ctx context.Context, cfg config.Config, source *entity.Source, stateMgr *state.Manager, logger *logging.Logger) error {
	engine := globe.New(cfg.Engine(), globe.WithLogger(logger))
	engine.SetViewport(outputViewport(cfg.UI.CellAspect))

	outputOnce := func() error {
		result := source.Load(ctx)
		if result.Error != nil {
			stateMgr.Update(nil, result.Duration, result.Error)
			return result.Error
		}

		stateMgr.Update(result.Roster, result.Duration, nil)
		snap := stateMgr.Snapshot()
		engine.SetEntities(snap.Roster.Entities)

		// Export JSON if requested
		if snapshotPath != "" {
			export := globe.ExportSnapshot(engine, snap.Roster.Origin, snap.LastLoad)
			if snapshotPath == "-" {
				if err := export.WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
				logger.Info("snapshot written to %s", snapshotPath)
			}
		}

		// Print summary table if requested
		if summaryMode {
			globe.WriteSummaryTable(os.Stdout, engine, snap.LastLoad)
		}

		// Print event log if requested
		if eventsCount > 0 {
			if summaryMode {
				fmt.Println()
			}
			state.WriteEvents(os.Stdout, stateMgr.RecentEvents(eventsCount), eventsCount)
		}
		return nil
	}

	// Single run
	if watchInterval == 0 {
		return outputOnce()
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Println() // Blank line between outputs
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// outputViewport sizes the headless view to the terminal so the Visible
// column matches what the TUI would draw.
func outputViewport(cellAspect float64) globe.Viewport {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return headlessViewport
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return headlessViewport
	}
	return globe.Viewport{Width: float64(w), Height: float64(h), CellAspect: cellAspect}
}
