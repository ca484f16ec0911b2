// Command ls-saucer is a terminal flying-saucer explorer for procedural
// space sectors and imported planet-editor archives.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-saucer/internal/archive"
	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/config"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/logging"
	"github.com/litescript/ls-saucer/internal/state"
	"github.com/litescript/ls-saucer/internal/ui"
)

// archiveList collects repeated -archive flags.
type archiveList []string

func (a *archiveList) String() string { return strings.Join(*a, ",") }

func (a *archiveList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

// recentEvents is how many events -events prints.
const recentEvents = 20

// CLI flags for headless mode
var (
	summaryMode  bool
	eventsMode   bool
	snapshotPath string
	ticks        int
	thrust       bool
	archives     archiveList
)

func main() {
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides SAUCER_LOG_LEVEL")
	envFile := flag.String("env", ".env", "Optional .env file")
	flag.Var(&archives, "archive", "Editor ZIP to import; repeat for more. In the TUI each press of I loads the next one")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.BoolVar(&eventsMode, "events", false, "Print the event log")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.IntVar(&ticks, "ticks", 0, "Simulation ticks to run before output in headless mode")
	flag.BoolVar(&thrust, "thrust", false, "Hold forward thrust during headless ticks")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	level := logging.ParseLevel(cfg.Logging.Level)

	stateCfg := state.DefaultConfig()
	stateCfg.ChunkSize = cfg.Universe.ChunkSize
	stateCfg.MaxSpeed = cfg.Flight.MaxSpeed
	stateCfg.TimeScale = cfg.Universe.OrbitTimeScale
	stateCfg.GalaxySystemCap = cfg.Import.GalaxySystemCap

	headless := summaryMode || eventsMode || snapshotPath != "" || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		logger := logging.New(level)
		stateMgr := state.NewManager(stateCfg, state.WithLogger(logger.Named("state")))
		if err := runHeadless(stateMgr, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	logger := logging.Discard()
	if cfg.Logging.File != "" {
		logger, err = logging.NewFile(cfg.Logging.File, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()
	}

	stateMgr := state.NewManager(stateCfg, state.WithLogger(logger.Named("state")))
	model := ui.New(stateMgr, archive.NewPathQueue(archives...),
		ui.WithFrameInterval(cfg.Display.FrameInterval()),
		ui.WithImportCooldown(cfg.Import.Cooldown),
		ui.WithStarfield(astro.NewStarfield(cfg.Universe.StarCount)),
		ui.WithChunkSize(cfg.Universe.ChunkSize),
		ui.WithLogger(logger.Named("ui")),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless imports every archive, flies the requested ticks, then writes
// the requested outputs. With no output flag it prints the summary.
func runHeadless(stateMgr *state.Manager, logger *logging.Logger) error {
	queue := archive.NewPathQueue(archives...)
	for queue.Remaining() > 0 {
		data, ok, err := queue.Open()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		res, err := stateMgr.Import(data)
		if err != nil {
			// One bad archive should not hide the rest.
			logger.Error("import: %v", err)
			continue
		}
		for _, w := range res.Warnings {
			logger.Warn("%v", w)
		}
		logger.Info("%s", res.Message)
	}

	ctrl := craft.Controls{Thrust: thrust}
	for i := 0; i < ticks; i++ {
		stateMgr.Tick(ctrl)
	}

	snap := stateMgr.Snapshot()
	now := time.Now()

	if snapshotPath != "" {
		export := state.ExportSnapshot(snap, now)
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
		}
	}

	if summaryMode || (!eventsMode && snapshotPath == "") {
		state.WriteSummaryTable(os.Stdout, snap, now)
	}

	if eventsMode {
		fmt.Println()
		state.WriteEvents(os.Stdout, stateMgr.RecentEvents(recentEvents), recentEvents)
	}
	return nil
}
