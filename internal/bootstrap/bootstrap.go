package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	"prodman/internal/api"
	archiveinadapter "prodman/internal/modules/archive/adapter/in"
	archiveoutadapter "prodman/internal/modules/archive/adapter/out"
	archiveservice "prodman/internal/modules/archive/service"
	archiveusecase "prodman/internal/modules/archive/usecase"
	trackerinadapter "prodman/internal/modules/tracker/adapter/in"
	trackeroutadapter "prodman/internal/modules/tracker/adapter/out"
	trackerdto "prodman/internal/modules/tracker/dto"
	trackerservice "prodman/internal/modules/tracker/service"
	trackerusecase "prodman/internal/modules/tracker/usecase"
	"prodman/internal/platform/clock"
	"prodman/internal/platform/config"
	"prodman/internal/platform/id"
	"prodman/internal/platform/logging"
	uiapp "prodman/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     hclog.Logger
	TrackerCLI trackerinadapter.CLIHandler
	ArchiveCLI archiveinadapter.CLIHandler
	Router     http.Handler

	tracker *trackerusecase.Interactor
	store   *archiveoutadapter.SQLiteStore
}

// New wires both modules over cfg and deploys the configured default
// schedule so a session can start straight away.
func New(cfg config.Config) (*App, error) {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	clk := clock.SystemClock{}

	store, err := archiveoutadapter.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new archive store: %w", err)
	}
	archiveUC := archiveusecase.NewInteractor(archiveservice.NewArchiveService(
		clk,
		store,
		store,
		archiveoutadapter.NewMarkdownExporter(cfg.ExportDir),
		logger.Named("archive"),
	))

	cues := trackeroutadapter.Fanout{trackeroutadapter.NewLogCuePlayer(logger.Named("cues"))}
	if cfg.Cues.Enabled {
		cues = append(cues, trackeroutadapter.NewExecCuePlayer(trackeroutadapter.ExecCueConfig{
			SpeechCommand: cfg.Cues.SpeechCommand,
			SoundCommand:  cfg.Cues.SoundCommand,
			ApplauseSound: cfg.Cues.ApplauseSound,
			DingSound:     cfg.Cues.DingSound,
		}, logger.Named("cues")))
	}
	ctrl := trackerservice.NewController(
		trackerservice.Config{TickInterval: cfg.TickInterval, HasslerRepeat: cfg.HasslerRepeat},
		clk,
		id.UUID{},
		cues,
		logger.Named("tracker"),
	)
	trackerUC := trackerusecase.NewInteractor(ctrl, archiveUC, logger.Named("tracker"))

	app := &App{
		Config:     cfg,
		Logger:     logger,
		TrackerCLI: trackerinadapter.NewCLIHandler(trackerUC),
		ArchiveCLI: archiveinadapter.NewCLIHandler(archiveUC),
		Router:     api.NewRouter(trackerUC, archiveUC, logger.Named("http")),
		tracker:    trackerUC,
		store:      store,
	}
	if _, err := app.TrackerCLI.Deploy(context.Background(), ScheduleBlocks(cfg.Schedule), true); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("deploy configured schedule: %w", err)
	}
	return app, nil
}

// ScheduleBlocks converts configured blocks to the tracker's wire shape.
func ScheduleBlocks(in []config.Block) []trackerdto.Block {
	out := make([]trackerdto.Block, 0, len(in))
	for _, b := range in {
		out = append(out, trackerdto.Block(b))
	}
	return out
}

// Close finishes any running session and releases the database.
func (a *App) Close() error {
	return errors.Join(a.tracker.Close(), a.store.Close())
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.TrackerCLI, app.Config.TickInterval)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
