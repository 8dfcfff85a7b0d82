package app

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/client"
	"github.com/difylang/dbagent/internal/config"
	"github.com/difylang/dbagent/internal/core"
	"github.com/difylang/dbagent/internal/data"
	"github.com/difylang/dbagent/internal/dispatcher"
	"github.com/difylang/dbagent/internal/eventbus"
	"github.com/difylang/dbagent/internal/models"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	display    *data.Store
	dataClient *client.DataClient
	model      *AppModel
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger()
	if err != nil {
		return nil, err
	}

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)
	display := data.NewStore()

	agent := client.NewAgentClient(cfg.GetAgentURL(), cfg.GetTimeout(), logger.Named("agent"))
	dataClient := client.NewDataClient(cfg.GetDataURL(), cfg.GetTimeout(), logger.Named("data"))
	service := core.NewChatService(agent, display, eb, logger.Named("core"))

	model := &AppModel{
		appModel:   models.AppModel{Status: "Ready"},
		dispatcher: disp,
	}

	return &Application{
		config:     cfg,
		logger:     logger,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		display:    display,
		dataClient: dataClient,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()
	go app.loadSchema()

	p := tea.NewProgram(app.model)
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	_ = app.logger.Sync()
}

// loadSchema fetches the backend table schemas once at startup so the schema
// pane is populated without blocking the UI.
func (app *Application) loadSchema() {
	schemas, err := app.dataClient.GetSchema(context.Background())
	if err != nil {
		app.logger.Warn("failed to load schema", zap.Error(err))
		return
	}
	app.display.SetSchema(schemas)
	if err := app.eventBus.SendToUI(eventbus.SchemaUpdateEvent{Schema: schemas}); err != nil {
		app.logger.Warn("failed to publish schema", zap.Error(err))
	}
}

// NewLogger builds the application logger. Logs go to a file so they do not
// tear up the TUI.
func NewLogger() (*zap.Logger, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(home, "dbagent.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	return cfg.Build()
}
