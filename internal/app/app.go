// Package app wires the stores, the scheduler and the simulated agents into
// one dashboard state.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"somadev/internal/canvas"
	"somadev/internal/chat"
	"somadev/internal/config"
	"somadev/internal/events"
	"somadev/internal/fixtures"
	"somadev/internal/kanban"
	"somadev/internal/router"
	"somadev/internal/scheduler"
	"somadev/internal/store"
)

type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Scheduler *scheduler.Scheduler
	Bus       *events.Bus
}

// State is one seeded generation of the dashboard. Reset replaces it whole.
type State struct {
	Agents      *store.Agents
	Projects    *store.Projects
	Tasks       *store.Tasks
	Chat        *store.Chat
	Logs        *store.Logs
	Canvas      *store.Canvas
	Stats       *store.Stats
	Deployments *store.Deployments

	Router    *router.Router
	Board     *kanban.Board
	Responder *chat.Responder
	Generator *canvas.Generator
}

type App struct {
	cfg   *config.Config
	log   *zap.Logger
	sched *scheduler.Scheduler
	bus   *events.Bus

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	state *State
}

// New builds an App seeded from the fixtures. Missing options get a default
// config, a no-op logger, a wall-clock scheduler and a fresh bus.
func New(opts Options) *App {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.New(scheduler.WithLogger(opts.Logger))
	}
	if opts.Bus == nil {
		opts.Bus = events.New(opts.Scheduler.Now)
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    opts.Config,
		log:    opts.Logger,
		sched:  opts.Scheduler,
		bus:    opts.Bus,
		ctx:    ctx,
		cancel: cancel,
	}
	a.state = a.seed()
	return a
}

func (a *App) seed() *State {
	now := a.sched.Now
	s := fixtures.MustLoad(now())
	st := &State{
		Agents:      store.NewAgents(s.Agents, now, a.bus),
		Projects:    store.NewProjects(s.Projects, now, a.bus),
		Tasks:       store.NewTasks(s.Tasks, now, a.bus),
		Chat:        store.NewChat(s.Messages, a.bus),
		Logs:        store.NewLogs(s.Logs, a.bus),
		Canvas:      store.NewCanvas(s.Canvas, a.bus),
		Stats:       store.NewStats(s.Stats, a.bus),
		Deployments: store.NewDeployments(s.Deployments),
		Router:      router.New(a.bus),
	}
	st.Board = kanban.NewBoard(st.Tasks)
	st.Responder = chat.New(st.Chat, st.Router, a.sched, chat.Options{
		ReplyDelay:    a.cfg.Chat.ReplyDelay,
		ConfirmDelay:  a.cfg.Chat.ConfirmDelay,
		RedirectDelay: a.cfg.Chat.RedirectDelay,
		Keywords:      a.cfg.Chat.Keywords,
		Logger:        a.log.Named("chat"),
	})
	st.Generator = canvas.New(a.sched, a.bus, canvas.Options{
		TickInterval: a.cfg.Canvas.TickInterval,
		Step:         a.cfg.Canvas.Step,
		Logger:       a.log.Named("canvas"),
	})
	return st
}

// State returns the current generation. Callers should not hold on to it
// across a Reset.
func (a *App) State() *State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Bus() *events.Bus { return a.bus }
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// Reset drops every pending chat step and generation run and re-seeds all
// stores from the fixtures.
func (a *App) Reset() {
	a.mu.Lock()
	old := a.state
	a.state = a.seed()
	a.mu.Unlock()
	old.Responder.Reset()
	old.Generator.Cancel()
	a.log.Info("state reset to fixtures")
	a.bus.Publish(events.TopicReset, nil)
}

// Generate starts a canvas generation run that lives as long as the App.
func (a *App) Generate(prompt string) bool {
	return a.State().Generator.Start(a.ctx, prompt)
}

// Close cancels everything still scheduled.
func (a *App) Close() {
	a.cancel()
	st := a.State()
	st.Responder.Reset()
	st.Generator.Cancel()
}
