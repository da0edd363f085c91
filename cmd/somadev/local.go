package main

import (
	"context"

	"somadev/internal/app"
	"somadev/internal/scheduler"
	somadevsdk "somadev/sdk/go"
)

// dashboard is the slice of the API the chat and canvas commands drive.
// *somadevsdk.Client talks to a server; localDashboard runs in-process.
type dashboard interface {
	SendChat(ctx context.Context, content string) (somadevsdk.Chat, error)
	Chat(ctx context.Context) (somadevsdk.Chat, error)
	Generate(ctx context.Context, prompt string) (bool, error)
	Generation(ctx context.Context) (somadevsdk.Generation, error)
}

type localDashboard struct {
	app    *app.App
	sched  *scheduler.Scheduler
	cancel context.CancelFunc
	done   chan struct{}
}

// openDashboard returns the server client, or a fresh in-process App on the
// wall clock when local is set. The returned func releases it.
func openDashboard(ctx context.Context, local bool) (dashboard, func(), error) {
	if !local {
		return newClient(), func() {}, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	sched := scheduler.New(scheduler.WithLogger(logger.Named("scheduler")))
	a := app.New(app.Options{Config: cfg, Logger: logger, Scheduler: sched})
	runCtx, cancel := context.WithCancel(ctx)
	l := &localDashboard{app: a, sched: sched, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		_ = sched.Run(runCtx)
	}()
	return l, l.close, nil
}

func (l *localDashboard) close() {
	l.cancel()
	<-l.done
	l.app.Close()
}

// idle reports whether every scheduled step has run.
func (l *localDashboard) idle() bool { return l.sched.Pending() == 0 }

func (l *localDashboard) SendChat(ctx context.Context, content string) (somadevsdk.Chat, error) {
	accepted := l.app.State().Responder.Submit(content)
	c, err := l.Chat(ctx)
	c.Accepted = accepted
	return c, err
}

func (l *localDashboard) Chat(ctx context.Context) (somadevsdk.Chat, error) {
	st := l.app.State()
	out := somadevsdk.Chat{Typing: st.Chat.Typing()}
	for _, m := range st.Chat.List() {
		msg := somadevsdk.ChatMessage{ID: m.ID, Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp}
		if m.Agent != nil {
			msg.Agent = string(*m.Agent)
		}
		out.Messages = append(out.Messages, msg)
	}
	return out, nil
}

func (l *localDashboard) Generate(ctx context.Context, prompt string) (bool, error) {
	return l.app.Generate(prompt), nil
}

func (l *localDashboard) Generation(ctx context.Context) (somadevsdk.Generation, error) {
	snap := l.app.State().Generator.Snapshot()
	out := somadevsdk.Generation{Status: string(snap.Status), Progress: snap.Progress, Prompt: snap.Prompt}
	for _, f := range snap.Files {
		out.Files = append(out.Files, somadevsdk.GeneratedFile{Name: f.Name, Language: f.Language, Content: f.Content})
	}
	return out, nil
}
