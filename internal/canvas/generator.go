// Package canvas simulates code generation for the design canvas.
//
// A run walks progress from 0 to 100 on a fixed tick and then exposes a
// canned three file app. No model is called.
package canvas

import (
	"context"
	"embed"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"somadev/internal/events"
	"somadev/internal/scheduler"
)

//go:embed assets
var assets embed.FS

var (
	ErrNoOutput    = errors.New("canvas: nothing generated yet")
	ErrUnknownFile = errors.New("canvas: unknown file")
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type File struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// generatedFiles are read in display order.
var generatedFiles = []struct{ name, language string }{
	{"index.html", "html"},
	{"styles.css", "css"},
	{"app.js", "javascript"},
}

// Snapshot is the observable state of the generator. Files is empty until a
// run completes.
type Snapshot struct {
	Status   Status `json:"status" enum:"idle,generating,completed,error"`
	Progress int    `json:"progress"`
	Prompt   string `json:"prompt,omitempty"`
	Files    []File `json:"files"`
}

type Options struct {
	TickInterval time.Duration
	Step         int
	Logger       *zap.Logger
}

func DefaultOptions() Options {
	return Options{TickInterval: 100 * time.Millisecond, Step: 2}
}

type Generator struct {
	sched *scheduler.Scheduler
	pub   events.Publisher
	opts  Options

	mu     sync.Mutex
	state  Snapshot
	run    uint64
	cancel context.CancelFunc
}

func New(sched *scheduler.Scheduler, pub events.Publisher, opts Options) *Generator {
	d := DefaultOptions()
	if opts.TickInterval <= 0 {
		opts.TickInterval = d.TickInterval
	}
	if opts.Step <= 0 {
		opts.Step = d.Step
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if pub == nil {
		pub = events.Discard
	}
	return &Generator{sched: sched, pub: pub, opts: opts, state: Snapshot{Status: StatusIdle, Files: []File{}}}
}

// Start begins a run for prompt, bound to ctx. A blank prompt is ignored. A
// run already in flight is cancelled first.
func (g *Generator) Start(ctx context.Context, prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	runCtx, cancel := context.WithCancel(ctx)
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.run++
	run := g.run
	g.cancel = cancel
	g.state = Snapshot{Status: StatusGenerating, Prompt: prompt, Files: []File{}}
	snap := g.state
	g.mu.Unlock()

	g.opts.Logger.Info("canvas generation started", zap.Uint64("run", run), zap.String("prompt", prompt))
	g.pub.Publish(events.TopicGeneration, snap)
	g.sched.After(runCtx, g.opts.TickInterval, func() { g.tick(runCtx, run) })
	return true
}

func (g *Generator) tick(ctx context.Context, run uint64) {
	g.mu.Lock()
	if run != g.run {
		g.mu.Unlock()
		return
	}
	done := g.state.Progress >= 100
	if done {
		g.state.Progress = 100
		files, err := loadFiles()
		if err != nil {
			g.state.Status = StatusError
			g.opts.Logger.Error("canvas generation failed", zap.Error(err))
		} else {
			g.state.Status = StatusCompleted
			g.state.Files = files
		}
		g.cancel()
		g.cancel = nil
	} else {
		g.state.Progress += g.opts.Step
	}
	snap := cloneSnapshot(g.state)
	g.mu.Unlock()

	g.pub.Publish(events.TopicGeneration, snap)
	if done {
		g.opts.Logger.Info("canvas generation finished", zap.Uint64("run", run), zap.String("status", string(snap.Status)))
		return
	}
	g.sched.After(ctx, g.opts.TickInterval, func() { g.tick(ctx, run) })
}

// Cancel stops the current run, if any, and returns to idle.
func (g *Generator) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.run++
	g.state = Snapshot{Status: StatusIdle, Files: []File{}}
}

func (g *Generator) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneSnapshot(g.state)
}

// File returns one generated file for download.
func (g *Generator) File(name string) (File, error) {
	snap := g.Snapshot()
	if snap.Status != StatusCompleted {
		return File{}, ErrNoOutput
	}
	for _, f := range snap.Files {
		if f.Name == name {
			return f, nil
		}
	}
	return File{}, ErrUnknownFile
}

// Preview returns the generated entry document.
func (g *Generator) Preview() (string, error) {
	f, err := g.File("index.html")
	if err != nil {
		return "", err
	}
	return f.Content, nil
}

func cloneSnapshot(s Snapshot) Snapshot {
	s.Files = append([]File{}, s.Files...)
	return s
}

func loadFiles() ([]File, error) {
	out := make([]File, 0, len(generatedFiles))
	for _, f := range generatedFiles {
		b, err := assets.ReadFile("assets/" + f.name)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Name: f.name, Language: f.language, Content: strings.TrimRight(string(b), "\n")})
	}
	return out, nil
}
