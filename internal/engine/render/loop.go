// Package render drives the globe rotation: a self-rescheduling tick that
// nudges the viewpoint longitude until the loop is stopped.
package render

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rendis/gofind/internal/model"
)

// DefaultSpeed is the longitude increment applied per tick.
const DefaultSpeed = 0.2

// Transition handed to the surface with every viewpoint write.
const Transition = 50 * time.Millisecond

type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Surface is the part of the globe the loop needs: read and write the camera.
// PointOfView reports false until the surface is ready to draw.
type Surface interface {
	PointOfView() (model.Viewpoint, bool)
	SetPointOfView(v model.Viewpoint, transition time.Duration)
}

// TickMsg is delivered once per frame. It carries the handle of the loop
// generation that scheduled it.
type TickMsg struct {
	handle uint64
	At     time.Time
}

type Options struct {
	Speed    float64
	Interval time.Duration
	// Registerer receives the tick counter. Nil keeps it private.
	Registerer prometheus.Registerer
}

// Loop is shared by pointer so bubbletea's model copies all see the same
// state and handle.
type Loop struct {
	mu       sync.Mutex
	state    State
	handle   uint64
	speed    float64
	interval time.Duration
	ticks    prometheus.Counter
	skipped  prometheus.Counter
}

// NewLoop returns a loop in the Running state.
func NewLoop(opts Options) *Loop {
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second / 60
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Loop{
		state:    Running,
		handle:   1,
		speed:    opts.Speed,
		interval: opts.Interval,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gofind",
			Subsystem: "render",
			Name:      "ticks_total",
			Help:      "Render ticks that advanced the viewpoint.",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gofind",
			Subsystem: "render",
			Name:      "ticks_skipped_total",
			Help:      "Render ticks that found the surface not ready.",
		}),
	}
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cmd schedules the next tick for the current generation. It returns nil
// once the loop is stopped.
func (l *Loop) Cmd() tea.Cmd {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextLocked()
}

func (l *Loop) nextLocked() tea.Cmd {
	if l.state != Running {
		return nil
	}
	handle := l.handle
	return tea.Tick(l.interval, func(t time.Time) tea.Msg {
		return TickMsg{handle: handle, At: t}
	})
}

// Handle advances the surface for a tick of the current generation and
// schedules the next one. Ticks from an invalidated handle are dropped.
func (l *Loop) Handle(msg TickMsg, surface Surface) tea.Cmd {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running || msg.handle != l.handle {
		return nil
	}
	l.stepLocked(surface)
	return l.nextLocked()
}

// Step applies one rotation increment. A surface that is not ready yet is
// left untouched. Returns whether the viewpoint was written.
func (l *Loop) Step(surface Surface) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running {
		return false
	}
	return l.stepLocked(surface)
}

func (l *Loop) stepLocked(surface Surface) bool {
	if surface == nil {
		l.skipped.Inc()
		return false
	}
	pov, ok := surface.PointOfView()
	if !ok {
		l.skipped.Inc()
		return false
	}
	pov.Lng += l.speed
	surface.SetPointOfView(pov, Transition)
	l.ticks.Inc()
	return true
}

// Stop moves the loop to Stopped and invalidates the pending tick. It is
// idempotent; a stopped loop cannot be restarted.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Stopped {
		return
	}
	l.state = Stopped
	l.handle++
}
