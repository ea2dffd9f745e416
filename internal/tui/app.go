package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/gofind/internal/engine/gateway"
	"github.com/rendis/gofind/internal/engine/geo"
	"github.com/rendis/gofind/internal/engine/render"
	"github.com/rendis/gofind/internal/logging"
	"github.com/rendis/gofind/internal/model"
	"github.com/rendis/gofind/internal/tui/components"
	"github.com/rendis/gofind/internal/tui/styles"
	"github.com/rendis/gofind/internal/tui/views"
)

const (
	bannerText  = "GoFIND-WORLD"
	description = "Discover the world like never before. Explore every country with " +
		"in-depth insights into their capital cities, languages and precise " +
		"geographic coordinates. From bustling urban centers to remote hidden gems, " +
		"uncover the stories and cultures that shape our global tapestry, one nation at a time."
)

// Fetcher is the part of the gateway the TUI needs.
type Fetcher interface {
	FetchCountries(ctx context.Context) ([]model.Country, error)
	FetchBoundaries(ctx context.Context) ([]*geojson.Feature, error)
	FetchCountryByName(ctx context.Context, name string) ([]model.Country, error)
}

// session holds what must survive bubbletea's value copies: the fetch
// context and the closed flag checked by every late message.
type session struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type Deps struct {
	Fetcher   Fetcher
	Loop      *render.Loop
	Logger    logging.Logger
	Viewpoint model.Viewpoint
}

// Messages
type countriesLoadedMsg struct {
	Countries []model.Country
	Err       error
}

type boundariesLoadedMsg struct {
	Features []*geojson.Feature
	Err      error
}

type detailLoadedMsg struct {
	Name      string
	Countries []model.Country
	Err       error
}

// App is the root bubbletea model. Collections change only through load
// messages, criteria only through the panel, the layout only through the
// toggle, and the viewpoint only through the render loop.
type App struct {
	width     int
	height    int
	fullWidth bool

	panel views.CountriesModel
	globe *components.Globe
	index *geo.BoundaryIndex

	fetch   Fetcher
	loop    *render.Loop
	log     logging.Logger
	session *session
}

func NewApp(deps Deps) App {
	log := deps.Logger
	if log == nil {
		log = logging.NewNop()
	}
	loop := deps.Loop
	if loop == nil {
		loop = render.NewLoop(render.Options{})
	}
	pov := deps.Viewpoint
	if pov == (model.Viewpoint{}) {
		pov = model.DefaultViewpoint
	}
	ctx, cancel := context.WithCancel(context.Background())

	return App{
		fullWidth: true,
		panel:     views.NewCountriesModel(),
		globe:     components.NewGlobe(pov),
		fetch:     deps.Fetcher,
		loop:      loop,
		log:       log.Named("tui"),
		session:   &session{ctx: ctx, cancel: cancel},
	}
}

// Init issues both fetches once and starts the render loop.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.fetchCountries(),
		a.fetchBoundaries(),
		a.loop.Cmd(),
	)
}

func (a App) fetchCountries() tea.Cmd {
	ctx, fetch := a.session.ctx, a.fetch
	return func() tea.Msg {
		countries, err := fetch.FetchCountries(ctx)
		return countriesLoadedMsg{Countries: countries, Err: err}
	}
}

func (a App) fetchBoundaries() tea.Cmd {
	ctx, fetch := a.session.ctx, a.fetch
	return func() tea.Msg {
		features, err := fetch.FetchBoundaries(ctx)
		return boundariesLoadedMsg{Features: features, Err: err}
	}
}

func (a App) fetchDetail(name string) tea.Cmd {
	ctx, fetch := a.session.ctx, a.fetch
	return func() tea.Msg {
		countries, err := fetch.FetchCountryByName(ctx, name)
		return detailLoadedMsg{Name: name, Countries: countries, Err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.session.isClosed() {
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch {
		case key == "ctrl+c":
			return a, a.teardown()
		case key == "ctrl+t":
			a.toggleLayout()
			return a, nil
		case a.fullWidth:
			switch key {
			case "q":
				return a, a.teardown()
			case "t", "enter", " ":
				a.toggleLayout()
			}
			return a, nil
		}

	case render.TickMsg:
		return a, a.loop.Handle(msg, a.globe)

	case countriesLoadedMsg:
		if msg.Err != nil {
			a.log.Warn("countries fetch failed", logging.Err(msg.Err))
			a.panel.SetLoadError(gateway.DatasetCountries, msg.Err)
			return a, nil
		}
		a.log.Info("countries loaded", logging.Int("count", len(msg.Countries)))
		a.panel.SetCountries(msg.Countries)
		a.syncHighlight()
		return a, nil

	case boundariesLoadedMsg:
		if msg.Err != nil {
			a.log.Warn("boundaries fetch failed", logging.Err(msg.Err))
			a.panel.SetLoadError(gateway.DatasetBoundaries, msg.Err)
			return a, nil
		}
		a.log.Info("boundaries loaded", logging.Int("features", len(msg.Features)))
		a.index = geo.NewBoundaryIndex(msg.Features)
		a.globe.SetPolygons(msg.Features)
		a.panel.SetLoadError(gateway.DatasetBoundaries, nil)
		a.syncHighlight()
		return a, nil

	case views.RefreshDetail:
		a.log.Debug("refreshing detail", logging.String("name", msg.Name))
		return a, a.fetchDetail(msg.Name)

	case detailLoadedMsg:
		if msg.Err != nil {
			a.log.Warn("detail refresh failed", logging.String("name", msg.Name), logging.Err(msg.Err))
		}
		a.panel.SetDetail(msg.Name, msg.Countries, msg.Err)
		return a, nil
	}

	// Keys reach the panel only while it is on screen; other messages
	// (cursor blink and the like) always do.
	var cmd tea.Cmd
	a.panel, cmd = a.panel.Update(msg)
	a.syncHighlight()
	return a, cmd
}

// teardown stops the loop, abandons in-flight fetches and quits. Idempotent.
func (a App) teardown() tea.Cmd {
	a.Close()
	return tea.Quit
}

// Close releases the loop and the fetch context.
func (a App) Close() {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	if a.session.closed {
		return
	}
	a.session.closed = true
	a.loop.Stop()
	a.session.cancel()
	a.log.Debug("session closed")
}

// toggleLayout flips the layout and re-renders the polygons with fresh
// colours. Data, criteria and viewpoint are left alone.
func (a *App) toggleLayout() {
	a.fullWidth = !a.fullWidth
	a.layout()
	a.globe.Recolor()
	a.syncHighlight()
	a.log.Debug("layout toggled", logging.Bool("full_width", a.fullWidth))
}

func (a *App) layout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	if a.fullWidth {
		chrome := lipgloss.Height(a.header(a.width)) + lipgloss.Height(fullWidthHint())
		a.globe.SetSize(a.width, max(a.height-chrome, 1))
		return
	}
	panelW := a.width * 3 / 5
	a.panel.SetSize(panelW, a.height)
	a.globe.SetSize(max(a.width-panelW-1, 1), max(a.height-3, 1))
}

func (a App) header(width int) string {
	banner := styles.Banner.Render(bannerText)
	if !a.fullWidth {
		return banner
	}
	descW := min(width-4, 72)
	return banner + "\n\n" + styles.Description.Width(max(descW, 10)).Render(description) + "\n"
}

func fullWidthHint() string {
	return styles.StatusBar.Render("t shrink globe • q quit")
}

func (a *App) syncHighlight() {
	sel, ok := a.panel.Selected()
	if !ok || a.fullWidth {
		a.globe.SetHighlight(-1)
		return
	}
	i, ok := a.index.Lookup(sel)
	if !ok {
		i = -1
	}
	a.globe.SetHighlight(i)
}

func (a App) View() string {
	if a.session.isClosed() {
		return ""
	}

	if a.fullWidth {
		return lipgloss.JoinVertical(lipgloss.Left,
			a.header(a.width),
			a.globe.View(),
			fullWidthHint(),
		)
	}

	globePane := lipgloss.JoinVertical(lipgloss.Left,
		a.header(a.width),
		a.globe.View(),
		styles.StatusBar.Render("ctrl+t expand globe • ctrl+c quit"),
	)
	panel := lipgloss.NewStyle().Width(a.width * 3 / 5).Render(a.panel.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, " ", globePane)
}

// Run starts the TUI and blocks until it exits.
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(wrapSafe(app, app.log), tea.WithAltScreen())
	_, err := p.Run()
	app.Close()
	return err
}
