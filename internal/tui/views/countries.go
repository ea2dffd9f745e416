package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rendis/gofind/internal/engine/filter"
	"github.com/rendis/gofind/internal/engine/storage"
	"github.com/rendis/gofind/internal/model"
	"github.com/rendis/gofind/internal/tui/styles"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusSearch
	focusCard
)

const (
	allRegions   = "All Regions"
	allLanguages = "All Languages"
)

// RefreshDetail asks the owner to re-fetch one country by name.
type RefreshDetail struct {
	Name string
}

// CountriesModel is the side panel: search box, region and language
// selectors, the filtered table and a detail card.
type CountriesModel struct {
	countries []model.Country
	criteria  model.FilterCriteria
	view      filter.View
	table     table.Model
	search    textinput.Model
	focus     focusArea
	selected  int
	width     int
	height    int

	// Load state
	countriesLoaded bool
	countriesErr    error
	boundariesErr   error

	// Detail card
	detail      *model.Country // refreshed record for the selected row, if any
	detailErr   error
	cardScrollY int
	cardLines   []string
}

func NewCountriesModel() CountriesModel {
	search := textinput.New()
	search.Placeholder = "Search countries..."
	search.CharLimit = 60

	m := CountriesModel{
		search:   search,
		selected: -1,
	}
	m.recompute()
	return m
}

// SetCountries replaces the collection and recomputes the derived view.
func (m *CountriesModel) SetCountries(countries []model.Country) {
	m.countries = countries
	m.countriesLoaded = true
	m.countriesErr = nil
	m.recompute()
}

// SetLoadError records a failed fetch for the status line. A nil error clears it.
func (m *CountriesModel) SetLoadError(dataset string, err error) {
	switch dataset {
	case "countries":
		m.countriesErr = err
	case "boundaries":
		m.boundariesErr = err
	}
}

// SetDetail applies the result of a RefreshDetail request. Stale results for
// a row that is no longer selected are dropped.
func (m *CountriesModel) SetDetail(name string, found []model.Country, err error) {
	sel, ok := m.Selected()
	if !ok || sel.Name.Common != name {
		return
	}
	m.detailErr = err
	m.detail = nil
	if err == nil {
		for i := range found {
			if strings.EqualFold(found[i].Name.Common, name) {
				m.detail = &found[i]
				break
			}
		}
		if m.detail == nil && len(found) > 0 {
			m.detail = &found[0]
		}
	}
	m.cacheDetailContent()
}

func (m CountriesModel) Criteria() model.FilterCriteria {
	return m.criteria
}

// Derived returns the filtered list and option sets currently shown.
func (m CountriesModel) Derived() filter.View {
	return m.view
}

// Selected returns the country under the table cursor.
func (m CountriesModel) Selected() (model.Country, bool) {
	if m.selected < 0 || m.selected >= len(m.view.Filtered) {
		return model.Country{}, false
	}
	return m.view.Filtered[m.selected], true
}

// Searching reports whether keystrokes currently go to the search box.
func (m CountriesModel) Searching() bool {
	return m.focus == focusSearch
}

func (m *CountriesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.buildTable()
}

// recompute derives the filtered list and option sets from scratch.
func (m *CountriesModel) recompute() {
	m.view = filter.ComputeView(m.countries, m.criteria)
	if len(m.view.Filtered) > 0 {
		m.selected = 0
	} else {
		m.selected = -1
	}
	m.buildTable()
	m.detail = nil
	m.detailErr = nil
	m.cacheDetailContent()
}

func (m *CountriesModel) setCriteria(c model.FilterCriteria) {
	if c == m.criteria {
		return
	}
	m.criteria = c
	m.recompute()
}

func (m CountriesModel) Update(msg tea.Msg) (CountriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		switch m.focus {
		case focusTable:
			c := m.criteria
			switch key {
			case "/", "tab":
				m.focus = focusSearch
				m.search.Focus()
				m.table.SetStyles(m.unfocusedTableStyles())
				return m, textinput.Blink
			case "r":
				c.Region = filter.Cycle(filter.Options(m.view.Regions), c.Region, 1)
				m.setCriteria(c)
				return m, nil
			case "R":
				c.Region = filter.Cycle(filter.Options(m.view.Regions), c.Region, -1)
				m.setCriteria(c)
				return m, nil
			case "l":
				c.Language = filter.Cycle(filter.Options(m.view.Languages), c.Language, 1)
				m.setCriteria(c)
				return m, nil
			case "L":
				c.Language = filter.Cycle(filter.Options(m.view.Languages), c.Language, -1)
				m.setCriteria(c)
				return m, nil
			case "x":
				m.search.SetValue("")
				m.setCriteria(model.FilterCriteria{})
				return m, nil
			case "1":
				m.focus = focusCard
				m.table.SetStyles(m.unfocusedTableStyles())
				return m, nil
			case "enter":
				if sel, ok := m.Selected(); ok {
					return m, func() tea.Msg { return RefreshDetail{Name: sel.Name.Common} }
				}
				return m, nil
			}

		case focusSearch:
			switch key {
			case "esc", "enter", "tab":
				m.focus = focusTable
				m.search.Blur()
				m.table.SetStyles(m.focusedTableStyles())
				return m, nil
			}

		case focusCard:
			maxScroll := len(m.cardLines) - m.cardHeight()
			if maxScroll < 0 {
				maxScroll = 0
			}
			switch key {
			case "esc", "1":
				m.focus = focusTable
				m.table.SetStyles(m.focusedTableStyles())
			case "up", "k":
				if m.cardScrollY > 0 {
					m.cardScrollY--
				}
			case "down", "j":
				if m.cardScrollY < maxScroll {
					m.cardScrollY++
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTable:
		m.table, cmd = m.table.Update(msg)
		cursor := m.table.Cursor()
		if cursor != m.selected && cursor < len(m.view.Filtered) {
			m.selected = cursor
			m.cardScrollY = 0
			m.detail = nil
			m.detailErr = nil
			m.cacheDetailContent()
		}
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
		c := m.criteria
		c.Search = m.search.Value()
		m.setCriteria(c)
	}

	return m, cmd
}

func (m *CountriesModel) cacheDetailContent() {
	sel, ok := m.Selected()
	if !ok {
		m.cardLines = nil
		return
	}
	if m.detail != nil {
		sel = *m.detail
	}
	m.cardLines = buildCardLines(sel)
	m.cardScrollY = 0
}

var numbers = message.NewPrinter(language.English)

func buildCardLines(c model.Country) []string {
	var lines []string

	title := c.Name.Common
	if c.Flag != "" {
		title = c.Flag + " " + title
	}
	lines = append(lines, title)
	if c.Name.Official != "" && c.Name.Official != c.Name.Common {
		lines = append(lines, c.Name.Official)
	}
	lines = append(lines, "")

	addRow := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-11s %s", label, value))
		}
	}

	addRow("Code:", c.CCA3)
	addRow("Capital:", strings.Join(c.Capital, ", "))
	region := c.Region
	if c.Subregion != "" {
		region += " / " + c.Subregion
	}
	addRow("Region:", region)
	if c.Population > 0 {
		addRow("Population:", numbers.Sprintf("%d", c.Population))
	}
	addRow("Languages:", storage.JoinLanguages(c))
	if lat, lng, ok := c.Coordinates(); ok {
		addRow("Coords:", fmt.Sprintf("%.2f, %.2f", lat, lng))
	}

	return lines
}

func (m *CountriesModel) buildTable() {
	nameW, regionW, popW := m.columnWidths()

	columns := []table.Column{
		{Title: "Country", Width: nameW},
		{Title: "Region", Width: regionW},
		{Title: "Population", Width: popW},
	}

	rows := make([]table.Row, len(m.view.Filtered))
	for i, c := range m.view.Filtered {
		rows[i] = table.Row{
			truncate(c.Name.Common, nameW),
			truncate(c.Region, regionW),
			numbers.Sprintf("%d", c.Population),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(m.focus == focusTable),
		table.WithHeight(m.tableHeight()),
	)
	if m.focus == focusTable {
		t.SetStyles(m.focusedTableStyles())
	} else {
		t.SetStyles(m.unfocusedTableStyles())
	}
	if m.selected >= 0 && m.selected < len(rows) {
		t.SetCursor(m.selected)
	}
	m.table = t
}

func (m CountriesModel) columnWidths() (name, region, pop int) {
	name, region, pop = 22, 10, 13
	if inner := m.width - 8; inner > name+region+pop {
		name += inner - (name + region + pop)
	}
	return name, region, pop
}

func (m CountriesModel) tableHeight() int {
	h := m.height/2 - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m CountriesModel) cardHeight() int {
	h := m.height - m.tableHeight() - 14
	if h < 4 {
		h = 4
	}
	return h
}

func (m CountriesModel) focusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

func (m CountriesModel) unfocusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Muted)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(lipgloss.Color("#333333")).
		Bold(false)
	return s
}

func optionLabel(value, all string) string {
	if value == "" {
		return all
	}
	return value
}

func (m CountriesModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Countries: %d", len(m.countries))))
	if len(m.view.Filtered) != len(m.countries) {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf(" (showing %d)", len(m.view.Filtered))))
	}
	b.WriteString("\n")

	// Search
	searchStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	if m.focus == focusSearch {
		searchStyle = lipgloss.NewStyle().Foreground(styles.Primary)
	}
	b.WriteString(searchStyle.Render("Search: "))
	b.WriteString(m.search.View())
	b.WriteString("\n")

	// Selectors
	b.WriteString(styles.Label.Render("[r] Region"))
	b.WriteString(styles.ActiveItem.Render(optionLabel(m.criteria.Region, allRegions)))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("[l] Language"))
	b.WriteString(styles.ActiveItem.Render(optionLabel(m.criteria.Language, allLanguages)))
	b.WriteString("\n\n")

	// Table
	switch {
	case !m.countriesLoaded && m.countriesErr == nil:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("Loading countries..."))
	case len(m.view.Filtered) == 0 && m.countriesLoaded:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("No countries match"))
	default:
		b.WriteString(m.table.View())
	}
	b.WriteString("\n\n")

	// Detail card
	cardBorder := styles.Border
	if m.focus == focusCard {
		cardBorder = styles.FocusedBorder
	}
	cardW := m.width - 4
	if cardW < 30 {
		cardW = 30
	}
	b.WriteString(cardBorder.Width(cardW).Render(m.viewCard(cardW-2, m.cardHeight())))
	b.WriteString("\n")

	// Load indicator
	if m.countriesErr != nil {
		b.WriteString(styles.ErrorText.Render("countries unavailable: " + truncate(m.countriesErr.Error(), cardW-24)))
		b.WriteString("\n")
	}
	if m.boundariesErr != nil {
		b.WriteString(styles.WarningText.Render("boundaries unavailable: " + truncate(m.boundariesErr.Error(), cardW-25)))
		b.WriteString("\n")
	}

	var statusText string
	switch m.focus {
	case focusTable:
		statusText = "↑↓ navigate • / search • r/R region • l/L language • x clear • enter refresh • 1 card"
	case focusSearch:
		statusText = "type to search • esc back"
	case focusCard:
		statusText = "↑↓ scroll • esc back to table"
	}
	b.WriteString(styles.StatusBar.Render(statusText))

	return b.String()
}

func (m CountriesModel) viewCard(w, h int) string {
	if len(m.cardLines) == 0 {
		return lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("Select a country\nto view details")
	}

	lines := m.cardLines
	scrollY := m.cardScrollY
	if scrollY > len(lines)-h {
		scrollY = len(lines) - h
	}
	if scrollY < 0 {
		scrollY = 0
	}
	end := scrollY + h
	if end > len(lines) {
		end = len(lines)
	}
	visible := lines[scrollY:end]

	var sb strings.Builder
	valStyle := lipgloss.NewStyle().Foreground(styles.Text)
	for i, line := range visible {
		if scrollY+i == 0 {
			sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Render(truncate(line, w)))
		} else {
			sb.WriteString(valStyle.Render(truncate(line, w)))
		}
		if i < len(visible)-1 {
			sb.WriteString("\n")
		}
	}

	if m.detailErr != nil {
		sb.WriteString("\n")
		sb.WriteString(styles.WarningText.Render(truncate("refresh failed: "+m.detailErr.Error(), w)))
	} else if m.detail != nil {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Render("refreshed"))
	}

	if scrollY > 0 || end < len(lines) {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf("  [%d/%d]", scrollY+1, len(lines))))
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "…")
}
