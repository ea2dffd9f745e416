package tui

import (
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rendis/gofind/internal/logging"
)

// safeModel keeps a panic in Update or View from tearing down the terminal.
// The inner model keeps its last good state.
type safeModel struct {
	m   tea.Model
	log logging.Logger
}

func wrapSafe(m tea.Model, log logging.Logger) safeModel {
	if log == nil {
		log = logging.NewNop()
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic recovered",
				logging.String("where", "tui.update"),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
			tm = s
			cmd = nil
		}
	}()

	inner, c := s.m.Update(msg)
	if sm, ok := inner.(safeModel); ok {
		s = sm
	} else {
		s.m = inner
	}
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic recovered",
				logging.String("where", "tui.view"),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
			out = "Unexpected error (see logs)"
		}
	}()
	return s.m.View()
}

var _ tea.Model = safeModel{}
