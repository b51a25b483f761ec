// Package browse holds the terminal UI: a spinner shown while a run
// executes and an interactive viewer for its labeled result.
package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobby/internal/model"
)

var errCancelled = errors.New("cancelled")

type runDoneMsg struct {
	result model.Result
	err    error
}

type loaderModel struct {
	title   string
	runFn   func(ctx context.Context) (model.Result, error)
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	result  model.Result
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.spinner.Tick)
}

func (m loaderModel) doRun() tea.Cmd {
	runFn, ctx := m.runFn, m.ctx
	return func() tea.Msg {
		res, err := runFn(ctx)
		return runDoneMsg{result: res, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.title)
}

// RunLoader shows a spinner while runFn executes. It renders inline (no alt
// screen). ctrl+c cancels the context passed to runFn.
func RunLoader(ctx context.Context, title string, runFn func(ctx context.Context) (model.Result, error)) (model.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		title:   title,
		runFn:   runFn,
		ctx:     ctx,
		cancel:  cancel,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33")))),
	}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return model.Result{}, err
	}
	lm := final.(loaderModel)
	return lm.result, lm.err
}
