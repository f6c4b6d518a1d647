// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package tui is the interactive terminal front end for question answering.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legalease-ai/legalease/internal/rag"
	"github.com/legalease-ai/legalease/internal/store"
)

// AskFunc answers one question. *rag.Chain's Run satisfies it.
type AskFunc func(ctx context.Context, question string) (*rag.Response, error)

// --- lipgloss styles ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Exchange is one answered (or failed) question.
type Exchange struct {
	Question string
	Answer   string
	Sources  []string
	Err      error
}

type answerMsg struct {
	question string
	resp     *rag.Response
	err      error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctx      context.Context
	ask      AskFunc
	title    string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	history  []Exchange
	pending  bool
	width    int
	height   int
}

// New returns a chat model that sends each submitted line to ask.
func New(ctx context.Context, title string, ask AskFunc) Model {
	in := textinput.New()
	in.Placeholder = "Ask about the indexed documents"
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		ctx:      ctx,
		ask:      ask,
		title:    title,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		// Title, blank line, input and help.
		m.viewport.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.pending = false
		ex := Exchange{Question: msg.question, Err: msg.err}
		if msg.err == nil {
			ex.Answer = msg.resp.Response
			ex.Sources = sources(msg.resp.Context)
		}
		m.history = append(m.history, ex)
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.pending {
		return m, nil
	}
	m.input.SetValue("")
	m.pending = true

	ctx, ask := m.ctx, m.ask
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := ask(ctx, question)
			return answerMsg{question: question, resp: resp, err: err}
		},
	)
}

func (m *Model) refresh() {
	m.viewport.SetContent(Transcript(m.history, m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	if m.pending {
		b.WriteString(m.spinner.View() + " Searching clauses…\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(helpStyle.Render("enter: ask • esc: quit"))
	return b.String()
}

// History returns the exchanges so far.
func (m Model) History() []Exchange {
	return m.history
}

// Transcript renders exchanges for display, wrapping answers at width.
func Transcript(history []Exchange, width int) string {
	if len(history) == 0 {
		return helpStyle.Render("No questions yet.")
	}
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("Q: "+ex.Question) + "\n")
		if ex.Err != nil {
			b.WriteString(errorStyle.Render("Error: "+ex.Err.Error()) + "\n")
			continue
		}
		b.WriteString(wrap.Render(ex.Answer) + "\n")
		for _, s := range ex.Sources {
			b.WriteString(sourceStyle.Render("  "+s) + "\n")
		}
	}
	return b.String()
}

func sources(results []store.RetrievalResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		label := fmt.Sprintf("#%d", r.Fragment.ID)
		if doc, ok := r.Fragment.Metadata[store.MetaDocumentTitle].(string); ok && doc != "" {
			label += " " + doc
		}
		if marker, ok := r.Fragment.Metadata[store.MetaClauseMarker].(string); ok && marker != "" {
			label += " " + marker
		}
		out = append(out, fmt.Sprintf("[%s] score %.3f", label, r.Score))
	}
	return out
}

// Run starts the chat program and blocks until the user quits.
func Run(ctx context.Context, title string, ask AskFunc, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, title, ask),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
