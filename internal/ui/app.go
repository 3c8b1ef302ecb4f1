// Package ui renders the Bubble Tea application UI.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/kpumuk/lazycopy/internal/clipboard"
	"github.com/kpumuk/lazycopy/internal/devtools"
	"github.com/kpumuk/lazycopy/internal/history"
	"github.com/kpumuk/lazycopy/internal/ui/components/entrylist"
	"github.com/kpumuk/lazycopy/internal/ui/components/messagebox"
	"github.com/kpumuk/lazycopy/internal/ui/components/preview"
	"github.com/kpumuk/lazycopy/internal/ui/components/statusbar"
	"github.com/kpumuk/lazycopy/internal/ui/format"
	"github.com/kpumuk/lazycopy/internal/ui/theme"
)

const (
	copyTimeout    = 5 * time.Second
	historyTimeout = 3 * time.Second
	historyShown   = 50
)

type mode int

const (
	modeEntries mode = iota
	modeHistory
	modeDiagnostics
)

func (m mode) title() string {
	switch m {
	case modeHistory:
		return "History"
	case modeDiagnostics:
		return "Diagnostics"
	default:
		return "Entries"
	}
}

// copiedMsg carries the outcome of a copy request.
type copiedMsg struct {
	text   string
	result clipboard.Result
	// output holds OSC 52 sequences the program must write.
	output string
}

// stateMsg is sent whenever the copier changes confirmation state.
type stateMsg struct {
	state clipboard.State
}

// historyMsg carries freshly loaded history items.
type historyMsg struct {
	items []history.Item
	err   error
}

// historyRecordedMsg is sent after a copy was written to history.
type historyRecordedMsg struct {
	err error
}

// Options configures the application.
type Options struct {
	Entries    []string
	Provider   clipboard.Provider
	ResetDelay time.Duration
	Reporter   clipboard.Reporter
	History    *history.Store
	Tracker    *devtools.Tracker
	Version    string
}

// App is the main application model.
type App struct {
	keys        KeyMap
	width       int
	height      int
	ready       bool
	mode        mode
	entries     entrylist.Model
	historyList entrylist.Model
	diagnostics entrylist.Model
	preview     preview.Model
	status      statusbar.Model
	styles      theme.Styles
	copier      *clipboard.Copier
	output      *programOutput
	states      chan clipboard.State
	history     *history.Store
	historyErr  error
	tracker     *devtools.Tracker
	version     string
}

// New creates a new App instance.
func New(opts Options) App {
	styles := theme.NewStyles()
	keys := DefaultKeyMap()

	states := make(chan clipboard.State, 16)
	var reporters []clipboard.Reporter
	if opts.Tracker != nil {
		reporters = append(reporters, opts.Tracker)
	}
	if opts.Reporter != nil {
		reporters = append(reporters, opts.Reporter)
	}
	output := newProgramOutput(opts.Provider)
	copier := clipboard.New(output,
		clipboard.WithResetDelay(opts.ResetDelay),
		clipboard.WithReporter(clipboard.MultiReporter(reporters...)),
		clipboard.WithOnChange(func(s clipboard.State) {
			// The UI reads the authoritative state from the copier, so a
			// dropped notification only delays a redraw.
			select {
			case states <- s:
			default:
			}
		}),
	)

	listStyles := entrylist.Styles{
		Text:     styles.Text,
		Muted:    styles.Muted,
		Selected: styles.Selected,
	}
	items := make([]entrylist.Item, len(opts.Entries))
	for i, text := range opts.Entries {
		items[i] = entrylist.Item{Label: text}
	}

	a := App{
		keys: keys,
		entries: entrylist.New(
			entrylist.WithStyles(listStyles),
			entrylist.WithItems(items),
			entrylist.WithEmptyMessage("No entries"),
		),
		historyList: entrylist.New(
			entrylist.WithStyles(listStyles),
			entrylist.WithEmptyMessage("History is empty"),
		),
		diagnostics: entrylist.New(
			entrylist.WithStyles(listStyles),
			entrylist.WithEmptyMessage("Nothing recorded yet"),
		),
		preview: preview.New(
			preview.WithStyles(preview.Styles{
				Text:        styles.Text,
				Key:         styles.JSONKey,
				String:      styles.JSONString,
				Number:      styles.JSONNumber,
				Bool:        styles.JSONBool,
				Null:        styles.Muted,
				Punctuation: styles.JSONPunctuation,
				Muted:       styles.Muted,
			}),
		),
		status: statusbar.New(
			statusbar.WithStyles(statusbar.Styles{
				Bar:     styles.StatusBar,
				Key:     styles.HintKey,
				Label:   styles.HintLabel,
				Copied:  styles.Copied,
				Failure: styles.Failure,
			}),
			statusbar.WithHints(keys.ShortHelp()),
		),
		styles:  styles,
		copier:  copier,
		output:  output,
		states:  states,
		history: opts.History,
		tracker: opts.Tracker,
		version: opts.Version,
	}
	a.syncPreview()
	return a
}

// Copier returns the copier owned by the app.
func (a App) Copier() *clipboard.Copier {
	return a.copier
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForState(),
		a.loadHistoryCmd(),
	)
}

// waitForState blocks until the copier reports a transition.
func (a App) waitForState() tea.Cmd {
	states := a.states
	return func() tea.Msg {
		return stateMsg{state: <-states}
	}
}

func (a App) copyCmd(text string) tea.Cmd {
	copier := a.copier
	output := a.output
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), copyTimeout)
		defer cancel()
		result := copier.Copy(ctx, text)
		return copiedMsg{text: text, result: result, output: output.take()}
	}
}

func (a App) loadHistoryCmd() tea.Cmd {
	store := a.history
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		ctx = devtools.WithOrigin(ctx, "ui.loadHistory")
		items, err := store.Recent(ctx, historyShown)
		return historyMsg{items: items, err: err}
	}
}

func (a App) recordHistoryCmd(text string, strategy clipboard.StrategyKind) tea.Cmd {
	store := a.history
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		ctx = devtools.WithOrigin(ctx, "ui.recordHistory")
		err := store.Record(ctx, history.Item{Text: text, Strategy: strategy.String()})
		return historyRecordedMsg{err: err}
	}
}

func (a App) clearHistoryCmd() tea.Cmd {
	store := a.history
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		ctx = devtools.WithOrigin(ctx, "ui.clearHistory")
		if err := store.Clear(ctx); err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case stateMsg:
		a.status.SetCopied(a.copier.JustCopied())
		a.refreshDiagnostics()
		cmds = append(cmds, a.waitForState())

	case copiedMsg:
		if msg.output != "" {
			cmds = append(cmds, tea.Raw(msg.output))
		}
		a.status.SetCopied(a.copier.JustCopied())
		if msg.result.OK() {
			a.status.SetFailure("")
			cmds = append(cmds, a.recordHistoryCmd(msg.text, msg.result.Strategy))
		} else {
			a.status.SetFailure("Copy failed: " + msg.result.Err.Error())
		}
		a.refreshDiagnostics()

	case historyMsg:
		a.historyErr = msg.err
		if msg.err == nil {
			items := make([]entrylist.Item, len(msg.items))
			for i, item := range msg.items {
				items[i] = entrylist.Item{Label: item.Text, Meta: format.DurationSince(item.CopiedAt)}
			}
			a.historyList.SetItems(items)
		}
		a.refreshDiagnostics()
		a.syncPreview()

	case historyRecordedMsg:
		if msg.err != nil {
			a.historyErr = msg.err
		} else {
			cmds = append(cmds, a.loadHistoryCmd())
		}
		a.refreshDiagnostics()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.copier.Close()
			return a, tea.Quit

		case key.Matches(msg, a.keys.Copy):
			if item, ok := a.activeList().Selected(); ok {
				cmds = append(cmds, a.copyCmd(item.Text()))
			}

		case key.Matches(msg, a.keys.Entries):
			a.setMode(modeEntries)

		case key.Matches(msg, a.keys.History):
			a.setMode(modeHistory)
			cmds = append(cmds, a.loadHistoryCmd())

		case key.Matches(msg, a.keys.Diagnostics):
			a.setMode(modeDiagnostics)
			a.refreshDiagnostics()

		case key.Matches(msg, a.keys.Refresh):
			a.refreshDiagnostics()
			cmds = append(cmds, a.loadHistoryCmd())

		case key.Matches(msg, a.keys.ClearHist):
			if a.mode == modeHistory {
				cmds = append(cmds, a.clearHistoryCmd())
			}

		default:
			list, cmd := a.activeList().Update(msg)
			a.setActiveList(list)
			cmds = append(cmds, cmd)
		}
		a.syncPreview()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
	}

	return a, tea.Batch(cmds...)
}

func (a *App) setMode(m mode) {
	a.mode = m
	a.status.SetHints(a.keys.helpFor(m))
}

func (a *App) activeList() *entrylist.Model {
	switch a.mode {
	case modeHistory:
		return &a.historyList
	case modeDiagnostics:
		return &a.diagnostics
	default:
		return &a.entries
	}
}

func (a *App) setActiveList(list entrylist.Model) {
	*a.activeList() = list
}

func (a *App) syncPreview() {
	item, ok := a.activeList().Selected()
	if !ok {
		a.preview.SetText("")
		return
	}
	a.preview.SetText(item.Text())
}

func (a *App) refreshDiagnostics() {
	if a.tracker == nil {
		return
	}
	logs := a.tracker.LogEntries()
	items := make([]entrylist.Item, 0, len(logs))
	// Newest first.
	for i := len(logs) - 1; i >= 0; i-- {
		entry := logs[i]
		detail := entry.Entry.Detail
		label := fmt.Sprintf("%s %-6s %s", entry.Time.Format("15:04:05"), entry.Entry.Kind, entry.Origin)
		if detail != "" {
			label += " " + detail
		}
		var meta string
		if entry.Entry.Duration > 0 {
			meta = devtools.FormatDuration(entry.Entry.Duration)
		}
		items = append(items, entrylist.Item{Label: label, Value: detail, Meta: meta})
	}
	a.diagnostics.SetItems(items)
}

func (a *App) bodySize() (listWidth, previewWidth, height int) {
	height = max(a.height-2, 0)
	listWidth = max(a.width*2/5, min(a.width, 20))
	previewWidth = max(a.width-listWidth-1, 0)
	return listWidth, previewWidth, height
}

func (a *App) layout() {
	listWidth, previewWidth, height := a.bodySize()
	a.entries.SetSize(listWidth, height)
	a.historyList.SetSize(listWidth, height)
	a.diagnostics.SetSize(listWidth, height)
	a.preview.SetSize(previewWidth, height)
	a.status.SetWidth(a.width)
}

// View implements tea.Model.
func (a App) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if !a.ready {
		v.SetContent("Initializing...")
		return v
	}

	v.SetContent(a.render())
	return v
}

func (a App) render() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(),
		a.renderBody(),
		a.status.View(),
	)
}

func (a App) renderHeader() string {
	left := a.styles.Title.Render("lazycopy") + " " + a.styles.Text.Render(a.mode.title())

	meta := []string{"reset " + a.copier.ResetDelay().String()}
	if a.history != nil {
		meta = append(meta, a.history.DisplayRedisURL())
	} else {
		meta = append(meta, "history off")
	}
	if a.version != "" {
		meta = append(meta, a.version)
	}
	right := a.styles.Meta.Render(strings.Join(meta, " · "))

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, a.width, "")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) renderBody() string {
	listWidth, previewWidth, height := a.bodySize()
	if height == 0 {
		return ""
	}

	if box, ok := a.emptyState(); ok {
		return messagebox.Render(messagebox.Styles{
			Title:  a.styles.Title,
			Muted:  a.styles.Muted,
			Border: a.styles.FocusBorder,
		}, a.mode.title(), box, a.width, height)
	}

	sep := strings.TrimSuffix(strings.Repeat(a.styles.Border.Render("│")+"\n", height), "\n")
	var list string
	switch a.mode {
	case modeHistory:
		list = a.historyList.View()
	case modeDiagnostics:
		list = a.diagnostics.View()
	default:
		list = a.entries.View()
	}
	if previewWidth == 0 {
		return lipgloss.NewStyle().Width(listWidth).Render(list)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, sep, a.preview.View())
}

// emptyState returns the message shown instead of an empty list.
func (a App) emptyState() (string, bool) {
	switch a.mode {
	case modeEntries:
		if len(a.entries.Items()) == 0 {
			return "No entries to copy\nPass text as arguments, use --file, or pipe lines into stdin", true
		}
	case modeHistory:
		if a.history == nil {
			return "Copy history is disabled\nStart with --redis redis://localhost:6379/0 to enable it", true
		}
		if a.historyErr != nil {
			return "Cannot reach Redis\n" + a.historyErr.Error(), true
		}
	}
	return "", false
}
