// Package ui draws a toolbar in the terminal and turns keys and mouse
// clicks into selections.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/toolbar/internal/state"
	"github.com/vanderheijden86/toolbar/pkg/config"
	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/hooks"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
	"github.com/vanderheijden86/toolbar/pkg/watcher"
)

// Saver persists toolbar state after each selection.
type Saver interface {
	Save(ctx context.Context, name string, snap toolbar.Snapshot) error
}

// blurMsg ends the pressed look of the item clicked seq clicks ago.
type blurMsg struct{ seq int }

// ConfigReloadedMsg carries a config re-read after the file changed.
type ConfigReloadedMsg struct {
	Config config.Config
	Err    error
}

// stateSavedMsg reports the outcome of a background save.
type stateSavedMsg struct{ err error }

// hooksRanMsg reports the hooks run for one click.
type hooksRanMsg struct {
	item    string
	results []hooks.Result
	err     error
}

// eventLog records action callbacks fired by selections.
type eventLog struct {
	last  string
	count int
}

func (e *eventLog) record(name string, active bool) {
	e.count++
	if active {
		e.last = name + " on"
	} else {
		e.last = name + " off"
	}
}

// Model is the bubbletea model for tb.
type Model struct {
	tb     *toolbar.Toolbar
	cfg    config.Config
	layout *Layout
	theme  Theme
	events *eventLog

	saver      Saver
	hooks      *hooks.Executor
	watcher    *watcher.Watcher
	configPath string

	focusID  string
	pressed  string
	blurSeq  int
	width    int
	height   int
	quitting bool

	statusMsg     string
	statusIsError bool

	showHelp bool
	help     viewport.Model

	jumping bool
	jump    textinput.Model
}

// NewModel builds the toolbar described by cfg and wraps it in a model.
func NewModel(cfg config.Config) (Model, error) {
	theme := DefaultTheme(lipgloss.NewRenderer(os.Stdout))
	m := Model{
		cfg:    cfg,
		theme:  theme,
		layout: NewLayout(theme, cfg.UI.MaxLabelWidth),
		events: &eventLog{},
		hooks:  cfg.HookExecutor(),
		width:  80,
		height: 24,
		help:   viewport.New(80, 20),
	}

	tb, err := m.build(cfg)
	if err != nil {
		return Model{}, err
	}
	m.tb = tb

	ti := textinput.New()
	ti.Prompt = "select: "
	ti.Placeholder = "id, index, _first or _last"
	ti.CharLimit = 128
	m.jump = ti

	m.focusID = m.firstFocusable()
	return m, nil
}

// WithSaver makes the model persist state after each selection.
func (m Model) WithSaver(s Saver) Model {
	m.saver = s
	return m
}

// WithWatcher makes the model rebuild the toolbar when the config file at
// path changes. The watcher must already be started.
func (m Model) WithWatcher(w *watcher.Watcher, path string) Model {
	m.watcher = w
	m.configPath = path
	return m
}

// Toolbar returns the toolbar being shown.
func (m Model) Toolbar() *toolbar.Toolbar {
	return m.tb
}

// Stop releases the watcher.
func (m *Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// build creates a toolbar from cfg. Every item gets an action that records
// the click in the status line.
func (m Model) build(cfg config.Config) (*toolbar.Toolbar, error) {
	events := m.events
	entries := toolbar.Entries(cfg.Toolbar.Items...)
	for i := range entries {
		name := entries[i].ID
		if name == "" {
			name = entries[i].Properties.Text
		}
		entries[i].Action = toolbar.ActionFunc(func(_ *toolbar.Toolbar, active bool) bool {
			events.record(name, active)
			return true
		})
	}
	opts := append(cfg.Toolbar.Options(), toolbar.WithNormalizer(m.layout))
	return toolbar.New(entries, opts...)
}

// WatchConfigCmd waits for the next config change and reloads it.
func WatchConfigCmd(w *watcher.Watcher, path string) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		cfg, err := config.LoadFrom(path)
		return ConfigReloadedMsg{Config: cfg, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchConfigCmd(m.watcher, m.configPath)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.help.Height = max(msg.Height-2, 3)
		if m.showHelp {
			m.help.SetContent(renderHelp(msg.Width))
		}
		return m, nil

	case blurMsg:
		if msg.seq == m.blurSeq {
			m.pressed = ""
		}
		return m, nil

	case stateSavedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("State not saved: %v", msg.err))
		}
		return m, nil

	case hooksRanMsg:
		m.hooksRan(msg)
		return m, nil

	case ConfigReloadedMsg:
		m.reload(msg)
		if m.watcher != nil {
			return m, WatchConfigCmd(m.watcher, m.configPath)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.showHelp {
			return m.handleHelpKeys(msg)
		}
		if m.jumping {
			return m.handleJumpKeys(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h", "shift+tab":
		m.moveFocus(-1)
	case "right", "l", "tab":
		m.moveFocus(1)
	case "home", "g":
		if items := m.focusables(); len(items) > 0 {
			m.focusID = items[0].ID
		}
	case "end", "G":
		if items := m.focusables(); len(items) > 0 {
			m.focusID = items[len(items)-1].ID
		}

	case "down", "j":
		if it := m.focused(); it != nil && it.Kind == model.KindExpanderProxy {
			m.tb.ShowExpander(it.Group)
			if exp := m.tb.Expander(it.Group); exp != nil && len(exp.Items()) > 0 {
				m.focusID = exp.Items()[0].ID
			}
		}
	case "up", "k":
		if it := m.focused(); it != nil && it.Kind == model.KindExpanderButton {
			m.tb.HideExpander(it.Group)
			m.focusProxy(it.Group)
		}

	case "enter", " ":
		return m.click(m.focused())

	case "esc":
		if it := m.focused(); it != nil && it.Kind == model.KindExpanderButton {
			m.focusProxy(it.Group)
		}
		m.tb.HideAllExpanders()

	case "L":
		m.tb.SetLabels(!m.tb.Labels())
		m.setStatus(fmt.Sprintf("Labels %s", onOff(m.tb.Labels())))

	case "y":
		if it := m.focused(); it != nil {
			if err := clipboard.WriteAll(it.ID); err != nil {
				m.setError(fmt.Sprintf("Clipboard error: %v", err))
			} else {
				m.setStatus(fmt.Sprintf("Copied %s to clipboard", it.ID))
			}
		}

	case "?":
		m.showHelp = true
		m.help.SetContent(renderHelp(m.width))
		m.help.GotoTop()

	case "/":
		m.jumping = true
		m.jump.SetValue("")
		return m, m.jump.Focus()
	}
	return m, nil
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		m.showHelp = false
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m Model) handleJumpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		m.jumping = false
		m.jump.Blur()
		value := strings.TrimSpace(m.jump.Value())
		if value == "" {
			return m, nil
		}
		ref := toolbar.ParseRef(value)
		it := m.tb.Item(ref)
		if it == nil {
			m.setError(fmt.Sprintf("%v: %s", toolbar.ErrNotFound, ref))
			return m, nil
		}
		m.focusID = it.ID
		return m.click(it)
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.jumping {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	c, ok := m.hit(msg.X, msg.Y)
	if !ok {
		// Clicking outside the toolbar dismisses open expanders.
		m.tb.HideAllExpanders()
		if it := m.focused(); it == nil || it.Kind == model.KindExpanderButton {
			m.focusID = m.firstFocusable()
		}
		return m, nil
	}
	if c.item.Kind == model.KindSeparator {
		return m, nil
	}
	m.focusID = c.item.ID
	return m.click(c.item)
}

// hit returns the cell under the given screen position.
func (m Model) hit(x, y int) (cell, bool) {
	for _, r := range m.rows() {
		for _, c := range r.cells {
			if c.contains(x, y) {
				return c, true
			}
		}
	}
	return cell{}, false
}

// click selects it and schedules the end of its pressed look.
func (m Model) click(it *toolbar.Item) (tea.Model, tea.Cmd) {
	if it == nil || it.Kind == model.KindSeparator {
		return m, nil
	}

	before := m.events.count
	ok, err := m.tb.SelectItem(toolbar.Handle(it))
	switch {
	case err != nil:
		m.setError(err.Error())
		return m, nil
	case !ok:
		m.setError(fmt.Sprintf("%s: selection declined", it.ID))
	case m.events.count > before:
		m.setStatus(m.events.last)
	default:
		m.setStatus(it.ID)
	}

	// Keep keyboard focus on something visible.
	switch it.Kind {
	case model.KindExpanderProxy:
		if exp := m.tb.Expander(it.Group); exp != nil && exp.Visible() && len(exp.Items()) > 0 {
			m.focusID = exp.Items()[0].ID
		}
	case model.KindExpanderButton:
		m.focusProxy(it.Group)
	}

	var cmds []tea.Cmd
	if delay := m.cfg.UI.BlurDelay(); delay > 0 {
		m.blurSeq++
		m.pressed = it.ID
		seq := m.blurSeq
		cmds = append(cmds, tea.Tick(delay, func(time.Time) tea.Msg { return blurMsg{seq: seq} }))
	}
	if m.saver != nil {
		cmds = append(cmds, saveCmd(m.saver, m.cfg.Toolbar.Name, m.tb.Snapshot()))
	}
	if cmd := m.hooksCmd(it); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// hooksCmd runs the hooks configured for a click on it, if any.
func (m Model) hooksCmd(it *toolbar.Item) tea.Cmd {
	proxy := it.Kind == model.KindExpanderProxy
	if len(m.hooks.Matching(it.ID, it.Group, proxy)) == 0 {
		return nil
	}
	exec := m.hooks
	cc := hooks.ClickContext{
		Toolbar:   m.cfg.Toolbar.Name,
		ItemID:    it.ID,
		Group:     it.Group,
		Active:    it.Active(),
		Timestamp: time.Now(),
	}
	return func() tea.Msg {
		before := len(exec.Results())
		err := exec.Run(context.Background(), cc, proxy)
		return hooksRanMsg{item: cc.ItemID, results: exec.Results()[before:], err: err}
	}
}

// hooksRan shows a hook failure, or the output of the last hook that
// printed something.
func (m *Model) hooksRan(msg hooksRanMsg) {
	if msg.err != nil {
		m.setError(fmt.Sprintf("%s: %v", msg.item, msg.err))
		return
	}
	for i := len(msg.results) - 1; i >= 0; i-- {
		r := msg.results[i]
		switch {
		case !r.Success:
			m.setError(fmt.Sprintf("%s: hook %s: %v", msg.item, r.Hook.Name, r.Error))
			return
		case r.Stdout != "":
			m.setStatus(fmt.Sprintf("%s: %s", msg.item, firstLine(r.Stdout)))
			return
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func saveCmd(s Saver, name string, snap toolbar.Snapshot) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return stateSavedMsg{err: s.Save(ctx, name, snap)}
	}
}

// reload swaps in a toolbar built from a re-read config, carrying over the
// current selection.
func (m *Model) reload(msg ConfigReloadedMsg) {
	defer debug.LogEnterExit("ui: reload")()
	if msg.Err != nil {
		m.setError(fmt.Sprintf("Config reload failed: %v", msg.Err))
		return
	}

	m.layout.maxLabel = msg.Config.UI.MaxLabelWidth
	tb, err := m.build(msg.Config)
	if err != nil {
		m.setError(fmt.Sprintf("Config reload failed: %v", err))
		return
	}
	carried := state.EntriesFromSnapshot(m.tb.Snapshot())
	debug.Dump("ui: carried selection", carried)
	state.Apply(tb, carried)

	// Both toolbars share the layout; measure the new one last.
	m.tb.Destroy()
	m.layout.Normalize(tb.Items())

	m.tb = tb
	m.cfg = msg.Config
	m.hooks = msg.Config.HookExecutor()
	if m.tb.Item(toolbar.ByID(m.focusID)) == nil {
		m.focusID = m.firstFocusable()
	}
	debug.Log("ui: reloaded config with %d items", m.tb.Len())
	m.setStatus("Config reloaded")
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusIsError = false
}

func (m *Model) setError(s string) {
	m.statusMsg = s
	m.statusIsError = true
}

// focusables lists the clickable items currently on screen in drawing
// order.
func (m Model) focusables() []*toolbar.Item {
	var out []*toolbar.Item
	for _, r := range m.rows() {
		for _, c := range r.cells {
			if c.item.Kind != model.KindSeparator {
				out = append(out, c.item)
			}
		}
	}
	return out
}

func (m Model) firstFocusable() string {
	for _, it := range m.tb.Items() {
		if it.Kind != model.KindSeparator {
			return it.ID
		}
	}
	return ""
}

// focused returns the focused item if it is still on screen.
func (m Model) focused() *toolbar.Item {
	for _, it := range m.focusables() {
		if it.ID == m.focusID {
			return it
		}
	}
	return nil
}

func (m *Model) moveFocus(delta int) {
	items := m.focusables()
	if len(items) == 0 {
		m.focusID = ""
		return
	}
	idx := -1
	for i, it := range items {
		if it.ID == m.focusID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.focusID = items[0].ID
		return
	}
	idx = (idx + delta + len(items)) % len(items)
	m.focusID = items[idx].ID
}

func (m *Model) focusProxy(group string) {
	if proxy := m.tb.ProxyForGroup(group); proxy != nil {
		m.focusID = proxy.ID
	}
}

func (m Model) rows() []row {
	return m.layout.arrange(m.tb, func(it *toolbar.Item) cellState {
		return cellState{focused: it.ID == m.focusID, pressed: it.ID == m.pressed}
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	defer metrics.Timer(metrics.UIRender)()

	if m.showHelp {
		return m.help.View() + "\n" + m.theme.MutedText.Render("? or esc to close")
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render("tb · " + m.cfg.Toolbar.Name))
	b.WriteString("\n")
	for i, r := range m.rows() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.render())
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	if m.jumping {
		return m.jump.View()
	}
	if m.statusMsg != "" {
		if m.statusIsError {
			return m.theme.ErrorText.Render(m.statusMsg)
		}
		return m.theme.StatusText.Render(m.statusMsg)
	}
	if it := m.focused(); it != nil && it.Display().Tooltip != "" {
		return m.theme.MutedText.Render(truncateRunesHelper(it.Display().Tooltip, m.width, "…"))
	}
	return m.theme.MutedText.Render("? help · q quit")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
