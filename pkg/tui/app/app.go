// Package teaui hosts the Bubble Tea program for the beho TUI. The root
// model picks the onboarding, lock or notes screen from the session state
// and forwards user activity to the session's idle monitor.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"tableflip.dev/beho/pkg/enroll"
	"tableflip.dev/beho/pkg/idle"
	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/pin"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
	"tableflip.dev/beho/pkg/tui/components/help"
	"tableflip.dev/beho/pkg/tui/theme"
	"tableflip.dev/beho/pkg/tui/ui"
	"tableflip.dev/beho/pkg/tui/views/onboarding"
	"tableflip.dev/beho/pkg/tui/views/pinpad"
	"tableflip.dev/beho/pkg/tui/views/settings"
	vaultview "tableflip.dev/beho/pkg/tui/views/vault"
	"tableflip.dev/beho/pkg/vault"
)

// ReminderInterval is how often due reminders are swept.
const ReminderInterval = 15 * time.Second

type mode int

const (
	modeNormal mode = iota
	modeNewNote
	modeVault
	modeSettings
	modeHelp
)

// Options wires the model to the session and its collaborators.
type Options struct {
	Session *session.Manager
	Notes   *note.Service
	// Store is watched for changes made by other processes. Optional.
	Store  store.Store
	Clock  clockwork.Clock
	Logger *zap.Logger
}

// Model is the root UI model.
type Model struct {
	ctx   context.Context
	sess  *session.Manager
	notes *note.Service
	store store.Store
	clock clockwork.Clock
	log   *zap.Logger
	theme theme.Theme

	termWidth  int
	termHeight int

	mode     mode
	status   string
	list     []note.Note
	cursor   int
	opened   *note.Note
	newInput textinput.Model

	onboarding *onboarding.Model
	lock       *pinpad.Model
	gate       *vault.Gate
	vault      *vaultview.Model
	settings   *settings.Model
	help       *help.Model

	events      <-chan session.Event
	unsubscribe func()
	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New constructs the root model. The session must already be loaded.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	th := theme.Default()

	ti := textinput.New()
	ti.Placeholder = "Note title"
	ti.CharLimit = 256
	ti.Prompt = "new note > "

	m := &Model{
		ctx:      ctx,
		sess:     opts.Session,
		notes:    opts.Notes,
		store:    opts.Store,
		clock:    clock,
		log:      log,
		theme:    th,
		newInput: ti,
	}
	m.lock = pinpad.New(pin.NewEnterPrompt("Enter PIN", m.sess.Verify, clock), th)
	m.gate = vault.NewGate(m.sess.Verify, m.notes, vault.WithClock(clock), vault.WithLogger(log.Named("vault")))
	m.vault = vaultview.New(ctx, m.gate, th)
	m.settings = settings.New(m.sess, clock, th)
	m.help = help.New(th, 80, 24)
	m.events, m.unsubscribe = m.sess.Subscribe()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSession(), m.loadNotes(), m.reminderTick()}
	if cmd := m.ensureOnboarding(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.store != nil {
		cmds = append(cmds, startWatchCmd(m.ctx, m.store))
	}
	return tea.Batch(cmds...)
}

// Close releases the session subscription and the store watch.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.stopWatch()
	m.gate.Close()
}

type sessionEventMsg struct {
	event session.Event
}

type sessionClosedMsg struct{}

type notesLoadedMsg struct {
	notes []note.Note
	err   error
}

type reminderTickMsg struct{}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return sessionEventMsg{event: ev}
		}
		return sessionClosedMsg{}
	}
}

func (m *Model) loadNotes() tea.Cmd {
	svc := m.notes
	ctx := m.ctx
	return func() tea.Msg {
		notes, err := svc.Visible(ctx)
		return notesLoadedMsg{notes: notes, err: err}
	}
}

func (m *Model) reminderTick() tea.Cmd {
	return tea.Tick(ReminderInterval, func(time.Time) tea.Msg { return reminderTickMsg{} })
}

func startWatchCmd(parent context.Context, st store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := st.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// handleWatchEvent reacts to a change written by another process.
func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	switch {
	case ev.Type == store.EventStoreInvalidated:
		m.reloadSession()
		*cmds = append(*cmds, m.loadNotes())
	case ev.Key == store.KeyNotes:
		*cmds = append(*cmds, m.loadNotes())
	case isSessionKey(ev.Key):
		m.reloadSession()
	}
}

func isSessionKey(key string) bool {
	switch key {
	case store.KeyPIN, store.KeyOnboardingComplete, store.KeyUserProfile,
		store.KeyBiometricEnabled, store.KeyAutoLockDuration:
		return true
	}
	return false
}

func (m *Model) reloadSession() {
	if err := m.sess.Reload(); err != nil {
		m.log.Warn("session reload failed", zap.Error(err))
		m.setError(err)
	}
}

// trackActivity maps terminal input onto idle monitor signals.
func (m *Model) trackActivity(msg tea.Msg) {
	switch msg.(type) {
	case tea.KeyPressMsg:
		m.sess.Activity(idle.KeyPress)
	case tea.MouseClickMsg:
		m.sess.Activity(idle.PointerDown)
	case tea.MouseMotionMsg:
		m.sess.Activity(idle.PointerMove)
	case tea.MouseWheelMsg:
		m.sess.Activity(idle.Scroll)
	case tea.FocusMsg:
		m.sess.Visibility(true)
	case tea.BlurMsg:
		m.sess.Visibility(false)
	}
}

func (m *Model) handleSessionEvent(ev session.Event, cmds *[]tea.Cmd) {
	switch ev.Type {
	case session.EventLocked:
		m.dismissOverlays()
		m.lock.Prompt.Reset()
		if ev.Reason == "idle" {
			m.setStatus("Locked after inactivity")
		} else {
			m.setStatus("")
		}
	case session.EventUnlocked:
		m.setStatus("")
		*cmds = append(*cmds, m.loadNotes())
	case session.EventEnrolled:
		m.onboarding = nil
		if snap := m.sess.Snapshot(); snap.Profile != nil {
			m.setStatus("Welcome, " + snap.Profile.FirstName)
		}
		*cmds = append(*cmds, m.loadNotes())
	case session.EventReset, session.EventReloaded:
		if m.sess.State() != session.StateUnlocked {
			m.dismissOverlays()
		}
		if cmd := m.ensureOnboarding(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
		*cmds = append(*cmds, m.loadNotes())
	}
}

// ensureOnboarding starts a fresh wizard whenever the session needs one
// and the current wizard is missing or finished.
func (m *Model) ensureOnboarding() tea.Cmd {
	if m.sess.State() != session.StateOnboarding {
		return nil
	}
	if m.onboarding == nil || m.onboarding.Flow().Step() == enroll.StepDone {
		m.onboarding = onboarding.New(m.theme)
		m.onboarding.SetSize(m.termWidth, m.termHeight)
		return m.onboarding.Init()
	}
	return nil
}

func (m *Model) overlays() []ui.Overlay {
	return []ui.Overlay{m.vault, m.settings}
}

func (m *Model) dismissOverlays() {
	for _, o := range m.overlays() {
		if o.IsOpen() {
			o.Close()
		}
	}
	m.newInput.Blur()
	m.newInput.SetValue("")
	m.mode = modeNormal
}

func (m *Model) setStatus(s string) {
	m.status = s
}

func (m *Model) setError(err error) {
	m.status = "ERR: " + err.Error()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	m.trackActivity(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case sessionEventMsg:
		m.handleSessionEvent(msg.event, &cmds)
		cmds = append(cmds, m.waitForSession())
	case sessionClosedMsg:
		m.events = nil
	case notesLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			break
		}
		m.list = msg.notes
		if m.cursor >= len(m.list) {
			m.cursor = len(m.list) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
	case reminderTickMsg:
		m.sess.CheckIdle()
		m.sweepReminders()
		cmds = append(cmds, m.reminderTick())
	case watchStartedMsg:
		if msg.err != nil {
			m.log.Warn("store watch unavailable", zap.Error(msg.err))
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
	case pinpad.RedrawMsg:
	case onboarding.CompletedMsg:
		if err := m.sess.CompleteEnrollment(msg.Result); err != nil {
			m.setError(err)
			m.onboarding = nil
			if cmd := m.ensureOnboarding(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	case vaultview.SelectedMsg:
		m.mode = modeNormal
		if n, err := m.notes.Get(m.ctx, msg.ID); err == nil {
			m.opened = n
		} else {
			m.setError(err)
		}
	case vaultview.ClosedMsg:
		m.mode = modeNormal
	case settings.ClosedMsg:
		m.mode = modeNormal
		if msg.Status != "" {
			m.setStatus(msg.Status)
		}
	case tea.KeyPressMsg:
		m.handleKeyPress(msg, &cmds)
	default:
		m.routeOther(msg, &cmds)
	}

	return m, tea.Batch(cmds...)
}

// routeOther hands non-key messages (cursor blinks) to the focused input.
func (m *Model) routeOther(msg tea.Msg, cmds *[]tea.Cmd) {
	switch {
	case m.sess.State() == session.StateOnboarding && m.onboarding != nil:
		_, cmd := m.onboarding.Update(msg)
		*cmds = append(*cmds, cmd)
	case m.mode == modeNewNote:
		var cmd tea.Cmd
		m.newInput, cmd = m.newInput.Update(msg)
		*cmds = append(*cmds, cmd)
	case m.mode == modeSettings:
		_, cmd := m.settings.Update(msg)
		*cmds = append(*cmds, cmd)
	case m.mode == modeHelp:
		_, cmd := m.help.Update(msg)
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() == "ctrl+c" {
		*cmds = append(*cmds, tea.Quit)
		return
	}

	switch m.sess.State() {
	case session.StateOnboarding:
		if m.onboarding == nil {
			if cmd := m.ensureOnboarding(); cmd != nil {
				*cmds = append(*cmds, cmd)
			}
		}
		_, cmd := m.onboarding.Update(msg)
		*cmds = append(*cmds, cmd)
	case session.StateLocked:
		m.handleLockKey(msg, cmds)
	case session.StateUnlocked:
		switch m.mode {
		case modeNewNote:
			m.handleNewNoteKey(msg, cmds)
		case modeVault:
			_, cmd := m.vault.Update(msg)
			*cmds = append(*cmds, cmd)
		case modeSettings:
			_, cmd := m.settings.Update(msg)
			*cmds = append(*cmds, cmd)
		case modeHelp:
			switch msg.String() {
			case "esc", "?", "q":
				m.mode = modeNormal
			default:
				_, cmd := m.help.Update(msg)
				*cmds = append(*cmds, cmd)
			}
		default:
			m.handleNormalKey(msg, cmds)
		}
	}
}

func (m *Model) handleLockKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	res, cmd := m.lock.HandleKey(msg)
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	if res != pin.ResultAccepted {
		return
	}
	if err := m.sess.Unlock(m.lock.Prompt.Value()); err != nil && !errors.Is(err, session.ErrNotLocked) {
		m.setError(err)
	}
	m.lock.Prompt.Reset()
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "q":
		*cmds = append(*cmds, tea.Quit)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.opened = nil
	case "down", "j":
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
		m.opened = nil
	case "esc":
		m.opened = nil
	case "n":
		m.mode = modeNewNote
		m.newInput.SetValue("")
		*cmds = append(*cmds, m.newInput.Focus())
	case "h":
		m.toggleHidden(cmds)
	case "v":
		m.opened = nil
		m.vault.SetSize(m.termWidth, m.termHeight)
		m.vault.Open()
		m.mode = modeVault
	case "s":
		m.settings.SetSize(m.termWidth, m.termHeight)
		m.settings.Open()
		m.mode = modeSettings
	case "L":
		if err := m.sess.Lock(); err != nil {
			m.setError(err)
		}
	case "?":
		m.mode = modeHelp
	}
}

func (m *Model) handleNewNoteKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.newInput.Blur()
		m.mode = modeNormal
		return
	case "enter":
		title := strings.TrimSpace(m.newInput.Value())
		m.newInput.Blur()
		m.newInput.SetValue("")
		m.mode = modeNormal
		if _, err := m.notes.Create(m.ctx, title, ""); err != nil {
			m.setError(err)
			return
		}
		m.cursor = 0
		m.setStatus("Note created")
		*cmds = append(*cmds, m.loadNotes())
		return
	}
	var cmd tea.Cmd
	m.newInput, cmd = m.newInput.Update(msg)
	*cmds = append(*cmds, cmd)
}

func (m *Model) toggleHidden(cmds *[]tea.Cmd) {
	target := m.opened
	if target == nil {
		if len(m.list) == 0 {
			m.setStatus("No note selected")
			return
		}
		target = &m.list[m.cursor]
	}
	updated, err := m.notes.SetHidden(m.ctx, target.ID, !target.Hidden)
	if err != nil {
		m.setError(err)
		return
	}
	m.opened = nil
	if updated.Hidden {
		m.setStatus("Moved to vault")
	} else {
		m.setStatus("Restored from vault")
	}
	*cmds = append(*cmds, m.loadNotes())
}

func (m *Model) sweepReminders() {
	due, err := m.notes.SweepReminders(m.ctx, m.clock.Now())
	if err != nil {
		m.log.Warn("reminder sweep failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	titles := make([]string, 0, len(due))
	for _, n := range due {
		titles = append(titles, n.DisplayTitle())
	}
	m.setStatus("Reminder: " + strings.Join(titles, ", "))
}

func (m *Model) applySizes() {
	if m.onboarding != nil {
		m.onboarding.SetSize(m.termWidth, m.termHeight)
	}
	m.lock.SetSize(m.termWidth, m.termHeight)
	for _, o := range m.overlays() {
		o.SetSize(m.termWidth, m.termHeight)
	}
	m.help.SetSize(m.termWidth, m.termHeight)
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.sess.State() {
	case session.StateOnboarding:
		if m.onboarding == nil {
			return ""
		}
		return m.onboarding.View()
	case session.StateLocked:
		return m.withStatus(m.lock.View())
	case session.StateUnlocked:
		switch m.mode {
		case modeVault:
			return m.vault.View()
		case modeSettings:
			return m.settings.View()
		case modeHelp:
			return m.help.View()
		}
		return m.notesView()
	}
	return ""
}

func (m *Model) withStatus(view string) string {
	if m.status == "" {
		return view
	}
	return view + "\n" + m.theme.Footer.Status.Render(m.status)
}

func (m *Model) size() (int, int) {
	width, height := m.termWidth, m.termHeight
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

func (m *Model) notesView() string {
	width, height := m.size()
	left := width / 3
	if left < 24 {
		left = 24
	}
	if left > 40 {
		left = 40
	}
	right := width - left - 4
	if right < 20 {
		right = 20
	}
	bodyHeight := height - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	header := m.theme.Panel.Title.Render("Beho")
	if snap := m.sess.Snapshot(); snap.Profile != nil {
		header += m.theme.Footer.Status.Render(fmt.Sprintf("  Hello, %s", snap.Profile.FirstName))
	}

	listPane := m.theme.Panel.Frame.Padding(0, 1).Width(left).Height(bodyHeight).Render(m.renderList(left - 4))
	detailPane := m.theme.Panel.Frame.Padding(0, 1).Width(right).Height(bodyHeight).Render(m.renderDetail(right - 4))
	body := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	footer := m.theme.Footer.Help.Render("n new · h hide · v vault · s settings · L lock · ? help · q quit")
	if m.mode == modeNewNote {
		footer = m.newInput.View()
	}
	lines := []string{header, body, footer}
	if m.status != "" {
		style := m.theme.Footer.Status
		if strings.HasPrefix(m.status, "ERR:") {
			style = m.theme.Footer.Error
		}
		lines = append(lines, style.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderList(width int) string {
	if width < 8 {
		width = 8
	}
	if len(m.list) == 0 {
		return m.theme.List.Empty.Render("No notes yet. Press n to create one.")
	}
	lines := make([]string, 0, len(m.list))
	for i, n := range m.list {
		style, marker := m.theme.List.Item, "  "
		if i == m.cursor && m.opened == nil {
			style, marker = m.theme.List.Selected, "→ "
		}
		title := truncate.StringWithTail(n.DisplayTitle(), uint(width-2), "…")
		if n.Reminder != nil {
			title = truncate.StringWithTail(n.DisplayTitle(), uint(width-4), "…") + " ⏰"
		}
		lines = append(lines, style.Render(marker+title))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDetail(width int) string {
	if width < 8 {
		width = 8
	}
	var n *note.Note
	switch {
	case m.opened != nil:
		n = m.opened
	case len(m.list) > 0 && m.cursor < len(m.list):
		n = &m.list[m.cursor]
	default:
		return ""
	}
	lines := []string{m.theme.Panel.Title.Render(n.DisplayTitle())}
	meta := "Last updated: " + n.UpdatedAt.String()
	if n.Hidden {
		meta += " · hidden"
	}
	if n.Reminder != nil {
		meta += " · reminder " + n.Reminder.String()
	}
	lines = append(lines, m.theme.List.Meta.Render(meta), "")
	if n.Content != "" {
		lines = append(lines, wordwrap.String(n.Content, width))
	}
	return strings.Join(lines, "\n")
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}
