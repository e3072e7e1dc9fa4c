package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"video-translator/domain/media"
	domsession "video-translator/domain/session"
)

// Runner runs the pipeline for one file
type Runner interface {
	Run(ctx context.Context, path string) (*domsession.HistoryEntry, error)
}

// Controls is the part of the session the UI drives
type Controls interface {
	Snapshot() domsession.Status
	Subscribe() (<-chan domsession.Status, func())
	Stop()
	ToggleAudio() bool
	SetTranslatedVolume(v float64) error
	SetOriginalVolume(v float64) error
}

// Lister finds video files in a directory
type Lister interface {
	ListVideos(dir string) ([]string, error)
}

// Model is the root bubbletea model for the interactive session.
type Model struct {
	ctx      context.Context
	runner   Runner
	controls Controls
	lister   Lister
	dir      string

	updates     <-chan domsession.Status
	unsubscribe func()

	// Files
	files    []string
	selected int
	filesErr string

	// Session
	status  domsession.Status
	running string

	// Notices that are not part of the session status
	notice string

	width  int
	height int
}

// New creates a Model subscribed to the session
func New(ctx context.Context, runner Runner, controls Controls, lister Lister, dir string) Model {
	updates, unsubscribe := controls.Subscribe()
	return Model{
		ctx:         ctx,
		runner:      runner,
		controls:    controls,
		lister:      lister,
		dir:         dir,
		updates:     updates,
		unsubscribe: unsubscribe,
		status:      controls.Snapshot(),
	}
}

// Init lists the directory and starts listening for status changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadFilesCmd(m.lister, m.dir), waitStatusCmd(m.updates))
}

func loadFilesCmd(lister Lister, dir string) tea.Cmd {
	return func() tea.Msg {
		files, err := lister.ListVideos(dir)
		if err != nil {
			return FilesErrorMsg{Err: err}
		}
		return FilesLoadedMsg{Files: files}
	}
}

// waitStatusCmd reads the next status change from the subscription.
func waitStatusCmd(updates <-chan domsession.Status) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return statusClosedMsg{}
		}
		return StatusMsg{Status: st}
	}
}

func runCmd(ctx context.Context, runner Runner, path string) tea.Cmd {
	return func() tea.Msg {
		entry, err := runner.Run(ctx, path)
		return RunFinishedMsg{Path: path, Entry: entry, Err: err}
	}
}

func clearNoticeCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FilesLoadedMsg:
		m.files = msg.Files
		m.filesErr = ""
		if m.selected >= len(m.files) {
			m.selected = max(0, len(m.files)-1)
		}
		return m, nil

	case FilesErrorMsg:
		m.files = nil
		m.filesErr = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.status = msg.Status
		return m, waitStatusCmd(m.updates)

	case statusClosedMsg:
		return m, nil

	case RunFinishedMsg:
		m.running = ""
		m.status = m.controls.Snapshot()
		switch {
		case msg.Err == nil:
			return m, nil
		case errors.Is(msg.Err, media.ErrNotVideo):
			// skipped without a message
			return m, nil
		case errors.Is(msg.Err, domsession.ErrBusy):
			m.notice = "A translation is already running"
			return m, clearNoticeCmd()
		case m.status.Error == "":
			m.notice = msg.Err.Error()
			return m, clearNoticeCmd()
		}
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		m.controls.Stop()
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case KeyDown, KeyJ:
		if m.selected < len(m.files)-1 {
			m.selected++
		}
		return m, nil

	case KeyEnter:
		if len(m.files) == 0 || m.selected >= len(m.files) {
			return m, nil
		}
		if m.running != "" || m.status.Translating {
			m.notice = "A translation is already running"
			return m, clearNoticeCmd()
		}
		m.running = m.files[m.selected]
		m.notice = ""
		return m, runCmd(m.ctx, m.runner, m.running)

	case KeyStop:
		m.controls.Stop()
		return m, nil

	case KeyToggleAudio, KeySpace:
		m.status.Settings.AudioEnabled = m.controls.ToggleAudio()
		return m, nil

	case KeyVolumeUp, KeyVolumeUpAlt:
		return m, m.stepTranslated(VolumeStep)

	case KeyVolumeDown:
		return m, m.stepTranslated(-VolumeStep)

	case KeyOriginalUp:
		return m, m.stepOriginal(VolumeStep)

	case KeyOriginalDown:
		return m, m.stepOriginal(-VolumeStep)

	case KeyReload:
		return m, loadFilesCmd(m.lister, m.dir)
	}

	return m, nil
}

func (m *Model) stepTranslated(delta float64) tea.Cmd {
	v := domsession.StepVolume(m.status.Settings.TranslatedVolume, delta)
	if err := m.controls.SetTranslatedVolume(v); err != nil {
		m.notice = err.Error()
		return clearNoticeCmd()
	}
	m.status.Settings.TranslatedVolume = v
	return nil
}

func (m *Model) stepOriginal(delta float64) tea.Cmd {
	v := domsession.StepVolume(m.status.Settings.OriginalVolume, delta)
	if err := m.controls.SetOriginalVolume(v); err != nil {
		m.notice = err.Error()
		return clearNoticeCmd()
	}
	m.status.Settings.OriginalVolume = v
	return nil
}

func (m Model) filePanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(20, m.width*35/100)
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 16
	}
	// header, status, two dividers, notice, footer
	return max(5, m.height-6)
}

// View renders the full TUI.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", width)))
	sections = append(sections, m.renderMainContent(width))
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", width)))

	if bar := m.renderErrorBar(); bar != "" {
		sections = append(sections, bar)
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	return TitleStyle.Render("VIDEO TRANSLATOR") + DimStyle.Render(" · "+m.dir)
}

func (m Model) renderStatusBar() string {
	var dot string
	if m.status.Translating {
		dot = BusyDotStyle.Render("● " + strings.ToUpper(m.status.State.String()))
	} else {
		dot = IdleDotStyle.Render("○ " + strings.ToUpper(m.status.State.String()))
	}

	var audio string
	if m.status.Settings.AudioEnabled {
		audio = AudioOnStyle.Render("AUDIO ON")
	} else {
		audio = AudioOffStyle.Render("AUDIO OFF")
	}
	if m.status.Speaking {
		audio += BusyDotStyle.Render(" ♪")
	}

	return dot + "  " + audio +
		"  " + renderVolumeMeter("VOL", m.status.Settings.TranslatedVolume) +
		"  " + renderVolumeMeter("ORIG", m.status.Settings.OriginalVolume)
}

func renderVolumeMeter(label string, level float64) string {
	const barLen = 10
	filled := int(level*barLen + 0.5)

	var bar string
	for i := 0; i < barLen; i++ {
		if i < filled {
			bar += LevelGreenStyle.Render("█")
		} else {
			bar += LevelGrayStyle.Render("░")
		}
	}
	return LabelStyle.Render(label) + " " + bar + DimStyle.Render(fmt.Sprintf(" %3d%%", int(level*100+0.5)))
}

func (m Model) renderMainContent(width int) string {
	fileW := m.filePanelWidth()
	resultW := max(20, width-fileW-1)
	height := m.contentHeight()

	fileLines := m.renderFilePanel(fileW, height)
	resultLines := m.renderResultPanel(resultW, height)
	divider := DividerStyle.Render("│")

	rows := make([]string, height)
	for i := 0; i < height; i++ {
		rows[i] = padRight(fileLines[i], fileW) + divider + resultLines[i]
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderFilePanel(width, height int) []string {
	lines := []string{PanelTitleStyle.Render(fmt.Sprintf("VIDEOS (%d)", len(m.files)))}

	switch {
	case m.filesErr != "":
		lines = append(lines, ErrorTextStyle.Render("  "+truncate(m.filesErr, width-2)))
	case len(m.files) == 0:
		lines = append(lines, DimStyle.Render("  No video files found"))
		lines = append(lines, DimStyle.Render("  Press r to reload"))
	default:
		// keep the selection visible
		visible := height - 1
		start := 0
		if m.selected >= visible {
			start = m.selected - visible + 1
		}
		for i := start; i < len(m.files) && len(lines) < height; i++ {
			name := truncate(filepath.Base(m.files[i]), width-4)
			marker := "  "
			if m.files[i] == m.running {
				marker = BusyDotStyle.Render("▶ ")
			}
			if i == m.selected {
				lines = append(lines, SelectedStyle.Render("> ")+marker+SelectedStyle.Render(name))
			} else {
				lines = append(lines, "  "+marker+name)
			}
		}
	}

	return fit(lines, height)
}

func (m Model) renderResultPanel(width, height int) []string {
	textW := max(10, width-2)
	var lines []string

	lines = append(lines, LabelStyle.Render(" Transcript"))
	if m.status.LastTranscript != "" {
		for _, l := range wrapText(m.status.LastTranscript, textW) {
			lines = append(lines, " "+l)
		}
	} else {
		lines = append(lines, DimStyle.Render(" Select a video and press Enter"))
	}

	lines = append(lines, LabelStyle.Render(" Translation"))
	if m.status.LastTranslation != "" {
		for _, l := range wrapText(m.status.LastTranslation, textW) {
			lines = append(lines, " "+TranslationStyle.Render(l))
		}
	} else {
		lines = append(lines, DimStyle.Render(" -"))
	}

	lines = append(lines, "")
	lines = append(lines, PanelTitleStyle.Render(fmt.Sprintf(" HISTORY (%d)", len(m.status.History))))
	for _, e := range m.status.History {
		if len(lines) >= height {
			break
		}
		ts := TimestampStyle.Render(e.Timestamp.Format("[15:04:05]"))
		lines = append(lines, " "+ts+" "+truncate(e.Translated.Text, textW-12))
	}

	return fit(lines, height)
}

func (m Model) renderErrorBar() string {
	switch {
	case m.status.Error != "":
		return ErrorStyle.Render("Error: ") + ErrorTextStyle.Render(m.status.Error)
	case m.notice != "":
		return NoticeStyle.Render(m.notice)
	}
	return ""
}

func (m Model) renderFooter() string {
	keys := [][2]string{
		{"↑↓", " Select"},
		{"Enter", " Translate"},
		{"s", " Stop"},
		{"a", " Audio"},
		{"+/-", " Volume"},
		{"[/]", " Original"},
		{"r", " Reload"},
		{"q", " Quit"},
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = FooterKeyStyle.Render(k[0]) + FooterDescStyle.Render(k[1])
	}
	return strings.Join(parts, "  ")
}

// Helpers

func fit(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines[:height]
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 1 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" || len(lines) == 0 {
		lines = append(lines, current)
	}
	return lines
}
