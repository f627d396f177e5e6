package tui

import (
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/csheth/pastechannel/internal/config"
	"github.com/csheth/pastechannel/internal/history"
	"github.com/csheth/pastechannel/internal/pastebin"
	"github.com/csheth/pastechannel/internal/ticker"
)

const (
	headerRule   = "###############################"
	flashTimeout = 4 * time.Second
)

// Config wires runtime options into the TUI program.
type Config struct {
	Settings config.Config
	Fetcher  Fetcher
	// OpenURL and CopyText default to the system browser and clipboard.
	OpenURL  func(string) error
	CopyText func(string) error
}

type fetchState int

const (
	fetchIdle fetchState = iota
	fetchListing
	fetchEntry
	fetchRetrying
)

type model struct {
	config  Config
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	jobs    *jobBus
	layout  pageLayout
	session *session
	styles  map[string]lipgloss.Style

	fetch        fetchState
	fetchLabel   string
	bytesFetched uint64
	entriesShown int
	helpVisible  bool
	flash        string
	flashAt      time.Time

	// history writes run one at a time; records arriving meanwhile wait here
	pendingHistory []history.Record
	historyBusy    bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	if cfg.OpenURL == nil {
		cfg.OpenURL = browser.OpenURL
	}
	if cfg.CopyText == nil {
		cfg.CopyText = clipboard.WriteAll
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:  cfg,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: spin,
		jobs:    newJobBus(),
		layout:  newPageLayout(),
		styles:  map[string]lipgloss.Style{},
	}
	m.session = newSession(cfg.Settings, m.layout.viewHeight())

	if cfg.Settings.ShowIntro {
		for _, line := range introLines(m.keys) {
			m.session.buffer.Append(line, cfg.Settings.Colors.Intro, "")
		}
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return frameCmd(m.config.Settings.FPS)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m, tea.Batch(frameCmd(m.config.Settings.FPS), m.frame())
	case spinner.TickMsg:
		if m.fetch == fetchIdle {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.relayout(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case jobStartedMsg:
		log.Printf("[jobs] %s started", msg.Snapshot.ID)
		return m, nil
	case jobDoneMsg:
		m.jobs.finish(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case listingResultMsg:
		return m, m.handleListing(msg)
	case retryListingMsg:
		if m.fetch == fetchRetrying {
			m.setFetch(fetchIdle, "")
		}
		return m, nil
	case entryResultMsg:
		return m, m.handleEntry(msg)
	case historyResultMsg:
		if msg.err != nil {
			log.Printf("[history] %v", msg.err)
		}
		m.historyBusy = false
		return m, m.flushHistory()
	case linkResultMsg:
		if msg.err != nil {
			log.Printf("[link] %v", msg.err)
			m.setFlash(msg.err.Error())
			return m, nil
		}
		m.setFlash(msg.status)
		return m, nil
	}
	return m, nil
}

// frame advances the ticker one step and starts a refill when the buffer
// has run low.
func (m *model) frame() tea.Cmd {
	if m.flash != "" && time.Since(m.flashAt) > flashTimeout {
		m.flash = ""
	}
	if !m.session.step() {
		return nil
	}
	return m.refill()
}

func (m *model) refill() tea.Cmd {
	if m.fetch != fetchIdle || m.config.Fetcher == nil {
		return nil
	}
	if m.session.queued() == 0 {
		m.setFetch(fetchListing, "fetching archive")
		return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindListing, fetchListingJob(m.config.Fetcher)))
	}
	entry, ok := m.session.nextEntry()
	if !ok {
		return nil
	}
	m.setFetch(fetchEntry, fmt.Sprintf("fetching %s", entry.ID))
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindEntry, fetchEntryJob(m.config.Fetcher, entry)))
}

func (m *model) handleListing(msg listingResultMsg) tea.Cmd {
	if msg.err != nil || msg.listing.Len() == 0 {
		delay := m.config.Settings.RetryDelay
		log.Printf("[ticker] archive fetch failed, retrying in %s: %v", delay, msg.err)
		m.setFetch(fetchRetrying, fmt.Sprintf("archive unavailable, retrying in %s", delay))
		return retryListingCmd(delay)
	}
	m.session.listing = msg.listing
	m.setFetch(fetchIdle, "")
	return nil
}

func (m *model) handleEntry(msg entryResultMsg) tea.Cmd {
	m.setFetch(fetchIdle, "")
	url := m.config.Fetcher.EntryURL(msg.entry.ID)
	m.appendEntry(msg.entry, url, msg.body, msg.err)

	path := m.config.Settings.HistoryPath
	if path == "" {
		return nil
	}
	record := history.Record{
		ID:      msg.entry.ID,
		Title:   msg.entry.Title,
		Format:  msg.entry.Format,
		URL:     url,
		Size:    msg.body.Size,
		ShownAt: time.Now().UTC(),
	}
	m.pendingHistory = append(m.pendingHistory, record)
	return m.flushHistory()
}

// flushHistory writes every pending record in one job unless a write is
// already running.
func (m *model) flushHistory() tea.Cmd {
	if m.historyBusy || len(m.pendingHistory) == 0 {
		return nil
	}
	records := m.pendingHistory
	m.pendingHistory = nil
	m.historyBusy = true
	return m.jobs.Start(jobKindHistory, recordHistoryJob(m.config.Settings.HistoryPath, records...))
}

// appendEntry adds the decorative header and the body rows of one entry.
// A failed body fetch still gets its header so the entry stays clickable.
func (m *model) appendEntry(entry pastebin.Entry, url string, body pastebin.Body, err error) {
	colors := m.config.Settings.Colors
	buf := m.session.buffer

	buf.Append("", colors.Text, "")
	buf.Append(headerRule, colors.Header, url)
	buf.Append("TITLE: "+entry.Title, colors.Header, url)
	buf.Append("FORMAT: "+entry.Format, colors.Header, url)
	buf.Append(url, colors.Header, url)
	buf.Append(headerRule, colors.Header, url)
	buf.Append("", colors.Text, url)

	m.entriesShown++
	if err != nil {
		log.Printf("[ticker] entry %s: %v", entry.ID, err)
		return
	}
	m.bytesFetched += uint64(body.Size)
	for _, line := range ticker.SplitBody(body.Text) {
		buf.Append(line, colors.Text, url)
	}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		s.togglePause()
	case key.Matches(msg, m.keys.FontUp):
		s.changeFont(fontStep)
	case key.Matches(msg, m.keys.FontDown):
		s.changeFont(-fontStep)
	case key.Matches(msg, m.keys.Faster):
		s.changeSpeed(1)
	case key.Matches(msg, m.keys.Slower):
		s.changeSpeed(-1)
	case key.Matches(msg, m.keys.ScrollUp):
		s.scroll(1)
	case key.Matches(msg, m.keys.ScrollDown):
		s.scroll(-1)
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.relayout(m.layout.windowWidth, m.layout.windowHeight)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		m.session.scroll(1)
	case tea.MouseWheelDown:
		m.session.scroll(-1)
	case tea.MouseLeft:
		var cmds []tea.Cmd
		for _, link := range m.linksAt(msg.Y) {
			cmds = append(cmds, m.jobs.Start(jobKindLink, openLinkJob(link, m.config.OpenURL, m.config.CopyText)))
		}
		if len(cmds) == 0 {
			return m, nil
		}
		return m, tea.Batch(cmds...)
	case tea.MouseRight:
		if links := m.linksAt(msg.Y); len(links) > 0 {
			return m, m.jobs.Start(jobKindLink, copyLinkJob(links[0], m.config.CopyText))
		}
	}
	return m, nil
}

// linksAt returns the distinct links of the rows drawn on terminal line y.
func (m *model) linksAt(y int) []string {
	if y < 0 || y >= m.layout.viewLines {
		return nil
	}
	top := y * cellHeight
	seen := map[string]bool{}
	var links []string
	for _, row := range m.session.buffer.RowsIn(top, top+cellHeight) {
		if row.Link == "" || seen[row.Link] {
			continue
		}
		seen[row.Link] = true
		links = append(links, row.Link)
	}
	return links
}

func (m *model) relayout(width, height int) {
	m.layout.Update(width, height, m.helpVisible)
	m.session.resize(m.layout.viewHeight())
}

func (m *model) setFetch(state fetchState, label string) {
	m.fetch = state
	m.fetchLabel = label
}

func (m *model) setFlash(message string) {
	m.flash = message
	m.flashAt = time.Now()
}
