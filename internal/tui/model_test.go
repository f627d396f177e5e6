package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pastechannel/internal/config"
	"github.com/csheth/pastechannel/internal/history"
	"github.com/csheth/pastechannel/internal/pastebin"
)

type fakeFetcher struct {
	listing *pastebin.Listing
	bodies  map[string]string
}

func (f fakeFetcher) FetchListing(ctx context.Context) (*pastebin.Listing, error) {
	if f.listing == nil {
		return pastebin.NewListing(), pastebin.ErrNoEntries
	}
	return f.listing, nil
}

func (f fakeFetcher) FetchEntry(ctx context.Context, id string) (pastebin.Body, error) {
	body, ok := f.bodies[id]
	if !ok {
		return pastebin.Body{}, pastebin.ErrUnavailable
	}
	return pastebin.Body{Text: body, Size: len(body)}, nil
}

func (fakeFetcher) EntryURL(id string) string { return "https://paste.test/" + id }

func testSettings() config.Config {
	settings := config.Default()
	settings.ShowIntro = false
	return settings
}

func newTestModel(t *testing.T, settings config.Config) *model {
	t.Helper()
	teaModel, ok := New(Config{
		Settings: settings,
		Fetcher:  fakeFetcher{},
		OpenURL:  func(string) error { return nil },
		CopyText: func(string) error { return nil },
	}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	teaModel.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return teaModel
}

func sampleListing() *pastebin.Listing {
	listing := pastebin.NewListing()
	listing.Add(pastebin.Entry{ID: "first", Title: "Hello", Format: "go"})
	listing.Add(pastebin.Entry{ID: "second", Title: "World", Format: "text"})
	return listing
}

func rowTexts(m *model) []string {
	var texts []string
	for _, row := range m.session.buffer.Rows() {
		texts = append(texts, row.Text)
	}
	return texts
}

func TestNewAppendsIntroRows(t *testing.T) {
	settings := config.Default()
	m := newTestModel(t, settings)

	rows := m.session.buffer.Rows()
	if len(rows) != len(introLines(m.keys)) {
		t.Fatalf("expected %d intro rows, got %d", len(introLines(m.keys)), len(rows))
	}
	if rows[0].Text != introTitle || rows[0].Color != settings.Colors.Intro {
		t.Fatalf("unexpected first intro row %+v", rows[0])
	}
	if rows[0].Link != "" {
		t.Fatal("intro rows should not carry links")
	}
}

func TestIntroListsBindings(t *testing.T) {
	joined := strings.Join(introLines(newKeyMap()), "\n")
	for _, want := range []string{"SPACE: Pause / resume scrolling", "ESC: Quit", "CLICK:"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("intro missing %q:\n%s", want, joined)
		}
	}
}

func TestFrameFetchesListingWhenQueueEmpty(t *testing.T) {
	m := newTestModel(t, testSettings())

	if cmd := m.frame(); cmd == nil {
		t.Fatal("empty buffer should start a listing fetch")
	}
	if m.fetch != fetchListing {
		t.Fatalf("fetch state = %v, want listing", m.fetch)
	}
	if cmd := m.frame(); cmd != nil {
		t.Fatal("a second fetch must not start while one is in flight")
	}
}

func TestListingResultFeedsEntryFetch(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.frame()

	m.Update(jobDoneMsg{Payload: listingResultMsg{listing: sampleListing()}})
	if m.fetch != fetchIdle {
		t.Fatalf("fetch state = %v, want idle", m.fetch)
	}
	if m.session.queued() != 2 {
		t.Fatalf("queued = %d, want 2", m.session.queued())
	}

	if cmd := m.frame(); cmd == nil {
		t.Fatal("expected an entry fetch")
	}
	if m.fetch != fetchEntry {
		t.Fatalf("fetch state = %v, want entry", m.fetch)
	}
	if m.session.queued() != 1 {
		t.Fatalf("entry was not consumed, queued = %d", m.session.queued())
	}
	if ids := m.session.listing.IDs(); len(ids) != 1 || ids[0] != "second" {
		t.Fatalf("entries should be taken in listing order, left %v", ids)
	}
}

func TestListingFailureSchedulesRetry(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.frame()

	_, cmd := m.Update(listingResultMsg{err: pastebin.ErrUnavailable})
	if cmd == nil {
		t.Fatal("expected a retry timer")
	}
	if m.fetch != fetchRetrying {
		t.Fatalf("fetch state = %v, want retrying", m.fetch)
	}
	if cmd := m.frame(); cmd != nil {
		t.Fatal("no fetch should start while waiting to retry")
	}

	m.Update(retryListingMsg{})
	if m.fetch != fetchIdle {
		t.Fatalf("fetch state = %v after retry timer, want idle", m.fetch)
	}
	if cmd := m.frame(); cmd == nil {
		t.Fatal("expected the listing fetch to be retried")
	}
}

func TestEmptyListingIsRetried(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.frame()
	m.Update(listingResultMsg{listing: pastebin.NewListing()})
	if m.fetch != fetchRetrying {
		t.Fatalf("fetch state = %v, want retrying", m.fetch)
	}
}

func TestEntryResultAppendsHeaderAndBody(t *testing.T) {
	m := newTestModel(t, testSettings())
	entry := pastebin.Entry{ID: "abc", Title: "Hello", Format: "python"}

	m.Update(entryResultMsg{entry: entry, body: pastebin.Body{Text: "a\nb\tc\n", Size: 6}})

	want := []string{
		"",
		headerRule,
		"TITLE: Hello",
		"FORMAT: python",
		"https://paste.test/abc",
		headerRule,
		"",
		"a",
		"b     c",
	}
	got := rowTexts(m)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("rows = %q\nwant %q", got, want)
	}

	rows := m.session.buffer.Rows()
	if rows[0].Link != "" {
		t.Fatal("leading spacer should not carry a link")
	}
	for _, row := range rows[1:] {
		if row.Link != "https://paste.test/abc" {
			t.Fatalf("row %q has link %q", row.Text, row.Link)
		}
	}
	if rows[2].Color != m.config.Settings.Colors.Header {
		t.Fatalf("title row colour = %q", rows[2].Color)
	}
	if rows[8].Color != m.config.Settings.Colors.Text {
		t.Fatalf("body row colour = %q", rows[8].Color)
	}
	if m.bytesFetched != 6 || m.entriesShown != 1 {
		t.Fatalf("counters = %d bytes / %d shown", m.bytesFetched, m.entriesShown)
	}
}

func TestEntryFailureKeepsHeaderOnly(t *testing.T) {
	m := newTestModel(t, testSettings())
	entry := pastebin.Entry{ID: "gone", Title: "Missing"}

	m.Update(entryResultMsg{entry: entry, err: errors.New("boom")})
	if n := m.session.buffer.Len(); n != 7 {
		t.Fatalf("expected 7 header rows, got %d", n)
	}
	if m.fetch != fetchIdle {
		t.Fatalf("fetch state = %v, want idle", m.fetch)
	}
}

func TestEntryRecordsHistory(t *testing.T) {
	settings := testSettings()
	settings.HistoryPath = filepath.Join(t.TempDir(), "history.json")
	m := newTestModel(t, settings)

	_, cmd := m.Update(entryResultMsg{entry: pastebin.Entry{ID: "abc", Title: "T"}, body: pastebin.Body{Text: "x"}})
	if cmd == nil {
		t.Fatal("expected a history job")
	}

	record := history.Record{ID: "abc", URL: m.config.Fetcher.EntryURL("abc")}
	if _, err := recordHistoryJob(settings.HistoryPath, record)(context.Background()); err != nil {
		t.Fatalf("history job: %v", err)
	}
	records, err := history.Load(settings.HistoryPath)
	if err != nil || len(records) != 1 || records[0].URL != "https://paste.test/abc" {
		t.Fatalf("unexpected history %v, %v", records, err)
	}
}

func TestPauseFreezesRowsUntilForcedFrame(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.session.buffer.Append("row", "", "")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if !m.session.paused {
		t.Fatal("space should pause")
	}
	// the resize from newTestModel still owes one frame
	m.frame()
	start := m.session.buffer.Rows()[0].Y
	m.frame()
	m.frame()
	if y := m.session.buffer.Rows()[0].Y; y != start {
		t.Fatalf("paused row moved from %d to %d", start, y)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	shifted := start + m.session.fontSize*scrollFontFactor
	if y := m.session.buffer.Rows()[0].Y; y != shifted {
		t.Fatalf("scroll up moved row to %d, want %d", y, shifted)
	}
	m.frame()
	if y := m.session.buffer.Rows()[0].Y; y != shifted-m.session.scrollRate {
		t.Fatalf("forced frame should advance once, row at %d", y)
	}
	m.frame()
	if y := m.session.buffer.Rows()[0].Y; y != shifted-m.session.scrollRate {
		t.Fatalf("only one forced frame expected, row at %d", y)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if m.session.paused {
		t.Fatal("space should resume")
	}
}

func TestFontKeysRebuildWithinBounds(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.session.buffer.Append("a", "#fff", "")
	m.session.buffer.Append("b", "#fff", "")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if m.session.fontSize != config.MinFontSize+fontStep {
		t.Fatalf("font size = %d", m.session.fontSize)
	}
	if got := m.session.buffer.Metrics().LineHeight; got != m.session.fontSize+lineGap {
		t.Fatalf("line height = %d", got)
	}
	if m.session.buffer.Len() != 2 {
		t.Fatalf("rebuild lost rows: %d", m.session.buffer.Len())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if m.session.fontSize != config.MinFontSize {
		t.Fatalf("font size should stop at the minimum, got %d", m.session.fontSize)
	}
}

func TestSpeedKeysClamp(t *testing.T) {
	m := newTestModel(t, testSettings())
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	}
	if m.session.scrollRate != 0 {
		t.Fatalf("scroll rate = %d, want 0", m.session.scrollRate)
	}
	for i := 0; i < config.MaxSpeed+5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'*'}})
	}
	if m.session.scrollRate != config.MaxSpeed {
		t.Fatalf("scroll rate = %d, want %d", m.session.scrollRate, config.MaxSpeed)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		m := newTestModel(t, testSettings())
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%q should quit", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q did not produce tea.QuitMsg", msg.String())
		}
	}
}

func TestResizeUpdatesViewHeight(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 41})
	if m.layout.viewLines != 40 {
		t.Fatalf("view lines = %d, want 40", m.layout.viewLines)
	}
	if got := m.session.buffer.Metrics().ViewHeight; got != 40*cellHeight {
		t.Fatalf("buffer view height = %d", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.layout.viewLines != 39 {
		t.Fatalf("help line should take a row, view lines = %d", m.layout.viewLines)
	}
}

func showEntryAtTop(t *testing.T, m *model) {
	t.Helper()
	entry := pastebin.Entry{ID: "abc", Title: "Hello", Format: "go"}
	m.Update(entryResultMsg{entry: entry, body: pastebin.Body{Text: "body line\n"}})
	m.session.buffer.Shift(-m.layout.viewHeight())
}

func TestClickOpensRowLink(t *testing.T) {
	m := newTestModel(t, testSettings())
	showEntryAtTop(t, m)

	if links := m.linksAt(0); len(links) != 0 {
		t.Fatalf("spacer row should have no link, got %v", links)
	}
	links := m.linksAt(2)
	if len(links) != 1 || links[0] != "https://paste.test/abc" {
		t.Fatalf("unexpected links %v", links)
	}
	if _, cmd := m.Update(tea.MouseMsg{Y: 2, Type: tea.MouseLeft}); cmd == nil {
		t.Fatal("click on a linked row should open it")
	}
	if _, cmd := m.Update(tea.MouseMsg{Y: m.layout.viewLines, Type: tea.MouseLeft}); cmd != nil {
		t.Fatal("click on the status bar should do nothing")
	}
}

func TestRightClickCopiesLink(t *testing.T) {
	m := newTestModel(t, testSettings())
	showEntryAtTop(t, m)
	if _, cmd := m.Update(tea.MouseMsg{Y: 3, Type: tea.MouseRight}); cmd == nil {
		t.Fatal("right click on a linked row should copy it")
	}
}

func TestOpenLinkFallsBackToClipboard(t *testing.T) {
	var copied string
	openFails := func(string) error { return errors.New("no browser") }
	copyFn := func(s string) error { copied = s; return nil }

	msg, err := openLinkJob("https://paste.test/x", openFails, copyFn)(context.Background())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if copied != "https://paste.test/x" {
		t.Fatalf("clipboard got %q", copied)
	}
	if res := msg.(linkResultMsg); !strings.Contains(res.status, "copied") {
		t.Fatalf("unexpected status %q", res.status)
	}

	_, err = openLinkJob("https://paste.test/x", openFails, func(string) error { return errors.New("no clipboard") })(context.Background())
	if err == nil {
		t.Fatal("expected an error when both browser and clipboard fail")
	}
}

func TestLinkResultSetsFlash(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.Update(tea.WindowSizeMsg{Width: 300, Height: 24})
	m.Update(linkResultMsg{status: "Link copied"})
	if !strings.Contains(m.View(), "Link copied") {
		t.Fatal("status bar should show the flash message")
	}
}

func TestViewRendersVisibleRows(t *testing.T) {
	m := newTestModel(t, testSettings())
	showEntryAtTop(t, m)

	view := m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 24 {
		t.Fatalf("view has %d lines, want 24", len(lines))
	}
	for _, want := range []string{"TITLE: Hello", "FORMAT: go", "body line", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.Contains(lines[2], "TITLE: Hello") {
		t.Fatalf("title should be on line 2, got %q", lines[2])
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatal("status bar should show PAUSED")
	}
}

func TestViewClipsWideRows(t *testing.T) {
	m := newTestModel(t, testSettings())
	m.Update(tea.WindowSizeMsg{Width: 10, Height: 5})
	m.session.buffer.Append(strings.Repeat("x", 40), "", "")
	m.session.buffer.Shift(-m.layout.viewHeight())

	first := strings.Split(m.View(), "\n")[0]
	if strings.Count(first, "x") != 10 {
		t.Fatalf("row not clipped to width: %q", first)
	}
}

func TestViewNeutralisesPasteControlSequences(t *testing.T) {
	m := newTestModel(t, testSettings())
	entry := pastebin.Entry{ID: "ansi", Title: "t\x1b]0;renamed\x07", Format: "text\x1b[31m"}
	body := "hello\x1b[2Jworld\x1b]52;c;ZXZpbA==\x07\n\x1b[10;10Hmoved\n"
	m.Update(entryResultMsg{entry: entry, body: pastebin.Body{Text: body, Size: len(body)}})
	m.session.buffer.Shift(-m.layout.viewHeight())

	view := m.View()
	for _, seq := range []string{"\x1b[2J", "\x1b]52", "\x1b]0;", "\x1b[10;10H", "\x1b[31m", "\x07"} {
		if strings.Contains(view, seq) {
			t.Fatalf("view contains %q from paste content", seq)
		}
	}
	for _, row := range m.session.buffer.Rows() {
		if strings.ContainsRune(row.Text, '\x1b') {
			t.Fatalf("row %q kept an escape", row.Text)
		}
	}
	if !strings.Contains(view, "hello\uFFFD[2Jworld") {
		t.Fatalf("neutralised body missing from view:\n%s", view)
	}
}

func TestHistoryWritesRunOneAtATime(t *testing.T) {
	settings := testSettings()
	settings.HistoryPath = filepath.Join(t.TempDir(), "history.json")
	m := newTestModel(t, settings)

	_, first := m.Update(entryResultMsg{entry: pastebin.Entry{ID: "one"}, body: pastebin.Body{Text: "x"}})
	if first == nil || !m.historyBusy {
		t.Fatal("first entry should start a history write")
	}
	_, second := m.Update(entryResultMsg{entry: pastebin.Entry{ID: "two"}, err: errors.New("boom")})
	_, third := m.Update(entryResultMsg{entry: pastebin.Entry{ID: "three"}, body: pastebin.Body{Text: "y"}})
	if second != nil || third != nil {
		t.Fatal("no history write should start while one is running")
	}
	if len(m.pendingHistory) != 2 {
		t.Fatalf("pending = %d, want 2", len(m.pendingHistory))
	}

	_, next := m.Update(historyResultMsg{})
	if next == nil {
		t.Fatal("finished write should flush the pending records")
	}
	if len(m.pendingHistory) != 0 || !m.historyBusy {
		t.Fatalf("pending = %d busy = %v", len(m.pendingHistory), m.historyBusy)
	}

	_, idle := m.Update(historyResultMsg{})
	if idle != nil || m.historyBusy {
		t.Fatal("nothing pending, the writer should go idle")
	}
}

func TestRecordHistoryJobWritesBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	records := []history.Record{{ID: "one"}, {ID: "two"}}
	if _, err := recordHistoryJob(path, records...)(context.Background()); err != nil {
		t.Fatalf("history job: %v", err)
	}
	got, err := history.Load(path)
	if err != nil || len(got) != 2 || got[0].ID != "one" || got[1].ID != "two" {
		t.Fatalf("unexpected history %+v, %v", got, err)
	}
}
