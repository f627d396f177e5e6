package tui

import (
	"github.com/csheth/pastechannel/internal/config"
	"github.com/csheth/pastechannel/internal/pastebin"
	"github.com/csheth/pastechannel/internal/ticker"
)

const (
	fontStep         = 2
	lineGap          = 2
	scrollFontFactor = 10
)

// session is the view state shared by the frame loop and the input handlers.
// It is only touched from Update.
type session struct {
	fontSize   int
	scrollRate int
	paused     bool
	// forceFrame requests one frame step while paused.
	forceFrame bool

	buffer  *ticker.Buffer
	listing *pastebin.Listing
}

func newSession(settings config.Config, viewHeight int) *session {
	return &session{
		fontSize:   settings.FontSize,
		scrollRate: settings.ScrollRate,
		buffer: ticker.NewBuffer(ticker.Metrics{
			ViewHeight: viewHeight,
			LineHeight: settings.FontSize + lineGap,
			MaxWidth:   settings.MaxLineWidth,
		}),
	}
}

func (s *session) togglePause() {
	s.paused = !s.paused
}

// step runs one frame of the ticker and reports whether the buffer ran low.
func (s *session) step() bool {
	if s.paused && !s.forceFrame {
		return false
	}
	s.forceFrame = false
	s.buffer.Advance(s.scrollRate)
	low := s.buffer.NeedsRefill()
	s.buffer.Cull()
	return low
}

func (s *session) resize(viewHeight int) {
	s.buffer.SetViewHeight(viewHeight)
	s.forceFrame = true
}

// changeFont adjusts the font size within bounds and re-lays the rows.
func (s *session) changeFont(delta int) bool {
	size := s.fontSize + delta
	if size < config.MinFontSize || size > config.MaxFontSize {
		return false
	}
	s.fontSize = size
	s.buffer.Rebuild(size + lineGap)
	s.forceFrame = true
	return true
}

func (s *session) changeSpeed(delta int) {
	rate := s.scrollRate + delta
	switch {
	case rate < 0:
		rate = 0
	case rate > config.MaxSpeed:
		rate = config.MaxSpeed
	}
	s.scrollRate = rate
}

// scroll moves the rows by ten font heights per step; positive steps move
// the text down, revealing what scrolled off the top.
func (s *session) scroll(steps int) {
	s.buffer.Shift(steps * s.fontSize * scrollFontFactor)
	s.forceFrame = true
}

// nextEntry consumes the first entry of the listing.
func (s *session) nextEntry() (pastebin.Entry, bool) {
	return s.listing.Pop()
}

func (s *session) queued() int {
	return s.listing.Len()
}
