package tui

// cellHeight is the number of virtual pixels one terminal line represents.
const cellHeight = 16

const (
	statusBarHeight = 1
	helpLineHeight  = 1
	minViewLines    = 1
)

type pageLayout struct {
	windowWidth  int
	windowHeight int
	viewLines    int
	footerHeight int
}

func newPageLayout() pageLayout {
	l := pageLayout{}
	l.Update(80, 24, false)
	return l
}

func (l *pageLayout) Update(width, height int, helpVisible bool) {
	l.windowWidth = width
	l.windowHeight = height
	l.footerHeight = statusBarHeight
	if helpVisible {
		l.footerHeight += helpLineHeight
	}
	l.viewLines = height - l.footerHeight
	if l.viewLines < minViewLines {
		l.viewLines = minViewLines
	}
}

// viewHeight is the scrolling area in virtual pixels.
func (l pageLayout) viewHeight() int {
	return l.viewLines * cellHeight
}

// lineAt maps a virtual pixel position to a terminal line.
func lineAt(y int) int {
	return y / cellHeight
}
