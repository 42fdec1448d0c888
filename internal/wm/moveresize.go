package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/dimwm/dimwm/internal/x11"
)

// Handle identifies which edge(s) of a frame a resize operation moves:
// 4 edges plus 4 corners.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

// handleOrder is the cycle Space bar walks through during a resize.
var handleOrder = []Handle{HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW, HandleNW}

func (h Handle) movesTop() bool    { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) movesBottom() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) movesLeft() bool   { return h == HandleW || h == HandleNW || h == HandleSW }
func (h Handle) movesRight() bool  { return h == HandleE || h == HandleNE || h == HandleSE }

// HandleAt determines which resize handle a grab starting at (px, py)
// within a frame of size (w, h) selects, splitting each axis into thirds.
func HandleAt(px, py int32, w, h uint32) Handle {
	third := func(pos int32, size uint32) int {
		if size == 0 {
			return 1
		}
		switch {
		case pos < int32(size)/3:
			return 0
		case pos < int32(size)*2/3:
			return 1
		default:
			return 2
		}
	}
	col := third(px, w)
	row := third(py, h)
	switch {
	case row == 0 && col == 0:
		return HandleNW
	case row == 0 && col == 2:
		return HandleNE
	case row == 2 && col == 0:
		return HandleSW
	case row == 2 && col == 2:
		return HandleSE
	case row == 0:
		return HandleN
	case row == 2:
		return HandleS
	case col == 0:
		return HandleW
	case col == 2:
		return HandleE
	default:
		return HandleSE
	}
}

// DefaultSnapThreshold is the default perpendicular distance, in pixels, within
// which a moving/resizing edge snaps to an aligned edge.
const DefaultSnapThreshold = 5

// Guideline describes one XOR-rendered snap indicator: a full-screen line
// along axis at position pos.
type Guideline struct {
	Horizontal bool // true: a horizontal line at Y=pos; false: vertical at X=pos
	Pos        int32
}

// edges returns the four outer edge positions of r: left, right, top,
// bottom.
func edges(r x11.Rect) (left, right, top, bottom int32) {
	left = r.X
	right = r.X + int32(r.Width)
	top = r.Y
	bottom = r.Y + int32(r.Height)
	return
}

// snapCandidates collects every edge position a move or resize should
// consider snapping to: the screen edges, every CRTC's edges, and every
// other visible client's outer frame edges.
func snapCandidates(screen x11.Rect, outputs []x11.Output, others []x11.Rect) (xs, ys []int32) {
	l, r, t, b := edges(screen)
	xs = append(xs, l, r)
	ys = append(ys, t, b)
	for _, o := range outputs {
		l, r, t, b := edges(o.Rect)
		xs = append(xs, l, r)
		ys = append(ys, t, b)
	}
	for _, rect := range others {
		l, r, t, b := edges(rect)
		xs = append(xs, l, r)
		ys = append(ys, t, b)
	}
	return xs, ys
}

// snap returns the nearest candidate to v within threshold, or v
// unchanged with snapped=false if nothing qualifies.
func snap(v int32, candidates []int32, threshold int32) (snapped int32, did bool) {
	best := threshold + 1
	result := v
	for _, c := range candidates {
		d := v - c
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
			result = c
			did = true
		}
	}
	return result, did
}

// MoveResize drives one interactive move or resize operation from grab
// to commit/abort. A fresh instance is created for each operation; the
// manager holds it as the active Modal while it's live.
type MoveResize struct {
	conn *x11.Conn

	client   *Client
	original x11.Rect // captured geometry, restored on abort

	resizing bool
	handle   Handle

	pointerOffsetX, pointerOffsetY int32 // move: pointer - frame origin at grab time

	threshold int32
	screen    x11.Rect
	outputs   []x11.Output
	others    []x11.Rect

	guideline *Guideline
	drawLine  func(Guideline)
	eraseLine func()
}

// BeginMove starts a move grabbed at pointer (px, py).
func BeginMove(conn *x11.Conn, c *Client, px, py int32, threshold int32, screen x11.Rect, outputs []x11.Output, others []x11.Rect, drawLine func(Guideline), eraseLine func()) *MoveResize {
	return &MoveResize{
		conn: conn, client: c, original: c.Geometry,
		pointerOffsetX: px - c.Geometry.X, pointerOffsetY: py - c.Geometry.Y,
		threshold: threshold, screen: screen, outputs: outputs, others: others,
		drawLine: drawLine, eraseLine: eraseLine,
	}
}

// BeginResize starts a resize grabbed at pointer (px, py), selecting the
// initial handle from the grab position within the frame.
func BeginResize(conn *x11.Conn, c *Client, px, py int32, threshold int32, screen x11.Rect, outputs []x11.Output, others []x11.Rect, drawLine func(Guideline), eraseLine func()) *MoveResize {
	local := px - c.Geometry.X
	localY := py - c.Geometry.Y
	return &MoveResize{
		conn: conn, client: c, original: c.Geometry,
		resizing: true, handle: HandleAt(local, localY, c.Geometry.Width, c.Geometry.Height),
		threshold: threshold, screen: screen, outputs: outputs, others: others,
		drawLine: drawLine, eraseLine: eraseLine,
	}
}

func (mr *MoveResize) Name() string {
	if mr.resizing {
		return "resize"
	}
	return "move"
}

// CycleHandle advances to the next resize handle in the NSEW+corners
// cycle, updating the grab cursor to match. A no-op during a move.
func (mr *MoveResize) CycleHandle(t xproto.Timestamp) {
	if !mr.resizing {
		return
	}
	next := handleOrder[0]
	for i, h := range handleOrder {
		if h == mr.handle {
			next = handleOrder[(i+1)%len(handleOrder)]
			break
		}
	}
	mr.handle = next
	if mr.conn != nil {
		_ = mr.conn.ChangeGrabCursor(mr.grabCursor(), t)
	}
}

// Motion recomputes the candidate geometry for a MotionNotify at (px, py)
// and applies it to the client's frame immediately (live-updated, not
// deferred to commit — matching the XOR-guideline feedback model).
func (mr *MoveResize) Motion(px, py int32) error {
	var candidate x11.Rect
	if mr.resizing {
		candidate = mr.resizeCandidate(px, py)
	} else {
		candidate = mr.moveCandidate(px, py)
	}
	mr.client.Geometry = candidate
	return mr.apply(candidate)
}

func (mr *MoveResize) moveCandidate(px, py int32) x11.Rect {
	x := px - mr.pointerOffsetX
	y := py - mr.pointerOffsetY

	xs, ys := snapCandidates(mr.screen, mr.outputs, mr.others)
	w := int32(mr.original.Width)
	h := int32(mr.original.Height)

	var guide *Guideline
	if snapped, ok := snap(x, xs, mr.threshold); ok {
		x = snapped
		guide = &Guideline{Horizontal: false, Pos: x}
	} else if snapped, ok := snap(x+w, xs, mr.threshold); ok {
		x = snapped - w
		guide = &Guideline{Horizontal: false, Pos: snapped}
	}
	if snapped, ok := snap(y, ys, mr.threshold); ok {
		y = snapped
		if guide == nil {
			guide = &Guideline{Horizontal: true, Pos: y}
		}
	} else if snapped, ok := snap(y+h, ys, mr.threshold); ok {
		y = snapped - h
		if guide == nil {
			guide = &Guideline{Horizontal: true, Pos: snapped}
		}
	}
	mr.updateGuideline(guide)

	return x11.Rect{X: x, Y: y, Width: mr.original.Width, Height: mr.original.Height}
}

func (mr *MoveResize) resizeCandidate(px, py int32) x11.Rect {
	r := mr.client.Geometry
	xs, ys := snapCandidates(mr.screen, mr.outputs, mr.others)
	var guide *Guideline

	if mr.handle.movesLeft() {
		x := px
		if snapped, ok := snap(x, xs, mr.threshold); ok {
			x = snapped
			guide = &Guideline{Horizontal: false, Pos: x}
		}
		newWidth := (r.X + int32(r.Width)) - x
		if newWidth > 0 {
			r.X = x
			r.Width = uint32(newWidth)
		}
	}
	if mr.handle.movesRight() {
		x := px
		if snapped, ok := snap(x, xs, mr.threshold); ok {
			x = snapped
			guide = &Guideline{Horizontal: false, Pos: x}
		}
		newWidth := x - r.X
		if newWidth > 0 {
			r.Width = uint32(newWidth)
		}
	}
	if mr.handle.movesTop() {
		y := py
		if snapped, ok := snap(y, ys, mr.threshold); ok {
			y = snapped
			if guide == nil {
				guide = &Guideline{Horizontal: true, Pos: y}
			}
		}
		newHeight := (r.Y + int32(r.Height)) - y
		if newHeight > 0 {
			r.Y = y
			r.Height = uint32(newHeight)
		}
	}
	if mr.handle.movesBottom() {
		y := py
		if snapped, ok := snap(y, ys, mr.threshold); ok {
			y = snapped
			if guide == nil {
				guide = &Guideline{Horizontal: true, Pos: y}
			}
		}
		newHeight := y - r.Y
		if newHeight > 0 {
			r.Height = uint32(newHeight)
		}
	}
	mr.updateGuideline(guide)

	cw, ch := ClampSize(mr.client.SizeHints, float64(r.Width), float64(r.Height))
	r.Width, r.Height = cw, ch
	return r
}

func (mr *MoveResize) updateGuideline(g *Guideline) {
	if mr.guideline != nil && mr.eraseLine != nil {
		mr.eraseLine()
	}
	mr.guideline = g
	if g != nil && mr.drawLine != nil {
		mr.drawLine(*g)
	}
}

// apply issues the ConfigureWindow request for the candidate geometry
// against the client's frame and synthesizes ConfigureNotify to the
// client itself.
func (mr *MoveResize) apply(r x11.Rect) error {
	if err := mr.conn.ConfigureWindow(mr.client.Frame, r, mr.client.Border); err != nil {
		return err
	}
	return mr.conn.SendConfigureNotify(mr.client.Win, r, mr.client.Border)
}

// Commit finalizes the operation: the candidate geometry is already
// applied live, so commit just clears the guideline and records the new
// geometry as LastGeometry.
func (mr *MoveResize) Commit() error {
	mr.updateGuideline(nil)
	mr.client.LastGeometry = mr.client.Geometry
	return nil
}

// Abort restores the geometry captured at grab time.
func (mr *MoveResize) Abort() error {
	mr.updateGuideline(nil)
	mr.client.Geometry = mr.original
	return mr.apply(mr.original)
}

// cursorGlyph maps the operation (and, for a resize, the active handle) to
// a core X cursor font glyph.
func cursorGlyph(resizing bool, h Handle) uint16 {
	if !resizing {
		return xcursor.Fleur
	}
	switch h {
	case HandleN:
		return xcursor.TopSide
	case HandleS:
		return xcursor.BottomSide
	case HandleE:
		return xcursor.RightSide
	case HandleW:
		return xcursor.LeftSide
	case HandleNE:
		return xcursor.TopRightCorner
	case HandleNW:
		return xcursor.TopLeftCorner
	case HandleSE:
		return xcursor.BottomRightCorner
	case HandleSW:
		return xcursor.BottomLeftCorner
	default:
		return xcursor.Fleur
	}
}

// grabCursor loads the cursor glyph for the operation's current state,
// used by the manager when issuing GrabPointer. A load failure falls back
// to the null cursor (leaving whatever glyph the pointer already had).
func (mr *MoveResize) grabCursor() xproto.Cursor {
	cur, err := mr.conn.CreateCursor(cursorGlyph(mr.resizing, mr.handle))
	if err != nil {
		return 0
	}
	return cur
}
