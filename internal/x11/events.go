package x11

import (
	"reflect"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Handler receives one event already known to target a particular window.
// It returns true if it consumed the event, false to let it fall through
// to the default handler.
type Handler func(ev xgb.Event) (consumed bool)

// ErrorHandler receives a protocol error correlated to a request the
// caller tagged via Demux.Track.
type ErrorHandler func(err xgb.Error)

// Demux routes each incoming X event to the handler chain registered for
// its target window. Substructure-redirect events on the root
// (MapRequest, ConfigureRequest, CirculateRequest) are reserved for the
// manager itself and delivered through a separate, single-slot hook rather
// than the per-window chain, since only the manager ever acts on them.
type Demux struct {
	conn *Conn

	mu       sync.Mutex
	chains   map[xproto.Window][]Handler
	fallback Handler

	// root hooks: exactly one handler each, set once at manager startup.
	onMapRequest       func(xproto.MapRequestEvent)
	onConfigureRequest func(xproto.ConfigureRequestEvent)
	onCirculateRequest func(xproto.CirculateRequestEvent)

	// pending correlates an in-flight request's sequence number to an
	// error handler, so a BadWindow/BadDrawable/BadAccess racing a
	// vanished client can be routed to per-request recovery instead of
	// just logged.
	pending map[uint16]ErrorHandler

	onError func(xgb.Error)

	lastTime xproto.Timestamp
}

// NewDemux creates an empty demultiplexer bound to conn.
func NewDemux(conn *Conn) *Demux {
	return &Demux{
		conn:    conn,
		chains:  make(map[xproto.Window][]Handler),
		pending: make(map[uint16]ErrorHandler),
	}
}

// OnWindow registers a handler for events targeting win. Handlers run in
// registration order; the first to return true stops the chain.
func (d *Demux) OnWindow(win xproto.Window, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chains[win] = append(d.chains[win], h)
}

// Forget removes every handler registered for win. Called when a frame or
// client window is destroyed.
func (d *Demux) Forget(win xproto.Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.chains, win)
}

// SetFallback installs the handler invoked for events that no registered
// chain consumed.
func (d *Demux) SetFallback(h Handler) { d.fallback = h }

// OnMapRequest, OnConfigureRequest and OnCirculateRequest install the
// manager's single substructure-redirect handlers.
func (d *Demux) OnMapRequest(f func(xproto.MapRequestEvent))             { d.onMapRequest = f }
func (d *Demux) OnConfigureRequest(f func(xproto.ConfigureRequestEvent)) { d.onConfigureRequest = f }
func (d *Demux) OnCirculateRequest(f func(xproto.CirculateRequestEvent)) { d.onCirculateRequest = f }

// OnDefaultError installs the handler for protocol errors whose sequence
// number wasn't tracked via Track.
func (d *Demux) OnDefaultError(f func(xgb.Error)) { d.onError = f }

// Track registers h to run if the request identified by cookie's sequence
// number produces a protocol error. It is a no-op if the request succeeds;
// the entry is consumed (removed) the first time it is matched.
func (d *Demux) Track(seq uint16, h ErrorHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[seq] = h
}

// targetWindow extracts the window an event is "about".3:
// event.window for most notifications, event.event for input events that
// carry both an event-window and a child.
func targetWindow(ev xgb.Event) (xproto.Window, bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		return e.Event, true
	case xproto.KeyReleaseEvent:
		return e.Event, true
	case xproto.ButtonPressEvent:
		return e.Event, true
	case xproto.ButtonReleaseEvent:
		return e.Event, true
	case xproto.MotionNotifyEvent:
		return e.Event, true
	case xproto.EnterNotifyEvent:
		return e.Event, true
	case xproto.LeaveNotifyEvent:
		return e.Event, true
	case xproto.FocusInEvent:
		return e.Event, true
	case xproto.FocusOutEvent:
		return e.Event, true
	case xproto.MapNotifyEvent:
		return e.Window, true
	case xproto.UnmapNotifyEvent:
		return e.Window, true
	case xproto.DestroyNotifyEvent:
		return e.Window, true
	case xproto.ConfigureNotifyEvent:
		return e.Window, true
	case xproto.PropertyNotifyEvent:
		return e.Window, true
	case xproto.ClientMessageEvent:
		return e.Window, true
	case xproto.ReparentNotifyEvent:
		return e.Window, true
	}
	return 0, false
}

// eventTime extracts the server timestamp carried by events that have one,
// so Conn.CurrentTime always reflects the most recently observed time.
func eventTime(ev xgb.Event) (xproto.Timestamp, bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		return e.Time, true
	case xproto.KeyReleaseEvent:
		return e.Time, true
	case xproto.ButtonPressEvent:
		return e.Time, true
	case xproto.ButtonReleaseEvent:
		return e.Time, true
	case xproto.MotionNotifyEvent:
		return e.Time, true
	case xproto.EnterNotifyEvent:
		return e.Time, true
	case xproto.LeaveNotifyEvent:
		return e.Time, true
	case xproto.PropertyNotifyEvent:
		return e.Time, true
	}
	return 0, false
}

// dispatch delivers a single event to the manager-owned root hooks, the
// per-window handler chain, or the fallback, in that order.
func (d *Demux) dispatch(ev xgb.Event) {
	if t, ok := eventTime(ev); ok {
		d.lastTime = t
	}

	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		if d.onMapRequest != nil {
			d.onMapRequest(e)
		}
		return
	case xproto.ConfigureRequestEvent:
		if d.onConfigureRequest != nil {
			d.onConfigureRequest(e)
		}
		return
	case xproto.CirculateRequestEvent:
		if d.onCirculateRequest != nil {
			d.onCirculateRequest(e)
		}
		return
	}

	win, ok := targetWindow(ev)
	if !ok {
		if d.fallback != nil {
			d.fallback(ev)
		}
		return
	}

	d.mu.Lock()
	chain := append([]Handler(nil), d.chains[win]...)
	d.mu.Unlock()

	for _, h := range chain {
		if h(ev) {
			return
		}
	}
	if d.fallback != nil {
		d.fallback(ev)
	}
}

// dispatchError routes a server error to its tracked handler by sequence
// number, falling back to the default error handler.
func (d *Demux) dispatchError(xerr xgb.Error) {
	seq := errorSequence(xerr)
	d.mu.Lock()
	h, ok := d.pending[seq]
	if ok {
		delete(d.pending, seq)
	}
	d.mu.Unlock()
	if ok {
		h(xerr)
		return
	}
	if d.onError != nil {
		d.onError(xerr)
	}
}

// WaitForPropertyNotify blocks on raw WaitForEvent until a PropertyNotify
// for (win, atom) arrives, returning its timestamp. Used by short-lived
// remote-control connections that need a real server timestamp but never
// run a Demux-routed event loop of their own.
func (c *Conn) WaitForPropertyNotify(win xproto.Window, atom xproto.Atom) (xproto.Timestamp, error) {
	for {
		ev, xerr, err := c.WaitForEvent()
		if err != nil {
			return 0, err
		}
		if xerr != nil {
			continue
		}
		pn, ok := ev.(xproto.PropertyNotifyEvent)
		if !ok {
			continue
		}
		if pn.Window == win && pn.Atom == atom {
			return pn.Time, nil
		}
	}
}

// errorSequence extracts the sequence number from any xgb.Error via
// reflection, since the generated per-error-code structs don't share an
// interface beyond xgb.Error's Error()/BadId()/SequenceId() methods -- the
// latter is exactly what we want, but calling it through a type switch
// over every BadFooError variant would be a maintenance trap every time a
// new extension is wired in.
func errorSequence(err xgb.Error) uint16 {
	type sequencer interface {
		SequenceId() uint16
	}
	if s, ok := err.(sequencer); ok {
		return s.SequenceId()
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	f := v.FieldByName("Sequence")
	if f.IsValid() && f.Kind() == reflect.Uint16 {
		return uint16(f.Uint())
	}
	return 0
}
