package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Well-known atom names the core interns at startup. Private (_DIM_*) atoms
// are defined here rather than left to lazy interning so that a fresh
// connection always has them cached before the first client is adopted.
const (
	AtomWMState           = "WM_STATE"
	AtomWMChangeState     = "WM_CHANGE_STATE"
	AtomWMProtocols       = "WM_PROTOCOLS"
	AtomWMDeleteWindow    = "WM_DELETE_WINDOW"
	AtomWMTakeFocus       = "WM_TAKE_FOCUS"
	AtomWMNormalHints     = "WM_NORMAL_HINTS"
	AtomWMHints           = "WM_HINTS"
	AtomWMClass           = "WM_CLASS"
	AtomWMCommand         = "WM_COMMAND"
	AtomWMName            = "WM_NAME"
	AtomWMTransientFor    = "WM_TRANSIENT_FOR"
	AtomNetWMName         = "_NET_WM_NAME"
	AtomNetWMState        = "_NET_WM_STATE"
	AtomNetActiveWindow   = "_NET_ACTIVE_WINDOW"
	AtomNetSupported      = "_NET_SUPPORTED"
	AtomNetWMTakeFocus    = "_NET_WM_TAKE_FOCUS"
	AtomStateFullscreen   = "_NET_WM_STATE_FULLSCREEN"
	AtomStateMaxHorz      = "_NET_WM_STATE_MAXIMIZED_HORZ"
	AtomStateMaxVert      = "_NET_WM_STATE_MAXIMIZED_VERT"
	AtomStateAbove        = "_NET_WM_STATE_ABOVE"
	AtomDimTags           = "_DIM_TAGS"
	AtomDimExit           = "_DIM_WM_EXIT"
	AtomDimTagsetExpr     = "_DIM_TAGSET_EXPRESSION"
	AtomDimTagsetUpdate   = "_DIM_TAGSET_UPDATE"
	AtomUTF8String        = "UTF8_STRING"
)

// startupAtoms are interned eagerly by Atoms.Prime so the hot path never
// blocks on InternAtom.
var startupAtoms = []string{
	AtomWMState, AtomWMChangeState, AtomWMProtocols, AtomWMDeleteWindow,
	AtomWMTakeFocus, AtomWMNormalHints, AtomWMHints, AtomWMClass,
	AtomWMCommand, AtomWMName, AtomWMTransientFor, AtomNetWMName,
	AtomNetWMState, AtomNetActiveWindow, AtomNetSupported, AtomNetWMTakeFocus,
	AtomStateFullscreen, AtomStateMaxHorz, AtomStateMaxVert, AtomStateAbove,
	AtomDimTags, AtomDimExit, AtomDimTagsetExpr, AtomDimTagsetUpdate,
	AtomUTF8String,
}

// Atoms is a write-through name<->id cache. It is synchronous with respect
// to the connection: Intern blocks until the server replies the first time
// a name is seen, and never again after.
type Atoms struct {
	xu *xgbutil.XUtil

	mu      sync.RWMutex
	byName  map[string]xproto.Atom
	byAtom  map[xproto.Atom]string
}

// NewAtoms creates an empty atom cache bound to the given connection.
func NewAtoms(xu *xgbutil.XUtil) *Atoms {
	return &Atoms{
		xu:     xu,
		byName: make(map[string]xproto.Atom),
		byAtom: make(map[xproto.Atom]string),
	}
}

// Prime interns every well-known atom up front so that later lookups never
// hit the network on the hot path (event dispatch, focus changes).
func (a *Atoms) Prime() error {
	for _, name := range startupAtoms {
		if _, err := a.Intern(name); err != nil {
			return err
		}
	}
	return nil
}

// Intern returns the atom id for name, fetching it from the server and
// caching the result if this is the first time name has been requested.
func (a *Atoms) Intern(name string) (xproto.Atom, error) {
	a.mu.RLock()
	if atom, ok := a.byName[name]; ok {
		a.mu.RUnlock()
		return atom, nil
	}
	a.mu.RUnlock()

	atom, err := xprop.Atm(a.xu, name)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	a.byName[name] = atom
	a.byAtom[atom] = name
	a.mu.Unlock()
	return atom, nil
}

// Name returns the string name of atom, fetching it from the server the
// first time it is seen (e.g. when decoding an arbitrary PropertyNotify).
func (a *Atoms) Name(atom xproto.Atom) (string, error) {
	a.mu.RLock()
	if name, ok := a.byAtom[atom]; ok {
		a.mu.RUnlock()
		return name, nil
	}
	a.mu.RUnlock()

	name, err := xprop.AtomName(a.xu, atom)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.byAtom[atom] = name
	a.byName[name] = atom
	a.mu.Unlock()
	return name, nil
}

// MustIntern is Intern without an error return, for the startup atoms that
// are guaranteed to exist on any X server; a failure here means the
// connection itself is broken, which Prime will already have reported.
func (a *Atoms) MustIntern(name string) xproto.Atom {
	atom, _ := a.Intern(name)
	return atom
}
