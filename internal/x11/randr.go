package x11

import (
	"github.com/BurntSushi/xgb/randr"
)

// Output describes one active CRTC's geometry, the unit the snapping and
// tiling-adjacent layout code reasons about.
type Output struct {
	CRTC randr.Crtc
	Rect Rect
}

// Outputs returns the geometry of every enabled CRTC, or a single entry
// covering the whole root window if RandR wasn't detected at connection
// time.
func (c *Conn) Outputs() ([]Output, error) {
	if !c.hasRandR {
		return []Output{{Rect: c.Screen()}}, nil
	}

	res, err := randr.GetScreenResourcesCurrent(c.XU.Conn(), c.root).Reply()
	if err != nil {
		return nil, err
	}

	var outs []Output
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(c.XU.Conn(), crtc, res.ConfigTimestamp).Reply()
		if err != nil || info == nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 {
			continue // disabled CRTC
		}
		outs = append(outs, Output{
			CRTC: crtc,
			Rect: Rect{
				X: int32(info.X), Y: int32(info.Y),
				Width: uint32(info.Width), Height: uint32(info.Height),
			},
		})
	}
	if len(outs) == 0 {
		outs = []Output{{Rect: c.Screen()}}
	}
	return outs, nil
}

// WatchOutputChanges selects RandR screen-change notifications on the root
// window so the manager can re-run snap-target discovery and re-clamp
// window placement after a monitor is connected, disconnected or resized.
func (c *Conn) WatchOutputChanges() error {
	if !c.hasRandR {
		return nil
	}
	return randr.SelectInputChecked(
		c.XU.Conn(), c.root, randr.NotifyMaskScreenChange,
	).Check()
}

// IsScreenChangeNotify reports whether ev is the RandR event that
// WatchOutputChanges subscribed to.
func IsScreenChangeNotify(ev interface{}) bool {
	_, ok := ev.(randr.ScreenChangeNotifyEvent)
	return ok
}

// OutputAt returns the output whose rect contains pt, or the first output
// if none does (matches X's own "pointer is always somewhere" behavior at
// screen corners during a drag).
func OutputAt(outs []Output, pt Point) Output {
	for _, o := range outs {
		if int32(pt.X) >= o.Rect.X && int32(pt.X) < o.Rect.Right() &&
			int32(pt.Y) >= o.Rect.Y && int32(pt.Y) < o.Rect.Bottom() {
			return o
		}
	}
	if len(outs) > 0 {
		return outs[0]
	}
	return Output{}
}
