package x11

import (
	"testing"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/google/go-cmp/cmp"
)

func TestVisibleFrame(t *testing.T) {
	client := geom.FromXYWH(100, 130, 800, 600)

	tests := []struct {
		name        string
		decorations Extents
		shadows     Extents
		want        geom.Rect
	}{
		{"undecorated", Extents{}, Extents{}, client},
		{"server side title bar", Extents{Left: 2, Right: 2, Top: 30, Bottom: 2}, Extents{}, geom.Rect{Left: 98, Right: 902, Top: 100, Bottom: 732}},
		{"client side shadows", Extents{}, Extents{Left: 20, Right: 20, Top: 10, Bottom: 30}, geom.Rect{Left: 120, Right: 880, Top: 140, Bottom: 700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibleFrame(client, tt.decorations, tt.shadows); got != tt.want {
				t.Fatalf("VisibleFrame = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccumulateStruts(t *testing.T) {
	const rootWidth, rootHeight = 3840, 1080
	left := geom.FromXYWH(0, 0, 1920, 1080)
	right := geom.FromXYWH(1920, 0, 1920, 1080)

	// A 32px top panel spanning only the left monitor and a 48px bottom
	// panel spanning only the right one.
	top := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}
	bottom := &ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 1920, BottomEndX: 3839}

	var accLeft, accRight dockStruts
	for _, sp := range []*ewmh.WmStrutPartial{top, bottom} {
		accumulateStruts(left, rootWidth, rootHeight, sp, &accLeft)
		accumulateStruts(right, rootWidth, rootHeight, sp, &accRight)
	}

	if want := (dockStruts{top: 32}); accLeft != want {
		t.Fatalf("left monitor struts = %+v, want %+v", accLeft, want)
	}
	if want := (dockStruts{bottom: 48}); accRight != want {
		t.Fatalf("right monitor struts = %+v, want %+v", accRight, want)
	}
}

func TestAccumulateStruts_KeepsLargest(t *testing.T) {
	mon := geom.FromXYWH(0, 0, 1920, 1080)
	var acc dockStruts
	accumulateStruts(mon, 1920, 1080, &ewmh.WmStrutPartial{Left: 40, LeftStartY: 0, LeftEndY: 1079}, &acc)
	accumulateStruts(mon, 1920, 1080, &ewmh.WmStrutPartial{Left: 24, LeftStartY: 0, LeftEndY: 1079}, &acc)
	if acc.left != 40 {
		t.Fatalf("left strut = %d, want 40", acc.left)
	}
}

func TestConfigureValues(t *testing.T) {
	mask, values := configureValues(-1920, 24, 1280, 1416)

	wantMask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	if mask != wantMask {
		t.Fatalf("mask = %#x, want %#x", mask, wantMask)
	}
	// X packs INT16 coordinates into CARD32 slots; a negative x must keep its
	// two's complement bits.
	want := []uint32{0xFFFFF880, 24, 1280, 1416}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
