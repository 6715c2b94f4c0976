package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/pkg/math"
)

type lookRecorder struct {
	targets []math.Vec3
}

func (l *lookRecorder) LookToward(p math.Vec3) {
	l.targets = append(l.targets, p)
}

func overlayFor(id string) overlay.Overlay {
	return overlay.Overlay{
		PinID:      id,
		Anchor:     math.Vec3{X: 1, Y: 2, Z: 3},
		Attachment: "h",
		Opacity:    1,
		Color:      overlay.DefaultColor,
	}
}

func TestOverlaysLifecycle(t *testing.T) {
	o := NewOverlays()
	ctx := context.Background()

	var snapshots [][]overlay.Overlay
	o.OnChange(func(list []overlay.Overlay) { snapshots = append(snapshots, list) })

	require.NoError(t, o.AddOverlay(ctx, overlayFor("a")))
	require.NoError(t, o.AddOverlay(ctx, overlayFor("b")))
	assert.ErrorIs(t, o.AddOverlay(ctx, overlayFor("a")), ErrOverlayExists)

	updated := overlayFor("a")
	updated.Color = "#fff"
	require.NoError(t, o.UpdateOverlay(ctx, updated))
	assert.ErrorIs(t, o.UpdateOverlay(ctx, overlayFor("zz")), ErrNoOverlay)

	list := o.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].PinID)
	assert.Equal(t, "#fff", list[0].Color)

	require.NoError(t, o.RemoveOverlay(ctx, "a"))
	assert.ErrorIs(t, o.RemoveOverlay(ctx, "a"), ErrNoOverlay)

	_, ok := o.Get("a")
	assert.False(t, ok)
	assert.Len(t, snapshots, 4, "add, add, update, remove")
	assert.Len(t, snapshots[3], 1)
}

func TestOnChangeListenerMayRegisterAnother(t *testing.T) {
	o := NewOverlays()
	var first, second int
	o.OnChange(func([]overlay.Overlay) {
		first++
		if first == 1 {
			o.OnChange(func([]overlay.Overlay) { second++ })
		}
	})

	require.NoError(t, o.AddOverlay(context.Background(), overlayFor("a")))
	assert.Equal(t, 1, first)
	assert.Zero(t, second, "listener added during a change sees the next one")

	require.NoError(t, o.RemoveOverlay(context.Background(), "a"))
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestOverlaysRejectBadColor(t *testing.T) {
	o := NewOverlays()
	bad := overlayFor("a")
	bad.Color = "blue"
	assert.Error(t, o.AddOverlay(context.Background(), bad))
	assert.Empty(t, o.List())
}

func TestNavigator(t *testing.T) {
	look := &lookRecorder{}
	o := NewOverlays()
	n := NewNavigator(look, o)
	ctx := context.Background()

	require.NoError(t, n.MoveTo(ctx, math.Vec3{Z: 500}))
	assert.ErrorIs(t, n.MoveToPin(ctx, "a"), overlay.ErrUnknownPin)

	require.NoError(t, o.AddOverlay(ctx, overlayFor("a")))
	require.NoError(t, n.MoveToPin(ctx, "a"))

	assert.Equal(t, []math.Vec3{{Z: 500}, {X: 1, Y: 2, Z: 3}}, look.targets)
}

func TestLocalPlatformEndToEnd(t *testing.T) {
	look := &lookRecorder{}
	overlays := NewOverlays()
	p := overlay.Platform{
		Sandbox:   NewSandbox(),
		Overlays:  overlays,
		Navigator: NewNavigator(look, overlays),
	}

	h, err := overlay.Setup(p, nil, "")
	require.NoError(t, err)

	pins := []overlay.Pin{
		{ID: "p1", Anchor: math.Vec3{X: 500}, Attachment: "<b>first</b><script>x</script>"},
		{ID: "p1", Anchor: math.Vec3{X: -500}, Attachment: "second"},
	}
	require.NoError(t, h.AddPins(context.Background(), pins...))

	list := overlays.List()
	require.Len(t, list, 1)
	assert.Equal(t, math.Vec3{X: 500}, list[0].Anchor)

	sandbox := p.Sandbox.(*Sandbox)
	doc, ok := sandbox.Content(list[0].Attachment)
	require.True(t, ok)
	assert.Equal(t, "<b>first</b>", doc)
	assert.Equal(t, 1, sandbox.Len(), "the duplicate's attachment is released")

	require.NoError(t, h.MoveToPin(context.Background(), "p1"))
	assert.Equal(t, []math.Vec3{{X: 500}}, look.targets)

	require.NoError(t, h.AddPins(context.Background(), pins...))
	require.NoError(t, h.UpdatePin(context.Background(), overlay.Pin{ID: "p1", Attachment: "<i>third</i>"}))
	assert.Equal(t, 1, sandbox.Len())

	require.NoError(t, h.RemovePin(context.Background(), "p1"))
	assert.Empty(t, overlays.List())
	assert.Zero(t, sandbox.Len())
}

func TestMarkers(t *testing.T) {
	list := []overlay.Overlay{
		{PinID: "a", Anchor: math.Vec3{X: 100}, Stem: math.Vec3{Y: 20}, Opacity: 0.5, Color: "#ff0000"},
		{PinID: "b", Anchor: math.Vec3{Z: 100}, Opacity: 2, Color: "nope"},
	}

	got := Markers(list)
	require.Len(t, got, 2)
	assert.Equal(t, math.Vec3{X: 100, Y: 20}, got[0].Position)
	assert.Equal(t, [4]float32{1, 0, 0, 0.5}, got[0].Color)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, got[1].Color, "bad color falls back, opacity clamps")
}
