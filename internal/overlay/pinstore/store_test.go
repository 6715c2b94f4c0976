package pinstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/pkg/math"
)

func samplePins() []overlay.Pin {
	return []overlay.Pin{
		{
			ID:          "door",
			Anchor:      math.Vec3{X: 120.5, Y: -10, Z: 480.25},
			Stem:        math.Vec3{Y: 30},
			Opacity:     0.75,
			StemVisible: true,
			Color:       "#ff0000",
			IconID:      "info",
			Attachment:  "<p>Front door</p>",
		},
		{
			ID:         "window",
			Anchor:     math.Vec3{X: -300, Y: 50, Z: 100},
			Opacity:    1,
			Attachment: "<p>Window</p>",
		},
	}
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	files, err := Open(KindYAML, filepath.Join(dir, "pins"))
	require.NoError(t, err)
	db, err := Open(KindSQLite, filepath.Join(dir, "pins.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		files.Close()
		db.Close()
	})
	return map[string]Store{KindYAML: files, KindSQLite: db}
}

func TestStoreRoundTrip(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "house", samplePins()))

			got, err := s.Pins(ctx, "house")
			require.NoError(t, err)
			assert.Equal(t, samplePins(), got)
		})
	}
}

func TestStoreMissingModel(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			_, err := s.Pins(context.Background(), "nowhere")
			assert.ErrorIs(t, err, ErrModelNotFound)
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "house", samplePins()))
			require.NoError(t, s.Save(ctx, "house", samplePins()[1:]))
			require.NoError(t, s.Save(ctx, "barn", samplePins()[:1]))

			got, err := s.Pins(ctx, "house")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "window", got[0].ID)

			models, err := s.Models(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"barn", "house"}, models)
		})
	}
}

func TestStoreKeepsDuplicateIDs(t *testing.T) {
	pins := []overlay.Pin{
		{ID: "p1", Attachment: "first"},
		{ID: "p1", Attachment: "second"},
	}
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "m", pins))

			got, err := s.Pins(ctx, "m")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "first", got[0].Attachment)
		})
	}
}

func TestFileStoreRejectsPathModelIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := s.Pins(context.Background(), id)
		assert.Error(t, err, id)
		assert.NotErrorIs(t, err, ErrModelNotFound, id)
	}
}

func TestFileStoreReadsHandWrittenYAML(t *testing.T) {
	dir := t.TempDir()
	doc := `model: gallery
pins:
  - id: statue
    anchor: {x: 0, y: 100, z: 490}
    stem: {x: 0, y: 25, z: 0}
    opacity: 0.9
    stem_visible: true
    attachment: "<h2>Statue</h2>"
  - id: door
    anchor: {x: 490, y: 0, z: 0}
    attachment: "<p>Door</p>"
  - id: hidden
    anchor: {x: -490, y: 0, z: 0}
    opacity: 0
    attachment: ""
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gallery.yaml"), []byte(doc), 0644))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	pins, err := s.Pins(context.Background(), "gallery")
	require.NoError(t, err)
	require.Len(t, pins, 3)
	assert.Equal(t, "statue", pins[0].ID)
	assert.Equal(t, math.Vec3{Y: 100, Z: 490}, pins[0].Anchor)
	assert.True(t, pins[0].StemVisible)
	assert.Equal(t, float32(0.9), pins[0].Opacity)
	assert.Empty(t, pins[0].Color, "default color is applied at registration")

	assert.Equal(t, float32(overlay.DefaultOpacity), pins[1].Opacity, "missing opacity defaults to opaque")
	assert.Zero(t, pins[2].Opacity, "explicit zero is kept")
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open("postgres", t.TempDir())
	assert.Error(t, err)
}
