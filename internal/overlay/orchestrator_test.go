package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestRegisterRequiresSource(t *testing.T) {
	f := newFixture()
	o := NewOrchestrator(f.platform(), NewRegistry())

	err := o.Register(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoPinSource)
	assert.Zero(t, f.sandbox.requestCount(), "no work should start on invalid input")
}

func TestRegisterDuplicateIDs(t *testing.T) {
	f := newFixture()
	reg := NewRegistry()
	o := NewOrchestrator(f.platform(), reg)

	pins := []Pin{pin("p1", "first"), pin("p1", "second")}
	require.NoError(t, o.Register(context.Background(), pins, ""))

	adds := f.overlays.addsFor("p1")
	require.Len(t, adds, 1, "exactly one overlay per id")
	assert.Equal(t, AttachmentHandle("h:first"), adds[0].Attachment)
	assert.Equal(t, 2, f.sandbox.requestCount(), "every pin gets an attachment request")
	assert.True(t, reg.Has("p1"))
}

func TestRegisterFirstInListWinsDespiteOrder(t *testing.T) {
	f := newFixture()
	f.sandbox.delays = map[string]time.Duration{"first": 30 * time.Millisecond}
	o := NewOrchestrator(f.platform(), NewRegistry())

	pins := []Pin{pin("p1", "first"), pin("p1", "second"), pin("p2", "other")}
	require.NoError(t, o.Register(context.Background(), pins, ""))

	adds := f.overlays.addsFor("p1")
	require.Len(t, adds, 1)
	assert.Equal(t, AttachmentHandle("h:first"), adds[0].Attachment)
	assert.Equal(t, []string{"p1", "p2"}, f.overlays.ids())
}

func TestRegisterOverlayFields(t *testing.T) {
	f := newFixture()
	o := NewOrchestrator(f.platform(), NewRegistry())

	plain := pin("plain", "a")
	styled := pin("styled", "b")
	styled.Color = "#ff8800"
	styled.IconID = "info"
	styled.StemVisible = true
	styled.Opacity = 0.5

	require.NoError(t, o.Register(context.Background(), []Pin{plain, styled}, ""))

	got := f.overlays.addsFor("plain")[0]
	assert.Equal(t, DefaultColor, got.Color)
	assert.Empty(t, got.IconID)
	assert.Equal(t, plain.Anchor, got.Anchor)
	assert.Equal(t, plain.Stem, got.Stem)

	got = f.overlays.addsFor("styled")[0]
	assert.Equal(t, "#ff8800", got.Color)
	assert.Equal(t, "info", got.IconID)
	assert.True(t, got.StemVisible)
	assert.Equal(t, float32(0.5), got.Opacity)
}

func TestRegisterAppendsStoredPins(t *testing.T) {
	f := newFixture()
	f.store.pins["house"] = []Pin{pin("s1", "x"), pin("e1", "dup")}
	o := NewOrchestrator(f.platform(), NewRegistry())

	require.NoError(t, o.Register(context.Background(), []Pin{pin("e1", "explicit")}, "house"))

	assert.Equal(t, []string{"e1", "s1"}, f.overlays.ids())
	assert.Equal(t, AttachmentHandle("h:explicit"), f.overlays.addsFor("e1")[0].Attachment)
}

func TestRegisterModelOnly(t *testing.T) {
	f := newFixture()
	f.store.pins["house"] = []Pin{pin("s1", "x")}
	o := NewOrchestrator(f.platform(), NewRegistry())

	require.NoError(t, o.Register(context.Background(), nil, "house"))
	assert.Equal(t, []string{"s1"}, f.overlays.ids())
}

func TestRegisterFetchFailure(t *testing.T) {
	f := newFixture()
	f.store.err = errBoom
	o := NewOrchestrator(f.platform(), NewRegistry())

	err := o.Register(context.Background(), []Pin{pin("a", "a")}, "house")
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.overlays.ids(), "nothing is registered when the fetch fails")
}

func TestRegisterFailsWholeBatch(t *testing.T) {
	f := newFixture()
	f.sandbox.fail = map[string]bool{"bad": true}
	f.sandbox.block = map[string]bool{"slow": true}
	o := NewOrchestrator(f.platform(), NewRegistry())

	pins := []Pin{pin("a", "bad"), pin("b", "slow")}
	err := o.Register(context.Background(), pins, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var perr *PinError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "a", perr.PinID)
	assert.Empty(t, f.overlays.ids())
}

func TestRegisterAddFailureReleasesID(t *testing.T) {
	f := newFixture()
	f.overlays.fail = map[string]bool{"a": true}
	reg := NewRegistry()
	o := NewOrchestrator(f.platform(), reg)

	err := o.Register(context.Background(), []Pin{pin("a", "a")}, "")
	require.ErrorIs(t, err, errBoom)
	assert.False(t, reg.Has("a"), "failed add must not keep the id claimed")

	f.overlays.fail = nil
	require.NoError(t, o.Register(context.Background(), []Pin{pin("a", "a")}, ""))
	assert.Len(t, f.overlays.addsFor("a"), 1)
}

func TestRegisterIsolatedFailures(t *testing.T) {
	f := newFixture()
	f.sandbox.fail = map[string]bool{"bad": true}
	f.overlays.fail = map[string]bool{"c": true}
	o := NewOrchestrator(f.platform(), NewRegistry(), WithIsolatedFailures())

	pins := []Pin{pin("a", "bad"), pin("b", "ok"), pin("c", "ok2"), pin("d", "ok3")}
	err := o.Register(context.Background(), pins, "")

	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var failed []string
	for _, e := range errs {
		var perr *PinError
		require.True(t, errors.As(e, &perr))
		failed = append(failed, perr.PinID)
	}
	assert.Equal(t, []string{"a", "c"}, failed)
	assert.Equal(t, []string{"b", "d"}, f.overlays.ids())
}

func TestRegisterIsolatedFailedIDStaysClaimedForBatch(t *testing.T) {
	f := newFixture()
	f.overlays.fail = map[string]bool{"a": true}
	reg := NewRegistry()
	o := NewOrchestrator(f.platform(), reg, WithIsolatedFailures())

	err := o.Register(context.Background(), []Pin{pin("a", "first"), pin("a", "second"), pin("b", "ok")}, "")

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1, "later pin with the failed id is a duplicate")
	assert.Equal(t, []string{"b"}, f.overlays.ids())
	assert.False(t, reg.Has("a"), "id is free once the batch returns")
}

func TestRegisterReleasesUnusedAttachments(t *testing.T) {
	f := newFixture()
	f.overlays.fail = map[string]bool{"c": true}
	o := NewOrchestrator(f.platform(), NewRegistry(), WithIsolatedFailures())

	pins := []Pin{pin("p1", "a"), pin("p1", "b"), pin("c", "c")}
	require.Error(t, o.Register(context.Background(), pins, ""))

	assert.Equal(t, map[AttachmentHandle]int{"h:a": 1}, f.sandbox.held())
}

func TestRegisterFailedBatchReleasesAttachments(t *testing.T) {
	f := newFixture()
	f.sandbox.fail = map[string]bool{"bad": true}
	f.sandbox.delays = map[string]time.Duration{"bad": 20 * time.Millisecond}
	o := NewOrchestrator(f.platform(), NewRegistry())

	pins := []Pin{pin("a", "ok"), pin("b", "bad"), pin("c", "ok2")}
	require.ErrorIs(t, o.Register(context.Background(), pins, ""), errBoom)

	assert.Equal(t, []string{"a"}, f.overlays.ids())
	assert.Equal(t, map[AttachmentHandle]int{"h:ok": 1}, f.sandbox.held(), "only attachments with an overlay are kept")
}

func TestRegisterTimeout(t *testing.T) {
	f := newFixture()
	f.sandbox.block = map[string]bool{"hang": true}
	o := NewOrchestrator(f.platform(), NewRegistry(), WithTimeout(20*time.Millisecond))

	start := time.Now()
	err := o.Register(context.Background(), []Pin{pin("a", "hang")}, "")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRegisterCancelled(t *testing.T) {
	f := newFixture()
	f.sandbox.block = map[string]bool{"hang": true}
	o := NewOrchestrator(f.platform(), NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := o.Register(ctx, []Pin{pin("a", "hang"), pin("b", "ok")}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryAcrossBatches(t *testing.T) {
	f := newFixture()
	o := NewOrchestrator(f.platform(), NewRegistry())

	require.NoError(t, o.Register(context.Background(), []Pin{pin("p1", "a")}, ""))
	require.NoError(t, o.Register(context.Background(), []Pin{pin("p1", "b"), pin("p2", "c")}, ""))

	assert.Len(t, f.overlays.addsFor("p1"), 1)
	assert.Equal(t, []string{"p1", "p2"}, f.overlays.ids())
}
