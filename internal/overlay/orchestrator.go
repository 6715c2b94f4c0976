package overlay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIsolatedFailures keeps registering the remaining pins when one fails.
// The returned error then combines every per-pin failure.
//
// A pin whose overlay could not be added keeps its id for the rest of the
// batch, so a later pin with the same id is skipped as a duplicate. The id is
// free again once the batch returns.
//
// Without it, the first failure fails the whole batch.
func WithIsolatedFailures() Option {
	return func(o *Orchestrator) {
		o.isolate = true
	}
}

// WithTimeout bounds each batch, fetch included.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// Orchestrator registers batches of pins as overlays.
type Orchestrator struct {
	store    PinStore
	sandbox  AttachmentSandbox
	overlays OverlayHost
	registry *Registry
	log      *zap.Logger

	isolate bool
	timeout time.Duration
}

// NewOrchestrator creates an orchestrator that records registrations in reg.
func NewOrchestrator(p Platform, reg *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    p.Store,
		sandbox:  p.Sandbox,
		overlays: p.Overlays,
		registry: reg,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// slot carries one attachment result from the fan-out to the registrar.
type slot struct {
	done   chan struct{}
	handle AttachmentHandle
	err    error
	shown  bool
}

// Register adds an overlay for every pin in pins followed by the pins stored
// for modelID. Pins whose id is already registered, in this batch or an
// earlier one, are skipped silently.
//
// Attachments are requested concurrently. Overlays are added in list order,
// so the first pin with a given id is the one registered.
//
// On failure, overlays added before the failure stay on the platform.
// Attachments that end up without an overlay are released.
func (o *Orchestrator) Register(ctx context.Context, pins []Pin, modelID string) error {
	if len(pins) == 0 && modelID == "" {
		return ErrNoPinSource
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	work := make([]Pin, 0, len(pins))
	work = append(work, pins...)
	if modelID != "" {
		if o.store == nil {
			return fmt.Errorf("fetching pins for model %q: %w: no pin store", modelID, ErrIncompletePlatform)
		}
		fetched, err := o.store.Pins(ctx, modelID)
		if err != nil {
			return fmt.Errorf("fetching pins for model %q: %w", modelID, err)
		}
		work = append(work, fetched...)
	}
	if len(work) == 0 {
		return nil
	}

	start := time.Now()
	slots := make([]slot, len(work))
	for i := range slots {
		slots[i].done = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)

	for i := range work {
		g.Go(func() error {
			s := &slots[i]
			defer close(s.done)

			h, err := o.sandbox.Register(gctx, work[i].Attachment)
			if err != nil {
				s.err = &PinError{PinID: work[i].ID, Op: "register attachment", Err: err}
				if !o.isolate {
					return s.err
				}
				return nil
			}
			s.handle = h
			return nil
		})
	}

	var (
		failures error
		added    int
		skipped  int
		rejected []string
	)
	g.Go(func() error {
		for i := range work {
			s := &slots[i]
			select {
			case <-s.done:
			case <-gctx.Done():
				return gctx.Err()
			}

			if s.err != nil {
				if !o.isolate {
					return s.err
				}
				failures = multierr.Append(failures, s.err)
				continue
			}

			p := work[i]
			if !o.registry.Claim(p.ID) {
				skipped++
				o.log.Debug("duplicate pin skipped", zap.String("pin", p.ID))
				continue
			}

			if err := o.overlays.AddOverlay(gctx, overlayFor(p, s.handle)); err != nil {
				rejected = append(rejected, p.ID)
				perr := &PinError{PinID: p.ID, Op: "add overlay", Err: err}
				if !o.isolate {
					return perr
				}
				failures = multierr.Append(failures, perr)
				continue
			}
			o.registry.Bind(p.ID, s.handle)
			s.shown = true
			added++
		}
		return nil
	})

	err := g.Wait()

	for _, id := range rejected {
		o.registry.Forget(id)
	}
	for i := range slots {
		if !slots[i].shown {
			releaseAttachment(o.sandbox, slots[i].handle)
		}
	}

	if err != nil {
		o.log.Warn("pin batch failed",
			zap.Int("pins", len(work)),
			zap.Int("added", added),
			zap.Error(err),
		)
		return err
	}

	o.log.Info("pin batch registered",
		zap.String("model", modelID),
		zap.Int("pins", len(work)),
		zap.Int("added", added),
		zap.Int("duplicates", skipped),
		zap.Int("failed", len(multierr.Errors(failures))),
		zap.Duration("took", time.Since(start)),
	)
	return failures
}
