// Package acceptflow runs what happens after a recipient says yes: the card
// flips to its accepted state at once, and a best-effort pipeline captures
// the card, stores the image, records the acceptance and notifies the owner.
package acceptflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"valentine/internal/capture"
	"valentine/internal/storage"
	"valentine/internal/valentine"
)

var ErrNoArtifact = errors.New("no artifact available")

const pngContentType = "image/png"

type Recorder interface {
	RecordAcceptance(ctx context.Context, pageID string, screenshotURL *string) error
}

type Notifier interface {
	NotifyAcceptance(ctx context.Context, pageID string, screenshotURL, receiverName *string) error
}

// Saver hands an artifact to whoever asked for it.
type Saver interface {
	SaveURL(url, filename string) error
	SaveBytes(data []byte, filename string) error
}

type Deps struct {
	Rasterizer  capture.Rasterizer
	Uploader    storage.Storage
	Recorder    Recorder
	Notifier    Notifier
	Celebration Celebration
	Logger      *zap.Logger

	// Captures bounds how many rasterizations run at once. Shared by every
	// orchestrator built from the same Deps; nil means unbounded.
	Captures *semaphore.Weighted
}

type Options struct {
	SettleDelay time.Duration
	Scale       float64
	Surface     capture.Surface
	Background  color.RGBA

	// InitialAccepted starts the instance in Accepted, for pages whose
	// acceptance was persisted earlier.
	InitialAccepted bool
	InitialImageURL string

	Observer func(State)

	// OnSettled runs when the pipeline has finished. recorded reports
	// whether the acceptance is known to be persisted.
	OnSettled func(recorded bool)
}

type Orchestrator struct {
	pageID string
	deps   Deps
	opts   Options
	log    *zap.Logger

	mu       sync.Mutex
	state    State
	imageURL string

	wg sync.WaitGroup

	now func() time.Time
}

func New(pageID string, deps Deps, opts Options) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rasterizer == nil {
		deps.Rasterizer = capture.Disabled{}
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	o := &Orchestrator{
		pageID: pageID,
		deps:   deps,
		opts:   opts,
		log:    deps.Logger.With(zap.String("page_id", pageID)),
		state:  Idle,
		now:    time.Now,
	}
	if opts.InitialAccepted {
		o.state = Accepted
		o.imageURL = opts.InitialImageURL
	}
	return o
}

func (o *Orchestrator) PageID() string { return o.pageID }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ImageURL is the stored image reference, empty until an upload succeeds.
func (o *Orchestrator) ImageURL() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.imageURL
}

// Accept moves an idle instance to Accepted and starts the pipeline in the
// background. It reports false, doing nothing, when the instance is already
// processing or accepted. The pipeline outlives ctx cancellation.
func (o *Orchestrator) Accept(ctx context.Context, receiverName *string) bool {
	o.mu.Lock()
	if o.state != Idle {
		o.mu.Unlock()
		return false
	}
	o.setState(Processing)
	o.setState(Accepted)
	o.mu.Unlock()

	if c := o.deps.Celebration; c != nil {
		o.wg.Add(1)
		c.Start(o.pageID, o.wg.Done)
	}

	runCtx := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(runCtx, receiverName)
	}()
	return true
}

// setState must be called with mu held.
func (o *Orchestrator) setState(s State) {
	o.state = s
	if o.opts.Observer != nil {
		o.opts.Observer(s)
	}
}

func (o *Orchestrator) run(ctx context.Context, receiverName *string) {
	if o.opts.SettleDelay > 0 {
		t := time.NewTimer(o.opts.SettleDelay)
		<-t.C
	}

	var imageURL *string
	if data := o.capture(ctx); data != nil {
		if url := o.upload(ctx, data); url != "" {
			o.mu.Lock()
			o.imageURL = url
			o.mu.Unlock()
			imageURL = &url
		}
	}

	recorded := o.record(ctx, imageURL)
	o.notify(ctx, imageURL, receiverName)

	if o.opts.OnSettled != nil {
		o.opts.OnSettled(recorded)
	}
}

// capture returns nil when there is nothing to rasterize or rasterizing fails.
func (o *Orchestrator) capture(ctx context.Context) []byte {
	if !o.opts.Surface.Valid() {
		o.log.Warn("capture skipped: no surface")
		return nil
	}
	if sem := o.deps.Captures; sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			o.log.Warn("capture abandoned", zap.Error(err))
			return nil
		}
		defer sem.Release(1)
	}
	data, err := o.deps.Rasterizer.Rasterize(ctx, o.opts.Surface, capture.RenderOptions{
		Scale:      o.opts.Scale,
		Background: o.opts.Background,
	})
	if err != nil {
		o.log.Warn("capture failed", zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func (o *Orchestrator) upload(ctx context.Context, data []byte) string {
	if o.deps.Uploader == nil {
		return ""
	}
	key := fmt.Sprintf("%s-%d.png", o.pageID, o.now().UnixMilli())
	url, err := o.deps.Uploader.Save(ctx, key, bytes.NewReader(data), pngContentType)
	if err != nil {
		o.log.Warn("upload failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func (o *Orchestrator) record(ctx context.Context, imageURL *string) bool {
	if o.deps.Recorder == nil {
		return false
	}
	err := o.deps.Recorder.RecordAcceptance(ctx, o.pageID, imageURL)
	switch {
	case err == nil:
		return true
	case errors.Is(err, valentine.ErrAlreadyAccepted):
		o.log.Info("acceptance already recorded")
		return true
	default:
		o.log.Error("record acceptance failed", zap.Error(err))
		return false
	}
}

func (o *Orchestrator) notify(ctx context.Context, imageURL, receiverName *string) {
	if o.deps.Notifier == nil {
		return
	}
	if err := o.deps.Notifier.NotifyAcceptance(ctx, o.pageID, imageURL, receiverName); err != nil {
		o.log.Error("notify failed", zap.Error(err))
	}
}

func (o *Orchestrator) Filename() string {
	return fmt.Sprintf("valentine-%s.png", o.pageID)
}

// Download saves the stored image when there is one. Otherwise it captures
// the card afresh and saves the bytes without uploading them.
func (o *Orchestrator) Download(ctx context.Context, saver Saver) error {
	if url := o.ImageURL(); url != "" {
		return saver.SaveURL(url, o.Filename())
	}
	data := o.capture(ctx)
	if data == nil {
		return ErrNoArtifact
	}
	return saver.SaveBytes(data, o.Filename())
}

// Wait blocks until the pipeline and celebration started by Accept are done.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
