package acceptflow

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"valentine/internal/capture"
	"valentine/internal/card"
	"valentine/internal/theme"
	"valentine/internal/valentine"
)

type PageSource interface {
	GetPage(ctx context.Context, id string) (*valentine.Page, error)
	GetAcceptance(ctx context.Context, pageID string) (*valentine.AcceptanceEvent, error)
}

type RegistryConfig struct {
	// BaseURL is where the rasterizer can reach the card, e.g. http://localhost:8080.
	BaseURL     string
	SettleDelay time.Duration
	Scale       float64
}

// Registry keeps one orchestrator per page so that every request for the
// same page shares one state machine. Only pages that may still be accepted
// here are kept: once an acceptance is persisted the store is the source of
// truth and the entry is dropped.
type Registry struct {
	pages PageSource
	deps  Deps
	cfg   RegistryConfig

	mu    sync.Mutex
	items map[string]*Orchestrator
}

func NewRegistry(pages PageSource, deps Deps, cfg RegistryConfig) *Registry {
	return &Registry{
		pages: pages,
		deps:  deps,
		cfg:   cfg,
		items: make(map[string]*Orchestrator),
	}
}

// Get returns the orchestrator for pageID. A page with a persisted
// acceptance, including one recorded by another process, gets a fresh
// instance that starts in Accepted.
func (r *Registry) Get(ctx context.Context, pageID string) (*Orchestrator, error) {
	r.mu.Lock()
	o, ok := r.items[pageID]
	r.mu.Unlock()

	if ok {
		if o.State() != Idle {
			return o, nil
		}
		ev, err := r.pages.GetAcceptance(ctx, pageID)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return o, nil
		}
		r.forget(o)
		return New(pageID, r.deps, acceptedOptions(o.opts, ev)), nil
	}

	page, err := r.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	ev, err := r.pages.GetAcceptance(ctx, pageID)
	if err != nil {
		return nil, err
	}

	opts := Options{
		SettleDelay: r.cfg.SettleDelay,
		Scale:       r.cfg.Scale,
		Surface:     SurfaceFor(r.cfg.BaseURL, page.ID),
		Background:  background(page.Theme),
	}
	if ev != nil {
		return New(page.ID, r.deps, acceptedOptions(opts, ev)), nil
	}

	var built *Orchestrator
	opts.OnSettled = func(recorded bool) {
		// An unrecorded acceptance stays cached so the page keeps showing it.
		if recorded {
			r.forget(built)
		}
	}
	built = New(page.ID, r.deps, opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.items[pageID]; ok {
		return o, nil
	}
	r.items[pageID] = built
	return built, nil
}

func (r *Registry) forget(o *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[o.pageID] == o {
		delete(r.items, o.pageID)
	}
}

func acceptedOptions(opts Options, ev *valentine.AcceptanceEvent) Options {
	opts.InitialAccepted = true
	opts.InitialImageURL = ""
	if ev.ScreenshotURL != nil {
		opts.InitialImageURL = *ev.ScreenshotURL
	}
	opts.OnSettled = nil
	return opts
}

// WaitAll blocks until every in-flight pipeline has finished. Pipelines
// that already recorded their acceptance are no longer tracked.
func (r *Registry) WaitAll() {
	r.mu.Lock()
	all := make([]*Orchestrator, 0, len(r.items))
	for _, o := range r.items {
		all = append(all, o)
	}
	r.mu.Unlock()

	for _, o := range all {
		o.Wait()
	}
}

// SurfaceFor points at the card in its accepted state.
func SurfaceFor(baseURL, pageID string) capture.Surface {
	return capture.Surface{
		URL:      fmt.Sprintf("%s/v/%s?state=accepted", strings.TrimRight(baseURL, "/"), pageID),
		Selector: card.Selector,
	}
}

func background(themeID string) color.RGBA {
	r, g, b := theme.Lookup(themeID).Background.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
