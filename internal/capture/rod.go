package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

type RodConfig struct {
	// DebuggerURL connects to an already running Chrome. When empty a
	// headless browser is launched, using Bin if set.
	DebuggerURL string
	Bin         string

	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration
}

// RodRasterizer screenshots an element of a page in headless Chrome.
// The browser is started on first use and shared by all captures.
type RodRasterizer struct {
	cfg    RodConfig
	logger *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

func NewRodRasterizer(cfg RodConfig, logger *zap.Logger) *RodRasterizer {
	if cfg.ViewportWidth == 0 {
		cfg.ViewportWidth = 800
	}
	if cfg.ViewportHeight == 0 {
		cfg.ViewportHeight = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &RodRasterizer{cfg: cfg, logger: logger}
}

func (r *RodRasterizer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	controlURL := r.cfg.DebuggerURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(true)
		if r.cfg.Bin != "" {
			l = l.Bin(r.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	r.launched = l
	r.logger.Info("chrome connected", zap.String("control_url", controlURL))
	return browser, nil
}

func (r *RodRasterizer) Rasterize(ctx context.Context, s Surface, opts RenderOptions) ([]byte, error) {
	if !s.Valid() {
		return nil, errors.New("no surface to capture")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}
	// Failures here mean the browser itself is gone, not the page.
	incognito, err := browser.Incognito()
	if err != nil {
		r.dropBrowser(browser, err)
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		r.dropBrowser(browser, err)
		return nil, fmt.Errorf("create page: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	bg := opts.Background
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: int(bg.R), G: int(bg.G), B: int(bg.B)},
	}).Call(page); err != nil {
		r.logger.Warn("background override failed", zap.Error(err))
	}

	if err := page.Navigate(s.URL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	el, err := page.Element(s.Selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.Selector, err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}

// dropBrowser forgets b so the next capture reconnects. A newer browser
// started by another capture is left alone.
func (r *RodRasterizer) dropBrowser(b *rod.Browser, cause error) {
	r.mu.Lock()
	if r.browser != b {
		r.mu.Unlock()
		return
	}
	l := r.launched
	r.browser, r.launched = nil, nil
	r.mu.Unlock()

	r.logger.Warn("chrome connection lost", zap.Error(cause))
	if l != nil {
		l.Kill()
	}
}

func (r *RodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser, r.launched = nil, nil
	return err
}
