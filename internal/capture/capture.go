// Package capture rasterizes the rendered card into a PNG.
package capture

import (
	"context"
	"errors"
	"image/color"
)

var ErrDisabled = errors.New("rasterizer disabled")

// Surface identifies what to rasterize: a page URL and the element on it.
type Surface struct {
	URL      string
	Selector string
}

func (s Surface) Valid() bool {
	return s.URL != "" && s.Selector != ""
}

type RenderOptions struct {
	// Scale is the device pixel ratio used for the capture.
	Scale float64
	// Background fills transparent regions.
	Background color.RGBA
}

type Rasterizer interface {
	Rasterize(ctx context.Context, s Surface, opts RenderOptions) ([]byte, error)
}

// Disabled is used where no browser is available. Every call is a soft failure.
type Disabled struct{}

func (Disabled) Rasterize(context.Context, Surface, RenderOptions) ([]byte, error) {
	return nil, ErrDisabled
}
