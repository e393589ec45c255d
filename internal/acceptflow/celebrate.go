package acceptflow

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Celebration is the decorative effect started on acceptance. Start must not
// block and the effect must end on its own; done is called when it has.
type Celebration interface {
	Start(pageID string, done func())
}

// Burst is one confetti emission. Origin is in viewport fractions.
type Burst struct {
	Particles int
	Spread    float64
	OriginX   float64
	OriginY   float64
	Colors    []string
}

var heartColors = []string{"#ec4899", "#f472b6", "#f9a8d4", "#fce7f3"}

// Confetti emits one large burst, then paired side bursts every Interval
// with a particle count that decays to zero over Duration.
type Confetti struct {
	Duration time.Duration
	Interval time.Duration
	Emit     func(pageID string, b Burst)
}

func NewConfetti(logger *zap.Logger) *Confetti {
	return &Confetti{
		Duration: 4 * time.Second,
		Interval: 250 * time.Millisecond,
		Emit: func(pageID string, b Burst) {
			logger.Debug("confetti",
				zap.String("page_id", pageID),
				zap.Int("particles", b.Particles),
				zap.Float64("x", b.OriginX),
			)
		},
	}
}

func (c *Confetti) Start(pageID string, done func()) {
	go func() {
		defer done()
		c.run(context.Background(), pageID)
	}()
}

func (c *Confetti) run(ctx context.Context, pageID string) {
	emit := c.Emit
	if emit == nil {
		emit = func(string, Burst) {}
	}

	emit(pageID, Burst{
		Particles: 150,
		Spread:    100,
		OriginX:   0.5,
		OriginY:   0.6,
		Colors:    append(heartColors, "#fdf2f8"),
	})

	if c.Duration <= 0 || c.Interval <= 0 {
		return
	}

	end := time.Now().Add(c.Duration)
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			left := end.Sub(now)
			if left <= 0 {
				return
			}
			particles := int(50 * float64(left) / float64(c.Duration))
			emit(pageID, Burst{Particles: particles, Spread: 360, OriginX: between(0.1, 0.3), OriginY: rand.Float64() - 0.2, Colors: heartColors})
			emit(pageID, Burst{Particles: particles, Spread: 360, OriginX: between(0.7, 0.9), OriginY: rand.Float64() - 0.2, Colors: heartColors})
		}
	}
}

func between(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}
