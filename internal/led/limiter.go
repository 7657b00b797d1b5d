package led

import (
	"math"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Limiter keeps a frame within what the strip and its supply can take.
//
// WhiteCap bounds R+G+B per LED (3 disables it). BudgetmA is the global
// current budget; zero disables it. Above Knee*BudgetmA the frame is scaled
// down softly, above the budget hard.
type Limiter struct {
	WhiteCap float64
	ChanmA   float64
	BudgetmA float64
	Knee     float64
}

func NewLimiter(p config.PowerCfg) Limiter {
	l := Limiter{WhiteCap: 3, ChanmA: 20, Knee: 0.9}
	if p.WhiteCap > 0 {
		l.WhiteCap = p.WhiteCap * 3
	}
	if p.LEDChanmA > 0 {
		l.ChanmA = p.LEDChanmA
	}
	if p.LimitAmps > 0 {
		l.BudgetmA = p.LimitAmps * 1000
	}
	return l
}

// Apply limits buf in place and returns the global scale used.
func (l Limiter) Apply(buf []render.Color) float32 {
	wc := float32(l.WhiteCap)
	if wc > 0 {
		for i := range buf {
			s := buf[i].R + buf[i].G + buf[i].B
			if s > wc && s > 0 {
				scale := wc / s
				buf[i].R *= scale
				buf[i].G *= scale
				buf[i].B *= scale
			}
		}
	}
	if l.BudgetmA <= 0 {
		return 1
	}

	var total float64
	cm := float32(l.ChanmA)
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * cm)
	}
	if total <= 0 {
		return 1
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	ratio := total / l.BudgetmA
	var s float32
	switch {
	case ratio <= knee:
		return 1
	case ratio <= 1:
		// map ratio in [knee,1] to scale in [1, budget/total]
		minS := l.BudgetmA / total
		t := (ratio - knee) / (1 - knee)
		s = float32(1 - t*(1-minS))
	default:
		s = float32(l.BudgetmA / total)
	}
	if s >= 1 {
		return 1
	}
	for i := range buf {
		buf[i].R *= s
		buf[i].G *= s
		buf[i].B *= s
	}
	return s
}

// Decode undoes display gamma so the limiter and the strip see linear light.
// A gamma of 1 or less leaves buf untouched.
func Decode(buf []render.Color, gamma float64) {
	if gamma <= 1 {
		return
	}
	for i := range buf {
		buf[i].R = powf(buf[i].R, gamma)
		buf[i].G = powf(buf[i].G, gamma)
		buf[i].B = powf(buf[i].B, gamma)
	}
}

func powf(x float32, p float64) float32 {
	return float32(math.Pow(float64(x), p))
}
