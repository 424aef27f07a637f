package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	_ Indicator = (*SMA)(nil)
	_ Indicator = (*EMA)(nil)
)

func TestSMA(t *testing.T) {
	t.Parallel()

	prices := []float64{102, 105, 106, 108, 110}

	t.Run("window slides", func(t *testing.T) {
		ma := NewSMA(3)
		assert.Equal(t, "SMA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(prices[0])
		ma.Update(prices[1])
		assert.False(t, ma.Ready())

		ma.Update(prices[2])
		assert.True(t, ma.Ready())
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 1e-9)

		ma.Update(prices[3])
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 1e-9)
		ma.Update(prices[4])
		assert.InDelta(t, (106.0+108.0+110.0)/3.0, ma.Value(), 1e-9)
	})

	t.Run("reset", func(t *testing.T) {
		ma := NewSMA(2)
		ma.Update(prices[0])
		ma.Update(prices[1])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(50)
		ma.Update(70)
		assert.InDelta(t, 60.0, ma.Value(), 1e-9)
	})

	t.Run("period one tracks price", func(t *testing.T) {
		ma := NewSMA(1)
		for _, p := range prices {
			ma.Update(p)
			assert.Equal(t, p, ma.Value())
		}
	})
}

func TestEMA(t *testing.T) {
	t.Parallel()

	prices := []float64{102, 105, 106, 108, 110, 111, 113}

	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())
	assert.Equal(t, 3, ema.Warmup())

	want := 0.0
	for i, p := range prices {
		ema.Update(p)
		switch {
		case i < 2:
			assert.False(t, ema.Ready())
			assert.Equal(t, 0.0, ema.Value())
			continue
		case i == 2:
			want = (102.0 + 105.0 + 106.0) / 3
		default:
			want += (p - want) / 2
		}
		assert.True(t, ema.Ready())
		assert.InDelta(t, want, ema.Value(), 1e-9, "after %d prices", i+1)
	}

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Equal(t, 0.0, ema.Value())
}
