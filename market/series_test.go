package market

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestNewPriceSeries_Invariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []Point
		want   error
	}{
		{"empty", nil, ErrEmptySeries},
		{"zero price", []Point{{day0, 1}, {day0.Add(time.Hour), 0}}, ErrNonPositivePrice},
		{"negative price", []Point{{day0, -3}}, ErrNonPositivePrice},
		{"same time", []Point{{day0, 1}, {day0, 2}}, ErrNonIncreasingTime},
		{"backwards", []Point{{day0, 1}, {day0.Add(-time.Hour), 2}}, ErrNonIncreasingTime},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPriceSeries(tt.prices)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPriceSeries_CopiesInput(t *testing.T) {
	t.Parallel()

	pts := []Point{{day0, 10}, {day0.AddDate(0, 0, 1), 11}}
	ps, err := NewPriceSeries(pts)
	require.NoError(t, err)

	pts[0].Price = 999
	assert.Equal(t, 10.0, ps.Price(0))

	out := ps.Prices()
	out[1] = 0
	assert.Equal(t, 11.0, ps.Price(1))
}

func TestParseSignal(t *testing.T) {
	t.Parallel()

	tests := map[string]Signal{
		"":            Hold,
		"hold":        Hold,
		"BUY":         Buy,
		" sell ":      Sell,
		"strong_buy":  StrongBuy,
		"STRONG-SELL": StrongSell,
		"strong buy":  StrongBuy,
	}
	for in, want := range tests {
		got, err := ParseSignal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSignal("maybe")
	assert.ErrorIs(t, err, ErrUnknownSignal)
}

func TestSignalsFor_LengthMismatch(t *testing.T) {
	t.Parallel()

	ps, err := DailyPrices(day0, 1, 2, 3)
	require.NoError(t, err)

	_, err = SignalsFor(ps, Buy)
	assert.ErrorIs(t, err, ErrSeriesLenMismatch)

	ss, err := SignalsFor(ps, Buy, Hold, Sell)
	require.NoError(t, err)
	assert.Equal(t, 3, ss.Len())
	assert.True(t, ss.Signal(0).IsBuy())
	assert.True(t, ss.Signal(2).IsSell())
	assert.Equal(t, ps.Time(1), ss.At(1).Time)
}

func TestEquityCurveReturns(t *testing.T) {
	t.Parallel()

	c := EquityCurve{Values: []float64{100, 110, 99}}
	rs := c.Returns()
	require.Len(t, rs, 2)
	assert.InDelta(t, 0.10, rs[0], 1e-12)
	assert.InDelta(t, -0.10, rs[1], 1e-12)

	assert.Empty(t, EquityCurve{Values: []float64{5}}.Returns())
	assert.Equal(t, 100.0, c.Initial())
	assert.Equal(t, 99.0, c.Final())
}

func TestCompound(t *testing.T) {
	t.Parallel()

	got := Compound(1000, []float64{0.1, -0.5})
	require.Len(t, got, 3)
	assert.InDelta(t, 1000, got[0], 1e-9)
	assert.InDelta(t, 1100, got[1], 1e-9)
	assert.InDelta(t, 550, got[2], 1e-9)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := `time,price,signal
2024-01-02,100,BUY
2024-01-03T00:00:00Z,101.5,
2024-01-04,99,STRONG_SELL
`
	ps, ss, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, ps.Len())
	assert.Equal(t, 3, ss.Len())
	assert.Equal(t, 101.5, ps.Price(1))
	assert.Equal(t, Buy, ss.Signal(0))
	assert.Equal(t, Hold, ss.Signal(1))
	assert.Equal(t, StrongSell, ss.Signal(2))
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := ReadCSV(strings.NewReader("2024-01-02,abc\n"))
	assert.Error(t, err)

	_, _, err = ReadCSV(strings.NewReader("2024-01-02,1,WHATEVER\n"))
	assert.ErrorIs(t, err, ErrUnknownSignal)

	_, _, err = ReadCSV(strings.NewReader("2024-01-03,1\n2024-01-02,1\n"))
	assert.ErrorIs(t, err, ErrNonIncreasingTime)
}

func TestWriteCSVReadsBack(t *testing.T) {
	t.Parallel()

	in := `time,price,signal
2024-01-02,100,BUY
2024-01-03,101.5,
2024-01-04,99.25,STRONG_SELL
`
	ps, ss, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ps, ss))
	assert.Equal(t, "time,price,signal\n"+
		"2024-01-02T00:00:00Z,100,BUY\n"+
		"2024-01-03T00:00:00Z,101.5,\n"+
		"2024-01-04T00:00:00Z,99.25,STRONG_SELL\n", buf.String())

	ps2, ss2, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, ps, ps2)
	assert.Equal(t, ss, ss2)

	short, err := SignalsFor(ps, Buy, Hold, Hold)
	require.NoError(t, err)
	other, err := DailyPrices(ps.Time(0), 1, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, WriteCSV(&buf, other, short), ErrSeriesLenMismatch)
}
