package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads a price file with rows of time,price[,signal]. A header row
// whose first column is "time" or "date" is skipped. A missing signal column
// means HOLD for that row.
func LoadCSV(path string) (PriceSeries, SignalSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return PriceSeries{}, SignalSeries{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader) (PriceSeries, SignalSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		prices  []Point
		signals []SignalPoint
		line    int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return PriceSeries{}, SignalSeries{}, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if line == 1 && isHeader(row[0]) {
			continue
		}
		if len(row) < 2 {
			return PriceSeries{}, SignalSeries{}, fmt.Errorf("line %d: need at least 2 cols time,price: %v", line, row)
		}

		t, err := parseTime(row[0])
		if err != nil {
			return PriceSeries{}, SignalSeries{}, fmt.Errorf("line %d: bad time %q: %w", line, row[0], err)
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return PriceSeries{}, SignalSeries{}, fmt.Errorf("line %d: bad price %q: %w", line, row[1], err)
		}
		sig := Hold
		if len(row) > 2 {
			sig, err = ParseSignal(row[2])
			if err != nil {
				return PriceSeries{}, SignalSeries{}, fmt.Errorf("line %d: %w", line, err)
			}
		}

		prices = append(prices, Point{Time: t, Price: px})
		signals = append(signals, SignalPoint{Time: t, Signal: sig})
	}

	ps, err := NewPriceSeries(prices)
	if err != nil {
		return PriceSeries{}, SignalSeries{}, err
	}
	ss, err := NewSignalSeries(signals)
	if err != nil {
		return PriceSeries{}, SignalSeries{}, err
	}
	return ps, ss, nil
}

// WriteCSV writes prices and signals as time,price,signal rows with a header.
// HOLD is written as an empty column so the file reads back unchanged.
func WriteCSV(w io.Writer, prices PriceSeries, signals SignalSeries) error {
	if prices.Len() != signals.Len() {
		return fmt.Errorf("%w: %d prices, %d signals", ErrSeriesLenMismatch, prices.Len(), signals.Len())
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "price", "signal"}); err != nil {
		return err
	}
	for i := 0; i < prices.Len(); i++ {
		sig := ""
		if s := signals.Signal(i); s != Hold {
			sig = s.String()
		}
		row := []string{
			prices.Time(i).Format(time.RFC3339),
			strconv.FormatFloat(prices.Price(i), 'f', -1, 64),
			sig,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(col string) bool {
	c := strings.ToLower(strings.TrimSpace(col))
	return c == "time" || c == "date" || c == "timestamp"
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time layout")
}
