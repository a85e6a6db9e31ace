// Package refdata supplies the historical reference price series the price
// process is calibrated from. The series is fetched once at construction,
// never per step; when no source is reachable a synthetic series stands in.
package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// httpTimeout bounds the one-time reference download.
const httpTimeout = 15 * time.Second

// Fetch downloads a daily price series as CSV from url and returns the
// closing prices in chronological order. The expected layout is a header row
// containing a "Close" column (the common export format of daily-quote
// endpoints).
func Fetch(ctx context.Context, url string) ([]float64, error) {
	client := &http.Client{Timeout: httpTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build reference request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch reference series: unexpected status %s", resp.Status)
	}

	return ParseCSV(resp.Body)
}

// ParseCSV reads a CSV daily-quote stream and extracts the Close column.
func ParseCSV(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	closeCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "close") {
			closeCol = i
			break
		}
	}
	if closeCol < 0 {
		return nil, fmt.Errorf("reference CSV has no Close column (header: %v)", header)
	}

	var prices []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference row: %w", err)
		}
		if closeCol >= len(record) {
			continue
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			// Skip unparseable rows (missing data markers etc.).
			continue
		}
		prices = append(prices, p)
	}
	return prices, nil
}
