package refdata

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,100.0,101.5,99.2,101.0,120000
2024-01-03,101.0,102.0,100.1,100.5,98000
2024-01-04,100.5,103.0,100.4,102.75,143000
`

func TestParseCSV(t *testing.T) {
	prices, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, []float64{101.0, 100.5, 102.75}, prices)
}

func TestParseCSVHeaderCaseInsensitive(t *testing.T) {
	prices, err := ParseCSV(strings.NewReader("date,CLOSE\n2024-01-02,50\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{50.0}, prices)
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	csv := "Date,Close\n2024-01-02,100\n2024-01-03,null\n2024-01-04,102\n"
	prices, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 102}, prices)
}

func TestParseCSVMissingCloseColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Date,Open,High\n2024-01-02,1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Close column")
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	prices, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestSyntheticDeterministic(t *testing.T) {
	a := Synthetic(42, 250, 100, 0.02)
	b := Synthetic(42, 250, 100, 0.02)
	c := Synthetic(43, 250, 100, 0.02)

	require.Len(t, a, 250)
	assert.Equal(t, a, b, "same seed must yield the same series")
	assert.NotEqual(t, a, c)
}

func TestSyntheticBoundedDailyMoves(t *testing.T) {
	const vol = 0.02
	prices := Synthetic(7, 500, 100, vol)

	prev := 100.0
	for i, p := range prices {
		require.Positive(t, p, "price at day %d", i)
		ratio := p / prev
		assert.LessOrEqual(t, ratio, math.Exp(vol)+1e-12)
		assert.GreaterOrEqual(t, ratio, math.Exp(-vol)-1e-12)
		prev = p
	}
}
