package history

import (
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tidwall/gjson"
)

// Stats summarizes the latency profile of a request's archived executions.
type Stats struct {
	Count  int
	Errors int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Stats computes latency percentiles over every successful archived
// execution of a request.
func (a *Archive) Stats(requestID string) (*Stats, error) {
	durations, err := a.Durations(requestID)
	if err != nil {
		return nil, err
	}
	errors, err := a.ErrorCount(requestID)
	if err != nil {
		return nil, err
	}
	if len(durations) == 0 {
		return &Stats{Errors: errors}, nil
	}

	// Millisecond resolution up to an hour covers any sane request.
	hist := hdrhistogram.New(1, 3_600_000, 3)
	for _, d := range durations {
		if d < 1 {
			d = 1
		}
		_ = hist.RecordValue(d)
	}

	return &Stats{
		Count:  len(durations),
		Errors: errors,
		Min:    time.Duration(hist.Min()) * time.Millisecond,
		Max:    time.Duration(hist.Max()) * time.Millisecond,
		Mean:   time.Duration(hist.Mean()) * time.Millisecond,
		P50:    time.Duration(hist.ValueAtQuantile(50)) * time.Millisecond,
		P90:    time.Duration(hist.ValueAtQuantile(90)) * time.Millisecond,
		P95:    time.Duration(hist.ValueAtQuantile(95)) * time.Millisecond,
		P99:    time.Duration(hist.ValueAtQuantile(99)) * time.Millisecond,
	}, nil
}

// BodyValues extracts a JSON path from each archived response body of a
// request, newest first. Bodies that are not JSON or lack the path are
// skipped.
func (a *Archive) BodyValues(requestID, path string, limit int) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty extraction path")
	}
	records, err := a.ByRequest(requestID, limit)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, rec := range records {
		if rec.Response == nil || rec.Response.Body == "" {
			continue
		}
		if result := gjson.Get(rec.Response.Body, path); result.Exists() {
			values = append(values, result.String())
		}
	}
	return values, nil
}
