package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/phuslu/log"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// ParseError reports a resource whose contents could not be tokenized.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Name, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// CSVSource parses a headered CSV into price points using the named columns.
type CSVSource struct {
	Name        string
	DateColumn  string
	ValueColumn string
}

// Parse reads all rows. Blank lines are skipped; rows with an empty date or a
// missing, non-numeric or non-finite value are dropped.
func (s CSVSource) Parse(data []byte) ([]types.RawPricePoint, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Name: s.Name, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &ParseError{Name: s.Name, Err: err}
	}
	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case s.DateColumn:
			dateIdx = i
		case s.ValueColumn:
			valueIdx = i
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return nil, &ParseError{Name: s.Name, Err: fmt.Errorf("header must contain %q and %q", s.DateColumn, s.ValueColumn)}
	}

	out := make([]types.RawPricePoint, 0, 256)
	dropped := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Name: s.Name, Err: err}
		}
		p, ok := toPoint(rec, dateIdx, valueIdx)
		if !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}
	log.Debug().Str("source", s.Name).Int("rows", len(out)).Int("dropped", dropped).Msg("parsed csv")
	return out, nil
}

func toPoint(rec []string, dateIdx, valueIdx int) (types.RawPricePoint, bool) {
	if dateIdx >= len(rec) || valueIdx >= len(rec) {
		return types.RawPricePoint{}, false
	}
	date := strings.TrimSpace(rec[dateIdx])
	raw := strings.TrimSpace(rec[valueIdx])
	if date == "" || raw == "" {
		return types.RawPricePoint{}, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return types.RawPricePoint{}, false
	}
	return types.RawPricePoint{Date: date, Value: v}, true
}
