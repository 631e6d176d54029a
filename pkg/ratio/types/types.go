package types

import "time"

// MonthKey is a canonical "YYYY-MM" month identifier. Lexicographic order of
// zero-padded keys is chronological order.
type MonthKey string

// RawPricePoint is one parsed row of a source file. Date is kept in the
// source's own format ("YYYY-MM" or "YYYY-MM-DD").
type RawPricePoint struct {
	Date  string
	Value float64
}

// AlignedPoint is a month present in both series.
// Ratio is Primary/Reference and is +Inf (or NaN) when Reference is zero.
type AlignedPoint struct {
	Date      MonthKey `json:"date"`
	Primary   float64  `json:"primary"`
	Reference float64  `json:"reference"`
	Ratio     float64  `json:"ratio"`
}

// Series is an aligned series ordered ascending by Date.
type Series []AlignedPoint

// Range selects a trailing window of monthly points.
type Range string

const (
	RangeOneYear     Range = "1year"
	RangeFiveYears   Range = "5years"
	RangeTenYears    Range = "10years"
	RangeTwentyYears Range = "20years"
	RangeAll         Range = "all"
)

// Stats summarizes the Ratio field of a window.
type Stats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Current float64 `json:"current"`
}

// Event is a dated annotation, independent of the price data.
type Event struct {
	Date        MonthKey `json:"date" yaml:"date"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description" yaml:"description"`
}

// Labels carries display names for the two series and the ratio.
type Labels struct {
	Primary       string `json:"primary"`
	Reference     string `json:"reference"`
	Ratio         string `json:"ratio"`
	RatioUnit     string `json:"ratio_unit"`
	ReferenceUnit string `json:"reference_unit"`
	RatioCaption  string `json:"ratio_caption"`
}

// Quote is a live price for a symbol.
type Quote struct {
	Sym   string  `json:"sym"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price"`
	Fmt   string  `json:"-"`
}

// LiveRatio is the ratio derived from current quotes of both symbols.
type LiveRatio struct {
	Primary   Quote     `json:"primary"`
	Reference Quote     `json:"reference"`
	Ratio     float64   `json:"ratio"`
	At        time.Time `json:"at"`
}

// Report is everything a renderer needs for one run.
type Report struct {
	Range  Range
	Series Series
	Stats  Stats
	Events []Event
	Live   *LiveRatio
	Labels Labels
}
