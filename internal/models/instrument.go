// Package models defines the core domain entities: instruments, ticks,
// per-instrument state, and findings.
package models

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind distinguishes option contracts from their underlying futures.
type Kind int

const (
	KindOption Kind = iota
	KindFuture
)

func (k Kind) String() string {
	if k == KindFuture {
		return "FUTURE"
	}
	return "OPTION"
}

// Right is the option side.
type Right int

const (
	RightCall Right = iota
	RightPut
)

func (r Right) String() string {
	if r == RightPut {
		return "PE"
	}
	return "CE"
}

// Instrument is the immutable contract metadata for one tracked symbol.
// Strike and Right are only meaningful for options.
type Instrument struct {
	Symbol     string
	Underlying string
	Kind       Kind
	Expiry     string // two-digit year from the symbol, display only
	Strike     float64
	Right      Right
	LotSize    int
}

var (
	optionSymbolRe = regexp.MustCompile(`^.*?(\d{2})(\d+)(CE|PE)$`)
	futureSymbolRe = regexp.MustCompile(`^.*?(\d{2})FUT$`)
)

// ParseInstrument decodes an NFO-style symbol such as
// "BANKNIFTY24FEB2658900CE" or "SBIN27JAN26FUT". The underlying is matched
// against the known names; the longest match wins so that e.g. "ICICIBANK"
// is not shadowed by a shorter name contained in it.
func ParseInstrument(symbol string, knownUnderlyings []string, lotSizes map[string]int, defaultLotSize int) (Instrument, error) {
	underlying := matchUnderlying(symbol, knownUnderlyings)
	if underlying == "" {
		return Instrument{}, fmt.Errorf("symbol %q has no known underlying", symbol)
	}

	lotSize := defaultLotSize
	if size, ok := lotSizes[underlying]; ok {
		lotSize = size
	}
	if lotSize <= 0 {
		return Instrument{}, fmt.Errorf("symbol %q has non-positive lot size %d", symbol, lotSize)
	}

	if m := futureSymbolRe.FindStringSubmatch(symbol); m != nil {
		return Instrument{
			Symbol:     symbol,
			Underlying: underlying,
			Kind:       KindFuture,
			Expiry:     m[1],
			LotSize:    lotSize,
		}, nil
	}

	m := optionSymbolRe.FindStringSubmatch(symbol)
	if m == nil {
		return Instrument{}, fmt.Errorf("symbol %q is neither an option nor a future", symbol)
	}
	strike, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Instrument{}, fmt.Errorf("symbol %q has invalid strike: %w", symbol, err)
	}
	right := RightCall
	if m[3] == "PE" {
		right = RightPut
	}
	return Instrument{
		Symbol:     symbol,
		Underlying: underlying,
		Kind:       KindOption,
		Expiry:     m[1],
		Strike:     strike,
		Right:      right,
		LotSize:    lotSize,
	}, nil
}

func matchUnderlying(symbol string, known []string) string {
	// Longest-first so BANKNIFTY beats NIFTY and ICICIBANK beats ICICI.
	names := make([]string, len(known))
	copy(names, known)
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		if strings.Contains(symbol, name) {
			return name
		}
	}
	return ""
}

// Registry is the static instrument universe, built once at startup.
type Registry struct {
	instruments map[string]Instrument
	underlyings []string
}

// NewRegistry parses every configured symbol. A symbol that cannot be
// decoded is a configuration fault and fails registry construction.
func NewRegistry(symbols []string, lotSizes map[string]int, defaultLotSize int) (*Registry, error) {
	underlyings := make([]string, 0, len(lotSizes))
	for name := range lotSizes {
		underlyings = append(underlyings, name)
	}
	sort.Strings(underlyings)

	r := &Registry{
		instruments: make(map[string]Instrument, len(symbols)),
		underlyings: underlyings,
	}
	for _, symbol := range symbols {
		inst, err := ParseInstrument(symbol, underlyings, lotSizes, defaultLotSize)
		if err != nil {
			return nil, err
		}
		r.instruments[symbol] = inst
	}
	return r, nil
}

// Lookup returns the instrument for a symbol, if tracked.
func (r *Registry) Lookup(symbol string) (Instrument, bool) {
	inst, ok := r.instruments[symbol]
	return inst, ok
}

// Underlyings returns the known underlying names in stable order.
func (r *Registry) Underlyings() []string {
	return r.underlyings
}

// Size returns the number of tracked instruments.
func (r *Registry) Size() int {
	return len(r.instruments)
}

// Symbols returns every tracked symbol in unspecified order.
func (r *Registry) Symbols() []string {
	symbols := make([]string, 0, len(r.instruments))
	for symbol := range r.instruments {
		symbols = append(symbols, symbol)
	}
	return symbols
}
