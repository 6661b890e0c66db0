package models

import "time"

// Tick is a single normalized market-data event. OI is only meaningful for
// option contracts; futures ticks carry price only.
type Tick struct {
	Symbol string
	Price  float64
	OI     float64
	At     time.Time
}

// Sample is one point of an instrument's trailing window.
type Sample struct {
	At    time.Time
	Price float64
	OI    float64
}

// FutureSample is one point of an underlying future's price series.
type FutureSample struct {
	At    time.Time
	Price float64
}
