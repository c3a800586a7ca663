package utils

import "time"

// Latencies in microseconds, consumed by the metric collectors.
type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
	Expansion     chan float64
	// number of occurrences produced by one expansion
	ExpansionSize chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 16),
		DatabaseWrite: make(chan float64, 16),
		Expansion:     make(chan float64, 16),
		ExpansionSize: make(chan float64, 16),
	}
}

// Report sends the time elapsed since start without blocking; the value is
// dropped when no collector is keeping up.
func Report(ch chan float64, start time.Time) {
	ReportValue(ch, float64(time.Since(start).Microseconds()))
}

func ReportValue(ch chan float64, v float64) {
	select {
	case ch <- v:
	default:
	}
}
