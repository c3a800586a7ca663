package metric

import (
	"log/slog"
	"time"

	"moncal/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// Register g, logging instead of failing when it can't be. A gauge that is
// already registered is reused.
func register(g prometheus.Gauge, name string) prometheus.Gauge {
	if err := prometheus.Register(g); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			slog.Error("can't register "+name+" metric", "error", err)
			return g
		}
		existing, ok := are.ExistingCollector.(prometheus.Gauge)
		if !ok {
			slog.Error(name+" is registered with another type", "error", err)
			return g
		}
		g = existing
	}
	slog.Debug(name + " metric registered")
	g.Set(0)
	return g
}

func unregister(g prometheus.Gauge, name string) {
	switch prometheus.Unregister(g) {
	case true:
		slog.Debug(name + " metric unregistered")
	case false:
		slog.Warn(name + " metric not registered")
	}
}

// Gauge fed by the values reported on ch. It falls back to 0 when nothing is
// reported for clearTickerInterval.
func channelGauge(as *utils.AppState, name, help string, ch chan float64, clearTickerInterval time.Duration) prometheus.Gauge {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}), name)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case v := <-ch:
				gauge.Set(v)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
	return gauge
}

// Gauge sampled from probe every tickerInterval.
func probeGauge(as *utils.AppState, name, help string, probe func() (float64, error), tickerInterval time.Duration) prometheus.Gauge {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}), name)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				v, err := probe()
				if err != nil {
					slog.Error("can't sample "+name, "error", err)
					continue
				}
				gauge.Set(v)
			}
		}
	}()
	return gauge
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	probeGauge(as, "moncal_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		func() (float64, error) {
			latency, err := database(as)
			return float64(latency.Microseconds()), err
		}, tickerInterval)
	probeGauge(as, "moncal_events",
		"The number of stored events",
		func() (float64, error) {
			count, err := eventCount(as)
			return float64(count), err
		}, tickerInterval)
	probeGauge(as, "moncal_expansion_cache_months",
		"The number of expanded months held in the cache",
		func() (float64, error) {
			return float64(as.Expansions.Len()), nil
		}, tickerInterval)

	channelGauge(as, "moncal_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	channelGauge(as, "moncal_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	channelGauge(as, "moncal_expansion_microsec",
		"The latency of expanding a month of events in microseconds",
		as.MetricChans.Expansion, clearTickerInterval)
	channelGauge(as, "moncal_expansion_occurrences",
		"The number of occurrences produced by the last expansion",
		as.MetricChans.ExpansionSize, clearTickerInterval)
}
