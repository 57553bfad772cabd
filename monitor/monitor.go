// Package monitor samples the CPU usage and memory of a running process at a
// fixed interval until it exits.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrProcessLookup is returned when the process to monitor does not exist or
// can not be read
var ErrProcessLookup = errors.New("process lookup failed")

// Stat is a raw reading of a process
type Stat struct {
	// CPUTime is the user and system time consumed so far in seconds
	CPUTime float64
	// VMS and RSS are the virtual and resident memory sizes in bytes
	VMS uint64
	RSS uint64
	// Exited is set once the process is a zombie or dead
	Exited bool
}

// Source reads the Stat of a process
type Source interface {
	Stat(pid int) (Stat, error)
}

// Sample is one line of monitor output
type Sample struct {
	Elapsed time.Duration
	// CPU is the share of one core used over the last interval in percent
	CPU float64
	// VMS and RSS are in kilobytes
	VMS uint64
	RSS uint64
}

// String formats the sample as elapsed seconds, CPU percent, VMS and RSS
func (s Sample) String() string {
	return fmt.Sprintf("%6d : %7.2f %% - %10d %10d",
		int64(s.Elapsed/time.Second), s.CPU, s.VMS, s.RSS)
}

// CSVHeader is the header line matching Sample.CSV
const CSVHeader = "time;cpu;vms;rss"

// CSV formats the sample as a semicolon separated row of elapsed seconds, CPU
// percent, VMS and RSS
func (s Sample) CSV() string {
	return fmt.Sprintf("%.3f;%.2f;%d;%d", s.Elapsed.Seconds(), s.CPU, s.VMS, s.RSS)
}

// Monitor samples one process
type Monitor struct {
	src      Source
	interval time.Duration
	log      *slog.Logger
	metrics  *Metrics
}

// New returns a Monitor reading src every interval.  A nil logger discards
// records.
func New(src Source, interval time.Duration, logger *slog.Logger) (*Monitor, error) {

	if src == nil {
		return nil, fmt.Errorf("no process source")
	}

	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Monitor{src: src, interval: interval, log: logger}, nil
}

// WithMetrics publishes every sample to m as well
func (m *Monitor) WithMetrics(metrics *Metrics) *Monitor {
	m.metrics = metrics
	return m
}

// Run samples pid until it exits or ctx is done, passing each sample to emit.
// It fails with ErrProcessLookup only if the process can not be read at the
// start, a process that exits while being sampled ends the run without error.
func (m *Monitor) Run(ctx context.Context, pid int, emit func(Sample)) error {

	prev, err := m.src.Stat(pid)

	if err != nil {
		return fmt.Errorf("%w: pid %d: %w", ErrProcessLookup, pid, err)
	}

	if prev.Exited {
		return fmt.Errorf("%w: pid %d has already exited", ErrProcessLookup, pid)
	}

	log := m.log.With("pid", pid)
	log.Info("monitoring process", "interval", m.interval)

	start := time.Now()
	last := start

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("monitoring stopped")
			return nil

		case now := <-ticker.C:

			st, err := m.src.Stat(pid)

			if err != nil || st.Exited {
				log.Info("process exited", "elapsed", now.Sub(start).Round(time.Millisecond))
				return nil
			}

			s := Sample{
				Elapsed: now.Sub(start),
				VMS:     st.VMS / 1024,
				RSS:     st.RSS / 1024,
			}

			if wall := now.Sub(last).Seconds(); wall > 0 {
				s.CPU = (st.CPUTime - prev.CPUTime) / wall * 100
			}

			if s.CPU < 0 {
				s.CPU = 0
			}

			prev, last = st, now

			if m.metrics != nil {
				m.metrics.Observe(s)
			}

			emit(s)
		}
	}
}
