package sim

import (
	"log/slog"
)

// flushTelemetry flushes the stats window when it is due and routes the
// result to the callback, the log, and the CSV outputs.
func (s *Sim) flushTelemetry() {
	step := int32(s.solver.StepCount())
	if !s.collector.ShouldFlush(step) {
		return
	}

	stats := s.collector.Flush(step, s.solver)
	perfStats := s.perfCollector.Stats()

	s.lastStats = stats
	s.hasStats = true

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
