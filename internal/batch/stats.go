package batch

import "time"

// Stats holds statistics about a batch run.
type Stats struct {
	TotalPayloads     int           `json:"total_payloads" yaml:"total_payloads"`
	Generated         int           `json:"generated" yaml:"generated"`
	Failed            int           `json:"failed" yaml:"failed"`
	Skipped           int           `json:"skipped_lines" yaml:"skipped_lines"`
	Files             int           `json:"files" yaml:"files"`
	WorkerCount       int           `json:"worker_count" yaml:"worker_count"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
	AveragePerPayload time.Duration `json:"average_per_payload_ns" yaml:"average_per_payload"`
	ThroughputPerSec  float64       `json:"throughput_per_sec" yaml:"throughput_per_sec"`
}

// Stats calculates statistics for the run.
func (r *Result) Stats() Stats {
	s := Stats{
		TotalPayloads: len(r.Items),
		Skipped:       r.Skipped,
		WorkerCount:   r.WorkerCount,
		TotalDuration: r.Duration,
	}
	for _, it := range r.Items {
		if it.OK() {
			s.Generated++
			s.Files += len(it.Files)
		} else {
			s.Failed++
		}
	}
	if s.Generated > 0 && r.Duration > 0 {
		s.AveragePerPayload = r.Duration / time.Duration(s.Generated)
		s.ThroughputPerSec = float64(s.Generated) / r.Duration.Seconds()
	}
	return s
}
