package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAttempts    int
	AdmittedCount    int
	RejectedCount    int
	RejectionReasons map[string]int // reason -> count
	TimeJumpCount    int
	TotalJumpNS      int64
	MeanCoresMapped  float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectionReasons: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalAttempts = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
		} else {
			summary.RejectedCount++
			summary.RejectionReasons[a.Reason]++
		}
	}

	summary.TimeJumpCount = len(st.TimeJumps)
	for _, j := range st.TimeJumps {
		summary.TotalJumpNS += j.Jump
	}

	if len(st.Mappings) > 0 {
		total := 0
		for _, m := range st.Mappings {
			total += len(m.Cores)
		}
		summary.MeanCoresMapped = float64(total) / float64(len(st.Mappings))
	}

	return summary
}
