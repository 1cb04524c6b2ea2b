package trace

import (
	"testing"
)

func TestSummarize_NilTrace(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalAttempts != 0 || summary.TimeJumpCount != 0 {
		t.Errorf("nil trace must summarize to zero values, got %+v", summary)
	}
}

func TestSummarize_Counts(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordAdmission(AdmissionRecord{TaskID: 0, Admitted: true})
	st.RecordAdmission(AdmissionRecord{TaskID: 1, Admitted: false, Reason: "insufficient capacity"})
	st.RecordAdmission(AdmissionRecord{TaskID: 1, Admitted: false, Reason: "insufficient capacity"})
	st.RecordAdmission(AdmissionRecord{TaskID: 1, Admitted: true})
	st.RecordMapping(MappingRecord{TaskID: 0, Cores: []int{0, 1}})
	st.RecordMapping(MappingRecord{TaskID: 1, Cores: []int{2, 3, 4, 5}})
	st.RecordTimeJump(TimeJumpRecord{Jump: 1000, TasksAdjusted: 2})
	st.RecordTimeJump(TimeJumpRecord{Jump: 500, TasksAdjusted: 1})

	summary := Summarize(st)

	if summary.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", summary.TotalAttempts)
	}
	if summary.AdmittedCount != 2 || summary.RejectedCount != 2 {
		t.Errorf("admitted/rejected = %d/%d, want 2/2", summary.AdmittedCount, summary.RejectedCount)
	}
	if summary.RejectionReasons["insufficient capacity"] != 2 {
		t.Errorf("RejectionReasons = %v", summary.RejectionReasons)
	}
	if summary.TimeJumpCount != 2 || summary.TotalJumpNS != 1500 {
		t.Errorf("jumps = %d/%d ns, want 2/1500 ns", summary.TimeJumpCount, summary.TotalJumpNS)
	}
	if summary.MeanCoresMapped != 3.0 {
		t.Errorf("MeanCoresMapped = %v, want 3.0", summary.MeanCoresMapped)
	}
}
