package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures admission, mapping and time-jump decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a scheduler run.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord
	Mappings   []MappingRecord
	TimeJumps  []TimeJumpRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
		Mappings:   make([]MappingRecord, 0),
		TimeJumps:  make([]TimeJumpRecord, 0),
	}
}

// Enabled reports whether decision recording is active.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordAdmission appends an admission attempt record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	st.Admissions = append(st.Admissions, record)
}

// RecordMapping appends a mapping decision record.
func (st *SimulationTrace) RecordMapping(record MappingRecord) {
	st.Mappings = append(st.Mappings, record)
}

// RecordTimeJump appends a time-jump record.
func (st *SimulationTrace) RecordTimeJump(record TimeJumpRecord) {
	st.TimeJumps = append(st.TimeJumps, record)
}
