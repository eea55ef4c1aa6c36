package trace

import (
	"testing"
)

func TestSimulationTrace_RecordDispatch_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a dispatch record is recorded
	st.RecordDispatch(DispatchRecord{
		Clock:       12,
		Base:        3,
		From:        3,
		To:          7,
		IncidentSeq: 1,
		Distance:    4.5,
		Leg:         LegDispatch,
	})

	// THEN the trace contains one dispatch record with correct data
	if len(st.Dispatches) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(st.Dispatches))
	}
	if st.Dispatches[0].To != 7 {
		t.Errorf("expected destination 7, got %d", st.Dispatches[0].To)
	}
	if st.Dispatches[0].Leg != LegDispatch {
		t.Errorf("expected leg dispatch, got %s", st.Dispatches[0].Leg)
	}
}

func TestSimulationTrace_RecordCompletion_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a completion record is recorded
	st.RecordCompletion(CompletionRecord{Clock: 20, Base: 3, Site: 7, IncidentSeq: 1, ServiceTime: 6.5})

	// THEN the trace contains one completion record
	if len(st.Completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(st.Completions))
	}
	if st.Completions[0].ServiceTime != 6.5 {
		t.Errorf("expected service time 6.5, got %v", st.Completions[0].ServiceTime)
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true}, // empty defaults to none
		{"detailed", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
