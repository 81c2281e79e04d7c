package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"direct fault", New(KindQuotaExceeded, "limit"), KindQuotaExceeded},
		{"wrapped fault", fmt.Errorf("file 2: %w", New(KindDecode, "bad pdf")), KindDecode},
		{"fault wrapping error", Wrap(KindCollaborator, "call failed", errors.New("timeout")), KindCollaborator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFault_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	f := Wrap(KindCollaborator, "analysis failed", inner)

	if !errors.Is(f, inner) {
		t.Error("wrapped error must be reachable through errors.Is")
	}
	if f.Error() == "" || New(KindInvalidInput, "empty").Error() == "" {
		t.Error("Error() must describe the fault")
	}
}
