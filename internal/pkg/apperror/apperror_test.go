package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid argument", InvalidArgument("bad input"), KindInvalidArgument},
		{"unauthenticated", Unauthenticated("no token"), KindUnauthenticated},
		{"forbidden", Forbidden("not yours"), KindForbidden},
		{"not found", NotFound("missing"), KindNotFound},
		{"upstream", Upstream("call failed", base), KindUpstreamFailure},
		{"persistence", Persistence("write failed", base), KindPersistenceFailure},
		{"plain error", base, KindUnknown},
		{"nil", nil, KindUnknown},
		{"wrapped app error", fmt.Errorf("context: %w", NotFound("missing")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := Upstream("completion call failed", base)

	if !errors.Is(err, base) {
		t.Error("wrapped cause should be reachable with errors.Is")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}
