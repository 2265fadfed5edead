package openai

import (
	"testing"
)

func TestParseSSELine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantDelta string
		wantDone  bool
		wantErr   bool
	}{
		{
			name: "empty line is skipped",
			line: "",
		},
		{
			name: "comment line is skipped",
			line: ": keep-alive",
		},
		{
			name:     "done sentinel",
			line:     "data: [DONE]",
			wantDone: true,
		},
		{
			name:      "content delta",
			line:      `data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			wantDelta: "Hel",
		},
		{
			name: "empty choices is skipped",
			line: `data: {"choices":[]}`,
		},
		{
			name:    "malformed payload errors",
			line:    `data: {not json`,
			wantErr: true,
		},
		{
			name:      "whitespace around payload is tolerated",
			line:      `  data:  {"choices":[{"delta":{"content":"x"}}]}  `,
			wantDelta: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, done, err := ParseSSELine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSSELine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if delta != tt.wantDelta {
				t.Errorf("delta = %q, want %q", delta, tt.wantDelta)
			}
			if done != tt.wantDone {
				t.Errorf("done = %v, want %v", done, tt.wantDone)
			}
		})
	}
}
