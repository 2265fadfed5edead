package router

import (
	"testing"

	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/pkg/llm"
)

func TestValidateTurn(t *testing.T) {
	tests := []struct {
		name    string
		history []llm.Message
		wantErr bool
	}{
		{
			name:    "empty history is rejected",
			history: nil,
			wantErr: true,
		},
		{
			name: "single user message is valid",
			history: []llm.Message{
				{Role: "user", Content: "hello"},
			},
			wantErr: false,
		},
		{
			name: "trailing assistant message is rejected",
			history: []llm.Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi"},
			},
			wantErr: true,
		},
		{
			name: "trailing system message is rejected",
			history: []llm.Message{
				{Role: "system", Content: "be nice"},
			},
			wantErr: true,
		},
		{
			name: "full turn ending on user is valid",
			history: []llm.Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi"},
				{Role: "user", Content: "follow up"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.history)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTurn() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && apperror.KindOf(err) != apperror.KindInvalidArgument {
				t.Errorf("error kind = %v, want KindInvalidArgument", apperror.KindOf(err))
			}
		})
	}
}

func TestWithSystemPrompt(t *testing.T) {
	history := []llm.Message{{Role: "user", Content: "hello"}}

	t.Run("nil prompt leaves history untouched", func(t *testing.T) {
		got := withSystemPrompt(history, nil)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("blank prompt leaves history untouched", func(t *testing.T) {
		blank := "   "
		got := withSystemPrompt(history, &blank)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("prompt is prepended as system message", func(t *testing.T) {
		prompt := "You are terse."
		got := withSystemPrompt(history, &prompt)
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Role != "system" || got[0].Content != prompt {
			t.Errorf("head = %+v, want system prompt", got[0])
		}
		if got[1].Content != "hello" {
			t.Errorf("tail = %+v, want original history", got[1])
		}
	})
}
