package message

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewAssistantMessage(t *testing.T) {
	sessionId := uuid.New()
	authorId := uuid.New()
	now := time.Now()

	t.Run("keeps non-empty content", func(t *testing.T) {
		msg := NewAssistantMessage(sessionId, authorId, "hello", "gpt-4o-mini", now)
		if msg.Content != "hello" {
			t.Errorf("Content = %q, want %q", msg.Content, "hello")
		}
		if msg.Role != RoleAssistant {
			t.Errorf("Role = %q, want %q", msg.Role, RoleAssistant)
		}
		if msg.ModelUsed == nil || *msg.ModelUsed != "gpt-4o-mini" {
			t.Errorf("ModelUsed = %v, want gpt-4o-mini", msg.ModelUsed)
		}
	})

	t.Run("empty reply is normalized to fallback", func(t *testing.T) {
		msg := NewAssistantMessage(sessionId, authorId, "", "gpt-4o-mini", now)
		if msg.Content != EmptyReplyFallback {
			t.Errorf("Content = %q, want fallback", msg.Content)
		}
	})

	t.Run("whitespace-only reply is normalized to fallback", func(t *testing.T) {
		msg := NewAssistantMessage(sessionId, authorId, "  \n\t ", "gpt-4o-mini", now)
		if msg.Content != EmptyReplyFallback {
			t.Errorf("Content = %q, want fallback", msg.Content)
		}
	})
}

func TestNewErrorMessage(t *testing.T) {
	sessionId := uuid.New()
	authorId := uuid.New()
	now := time.Now()

	msg := NewErrorMessage(sessionId, authorId, errors.New("upstream timed out"), "llama3", now)
	if msg.Content != ErrorPrefix+"upstream timed out" {
		t.Errorf("Content = %q, want error-tagged cause", msg.Content)
	}
	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want %q", msg.Role, RoleAssistant)
	}
	if !IsErrorTagged(msg.Content) {
		t.Error("IsErrorTagged should report true for an error message")
	}

	t.Run("empty model leaves ModelUsed nil", func(t *testing.T) {
		msg := NewErrorMessage(sessionId, authorId, errors.New("x"), "", now)
		if msg.ModelUsed != nil {
			t.Errorf("ModelUsed = %v, want nil", msg.ModelUsed)
		}
	})
}

func TestIsErrorTagged(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{ErrorPrefix + "something broke", true},
		{"a normal reply", false},
		{"[error]missing space is not tagged", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsErrorTagged(tt.content); got != tt.want {
			t.Errorf("IsErrorTagged(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestNewUserMessage(t *testing.T) {
	sessionId := uuid.New()
	authorId := uuid.New()
	now := time.Now()

	msg := NewUserMessage(sessionId, authorId, "hi", now)
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.ChatSessionId != sessionId || msg.AuthorId != authorId {
		t.Error("session or author id not carried through")
	}
	if msg.Id == uuid.Nil {
		t.Error("Id should be generated")
	}
}
