package memory

import (
	"testing"
	"time"

	"ai-chat-be/pkg/store"
)

func TestClaimIsExclusivePerSession(t *testing.T) {
	repo := NewStreamRepository()

	state := &store.StreamState{
		SessionID: "session-1",
		UserID:    "user-1",
		Status:    store.StreamStatusStarted,
		StartedAt: time.Now(),
	}

	if !repo.Claim(state) {
		t.Fatal("first claim should succeed")
	}
	if repo.Claim(state) {
		t.Fatal("second claim on the same session should fail while the first is held")
	}

	if repo.Claim(&store.StreamState{SessionID: "session-2"}) == false {
		t.Fatal("claim on a different session should succeed")
	}

	repo.Delete(state.SessionID)
	if !repo.Claim(state) {
		t.Fatal("claim should succeed again after the slot is released")
	}
}

func TestSaveOverwritesClaimedState(t *testing.T) {
	repo := NewStreamRepository()

	repo.Claim(&store.StreamState{SessionID: "session-1", Status: store.StreamStatusStarted})
	repo.Save(&store.StreamState{SessionID: "session-1", Status: store.StreamStatusStreaming})

	got, found := repo.Get("session-1")
	if !found {
		t.Fatal("expected state for session-1")
	}
	if got.Status != store.StreamStatusStreaming {
		t.Fatalf("Status = %q, want %q", got.Status, store.StreamStatusStreaming)
	}
}
