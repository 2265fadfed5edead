package stream

import (
	"context"
	"errors"
	"testing"

	"ai-chat-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordingEmitter struct {
	chunks    []string
	errors    []string
	doneCount int

	failChunkAt int // 1-based index of EmitChunk call that fails, 0 disables
	calls       int
}

func (e *recordingEmitter) EmitChunk(text string) error {
	e.calls++
	if e.failChunkAt > 0 && e.calls >= e.failChunkAt {
		return errors.New("client gone")
	}
	e.chunks = append(e.chunks, text)
	return nil
}

func (e *recordingEmitter) EmitError(message string) error {
	e.errors = append(e.errors, message)
	return nil
}

func (e *recordingEmitter) EmitDone(sessionID string) error {
	e.doneCount++
	return nil
}

type recordingSaver struct {
	successCount  int
	errorCount    int
	savedContent  string
	savedPartial  string
	savedModel    string
	savedCause    error
	failSaveError bool
}

func (s *recordingSaver) SaveSuccess(ctx context.Context, content, modelUsed string) error {
	s.successCount++
	s.savedContent = content
	s.savedModel = modelUsed
	return nil
}

func (s *recordingSaver) SaveError(ctx context.Context, cause error, partial, modelUsed string) error {
	s.errorCount++
	s.savedCause = cause
	s.savedPartial = partial
	s.savedModel = modelUsed
	if s.failSaveError {
		return errors.New("db down")
	}
	return nil
}

func chunkChannel(chunks ...llm.Chunk) <-chan llm.Chunk {
	ch := make(chan llm.Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func TestRunCleanStream(t *testing.T) {
	r := NewReconciler(nopLogger{})
	emitter := &recordingEmitter{}
	saver := &recordingSaver{}

	chunks := chunkChannel(
		llm.Chunk{Content: "Hello"},
		llm.Chunk{Content: ", "},
		llm.Chunk{Content: "world"},
	)

	err := r.Run(context.Background(), "sess-1", chunks, "llama3", emitter, saver)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if len(emitter.chunks) != 3 {
		t.Errorf("chunk events = %d, want 3", len(emitter.chunks))
	}
	if emitter.doneCount != 1 {
		t.Errorf("done events = %d, want 1", emitter.doneCount)
	}
	if saver.successCount != 1 || saver.errorCount != 0 {
		t.Fatalf("saves = %d success / %d error, want 1/0", saver.successCount, saver.errorCount)
	}
	if saver.savedContent != "Hello, world" {
		t.Errorf("saved content = %q, want accumulated reply", saver.savedContent)
	}
	if saver.savedModel != "llama3" {
		t.Errorf("saved model = %q, want llama3", saver.savedModel)
	}
}

func TestRunMidStreamError(t *testing.T) {
	r := NewReconciler(nopLogger{})
	emitter := &recordingEmitter{}
	saver := &recordingSaver{}

	cause := errors.New("upstream reset")
	chunks := chunkChannel(
		llm.Chunk{Content: "par"},
		llm.Chunk{Content: "tial"},
		llm.Chunk{Err: cause},
	)

	err := r.Run(context.Background(), "sess-2", chunks, "llama3", emitter, saver)
	if !errors.Is(err, cause) {
		t.Fatalf("Run() error = %v, want the chunk error", err)
	}

	if len(emitter.chunks) != 2 {
		t.Errorf("chunk events = %d, want 2", len(emitter.chunks))
	}
	if len(emitter.errors) != 1 {
		t.Errorf("error events = %d, want 1", len(emitter.errors))
	}
	if emitter.doneCount != 1 {
		t.Errorf("done events = %d, want 1 (done always follows error)", emitter.doneCount)
	}
	if saver.successCount != 0 || saver.errorCount != 1 {
		t.Fatalf("saves = %d success / %d error, want 0/1", saver.successCount, saver.errorCount)
	}
	if saver.savedPartial != "partial" {
		t.Errorf("saved partial = %q, want streamed prefix", saver.savedPartial)
	}
	if !errors.Is(saver.savedCause, cause) {
		t.Errorf("saved cause = %v, want the chunk error", saver.savedCause)
	}
}

func TestRunClientDisconnect(t *testing.T) {
	r := NewReconciler(nopLogger{})
	emitter := &recordingEmitter{failChunkAt: 2}
	saver := &recordingSaver{}

	chunks := chunkChannel(
		llm.Chunk{Content: "one"},
		llm.Chunk{Content: "two"},
		llm.Chunk{Content: "three"},
	)

	err := r.Run(context.Background(), "sess-3", chunks, "llama3", emitter, saver)
	if err == nil {
		t.Fatal("Run() error = nil, want disconnect error")
	}

	if saver.successCount != 0 || saver.errorCount != 1 {
		t.Fatalf("saves = %d success / %d error, want 0/1", saver.successCount, saver.errorCount)
	}
	if saver.savedPartial != "one" {
		t.Errorf("saved partial = %q, want content delivered before the drop", saver.savedPartial)
	}
}

func TestRunSingleTerminalSaveOnSaveErrorFailure(t *testing.T) {
	// Even when persisting the error record itself fails, no second
	// terminal write is attempted.
	r := NewReconciler(nopLogger{})
	emitter := &recordingEmitter{}
	saver := &recordingSaver{failSaveError: true}

	chunks := chunkChannel(llm.Chunk{Err: errors.New("boom")})

	_ = r.Run(context.Background(), "sess-4", chunks, "llama3", emitter, saver)

	if saver.errorCount != 1 {
		t.Errorf("error saves = %d, want exactly 1", saver.errorCount)
	}
	if saver.successCount != 0 {
		t.Errorf("success saves = %d, want 0", saver.successCount)
	}
	if emitter.doneCount != 1 {
		t.Errorf("done events = %d, want 1", emitter.doneCount)
	}
}

func TestRunEmptyStream(t *testing.T) {
	// A stream that closes without chunks still persists a terminal
	// record; normalization of the empty content happens at save time.
	r := NewReconciler(nopLogger{})
	emitter := &recordingEmitter{}
	saver := &recordingSaver{}

	err := r.Run(context.Background(), "sess-5", chunkChannel(), "llama3", emitter, saver)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if saver.successCount != 1 {
		t.Errorf("success saves = %d, want 1", saver.successCount)
	}
	if saver.savedContent != "" {
		t.Errorf("saved content = %q, want empty string", saver.savedContent)
	}
}
