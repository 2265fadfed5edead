package stream

import (
	"context"
	"strings"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/llm"
)

// Emitter is the client side of a streaming turn. An error from EmitChunk
// means the connection is gone; the reconciler stops consuming but still
// runs its save-on-exit path.
type Emitter interface {
	EmitChunk(text string) error
	EmitError(message string) error
	EmitDone(sessionID string) error
}

// Saver persists the terminal record of a turn. Exactly one of the two
// methods is called per turn.
type Saver interface {
	// SaveSuccess persists the full assistant reply.
	SaveSuccess(ctx context.Context, content, modelUsed string) error

	// SaveError persists an error-tagged assistant message carrying
	// whatever partial content was streamed before the failure.
	SaveError(ctx context.Context, cause error, partial, modelUsed string) error
}

// Reconciler drives a token stream to the client while guaranteeing that
// exactly one terminal message is persisted once the stream ends,
// whatever way it ends.
type Reconciler struct {
	log logger.ILogger
}

func NewReconciler(log logger.ILogger) *Reconciler {
	return &Reconciler{log: log}
}

// Run consumes chunks until the channel closes or fails, forwarding each
// to the emitter. The saved flag guards the terminal write: when both a
// chunk-level error and the deferred cleanup fire, only the first caller
// persists. The done event is always emitted last.
func (r *Reconciler) Run(ctx context.Context, sessionID string, chunks <-chan llm.Chunk, modelUsed string, emitter Emitter, saver Saver) error {
	var builder strings.Builder
	var runErr error
	saved := false

	saveError := func(cause error) {
		if saved {
			return
		}
		saved = true
		if err := saver.SaveError(ctx, cause, builder.String(), modelUsed); err != nil {
			r.log.Error("StreamReconciler", "failed to persist error-tagged message", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	defer func() {
		// Save-on-exit guarantee: a panic or early return above still
		// leaves exactly one terminal record and a trailing done event.
		if rec := recover(); rec != nil {
			r.log.Error("StreamReconciler", "panic during streaming turn", map[string]interface{}{
				"session_id": sessionID,
				"panic":      rec,
			})
			saveError(errStreamAborted)
		}
		if err := emitter.EmitDone(sessionID); err != nil {
			r.log.Warn("StreamReconciler", "failed to emit done event", map[string]interface{}{
				"session_id": sessionID,
			})
		}
	}()

	for chunk := range chunks {
		if chunk.Err != nil {
			runErr = chunk.Err
			if err := emitter.EmitError(chunk.Err.Error()); err != nil {
				r.log.Warn("StreamReconciler", "failed to emit error event", map[string]interface{}{
					"session_id": sessionID,
				})
			}
			saveError(chunk.Err)
			return runErr
		}

		builder.WriteString(chunk.Content)
		if err := emitter.EmitChunk(chunk.Content); err != nil {
			// Client disconnect is treated like any other mid-stream
			// failure.
			runErr = err
			saveError(err)
			return runErr
		}
	}

	if !saved {
		saved = true
		if err := saver.SaveSuccess(ctx, builder.String(), modelUsed); err != nil {
			// The reply already streamed to the client; losing the save
			// is logged, not surfaced.
			r.log.Error("StreamReconciler", "failed to persist streamed reply", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	return runErr
}
