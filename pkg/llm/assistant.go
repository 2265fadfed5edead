package llm

import "context"

// AssistantProvider is the contract for an upstream tool-augmented
// assistant system that keeps its own server-side thread/run state and may
// consult attached reference documents via a vector-search tool.
type AssistantProvider interface {
	// CreateAssistant provisions an assistant plus a backing vector store
	// and returns their upstream handles.
	CreateAssistant(ctx context.Context, name, instructions, model string) (assistantID, vectorStoreID string, err error)

	// AttachFile uploads a local file and adds it to the vector store.
	AttachFile(ctx context.Context, vectorStoreID, path string) error

	// CreateThread starts a new upstream conversation thread.
	CreateThread(ctx context.Context) (threadID string, err error)

	// AddMessage appends a user message to a thread.
	AddMessage(ctx context.Context, threadID, content string) error

	// RunThread triggers a run and polls until a terminal status, then
	// returns the last assistant message text.
	RunThread(ctx context.Context, threadID, assistantID string) (string, error)

	// DeleteAssistant and DeleteVectorStore tear down upstream resources.
	DeleteAssistant(ctx context.Context, assistantID string) error
	DeleteVectorStore(ctx context.Context, vectorStoreID string) error
}
