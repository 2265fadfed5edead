package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ai-chat-be/pkg/llm"
)

// AssistantFallbackReply is returned when a run finishes but the last
// assistant message carries no extractable text content.
const AssistantFallbackReply = "The assistant returned a response that could not be displayed."

// Run polling policy. The upstream gives no completion signal other than
// polling, so the loop backs off exponentially and gives up after
// maxPollAttempts instead of spinning forever.
const (
	initialPollInterval = 500 * time.Millisecond
	maxPollInterval     = 5 * time.Second
	maxPollAttempts     = 60
)

type AssistantClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ llm.AssistantProvider = &AssistantClient{}

func NewAssistantClient(baseURL, apiKey string) *AssistantClient {
	return &AssistantClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Wire structs ---

type assistantCreateRequest struct {
	Name          string          `json:"name"`
	Instructions  string          `json:"instructions"`
	Model         string          `json:"model"`
	Tools         []assistantTool `json:"tools"`
	ToolResources *toolResources  `json:"tool_resources,omitempty"`
}

type assistantTool struct {
	Type string `json:"type"`
}

type toolResources struct {
	FileSearch *fileSearchResource `json:"file_search,omitempty"`
}

type fileSearchResource struct {
	VectorStoreIds []string `json:"vector_store_ids"`
}

type idResponse struct {
	Id string `json:"id"`
}

type runResponse struct {
	Id        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type threadMessageContent struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text"`
}

type threadMessage struct {
	Id      string                 `json:"id"`
	Role    string                 `json:"role"`
	Content []threadMessageContent `json:"content"`
}

type threadMessageList struct {
	Data []threadMessage `json:"data"`
}

// --- AssistantProvider implementation ---

func (a *AssistantClient) CreateAssistant(ctx context.Context, name, instructions, model string) (string, string, error) {
	var store idResponse
	if err := a.call(ctx, "POST", "/vector_stores", map[string]interface{}{"name": name}, &store); err != nil {
		return "", "", fmt.Errorf("create vector store: %w", err)
	}

	var assistant idResponse
	req := assistantCreateRequest{
		Name:         name,
		Instructions: instructions,
		Model:        model,
		Tools:        []assistantTool{{Type: "file_search"}},
		ToolResources: &toolResources{
			FileSearch: &fileSearchResource{VectorStoreIds: []string{store.Id}},
		},
	}
	if err := a.call(ctx, "POST", "/assistants", req, &assistant); err != nil {
		return "", "", fmt.Errorf("create assistant: %w", err)
	}

	return assistant.Id, store.Id, nil
}

func (a *AssistantClient) AttachFile(ctx context.Context, vectorStoreID, path string) error {
	fileID, err := a.uploadFile(ctx, path)
	if err != nil {
		return err
	}

	return a.call(ctx, "POST", "/vector_stores/"+vectorStoreID+"/files",
		map[string]interface{}{"file_id": fileID}, nil)
}

func (a *AssistantClient) CreateThread(ctx context.Context) (string, error) {
	var thread idResponse
	if err := a.call(ctx, "POST", "/threads", map[string]interface{}{}, &thread); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.Id, nil
}

func (a *AssistantClient) AddMessage(ctx context.Context, threadID, content string) error {
	return a.call(ctx, "POST", "/threads/"+threadID+"/messages",
		map[string]interface{}{"role": "user", "content": content}, nil)
}

func (a *AssistantClient) RunThread(ctx context.Context, threadID, assistantID string) (string, error) {
	var run runResponse
	if err := a.call(ctx, "POST", "/threads/"+threadID+"/runs",
		map[string]interface{}{"assistant_id": assistantID}, &run); err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}

	status, err := a.pollRun(ctx, threadID, run.Id)
	if err != nil {
		return "", err
	}
	if status != "completed" {
		return "", fmt.Errorf("run ended with status %q", status)
	}

	return a.lastAssistantText(ctx, threadID)
}

func (a *AssistantClient) DeleteAssistant(ctx context.Context, assistantID string) error {
	return a.call(ctx, "DELETE", "/assistants/"+assistantID, nil, nil)
}

func (a *AssistantClient) DeleteVectorStore(ctx context.Context, vectorStoreID string) error {
	return a.call(ctx, "DELETE", "/vector_stores/"+vectorStoreID, nil, nil)
}

// pollRun waits for the run to reach a terminal status, backing off up to
// maxPollInterval and giving up after maxPollAttempts.
func (a *AssistantClient) pollRun(ctx context.Context, threadID, runID string) (string, error) {
	interval := initialPollInterval

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		var run runResponse
		if err := a.call(ctx, "GET", "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
			return "", fmt.Errorf("poll run: %w", err)
		}

		switch run.Status {
		case "completed", "failed", "cancelled", "expired", "incomplete":
			if run.LastError != nil {
				return run.Status, fmt.Errorf("run %s: %s", run.Status, run.LastError.Message)
			}
			return run.Status, nil
		}

		interval = time.Duration(float64(interval) * 1.5)
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}

	return "", fmt.Errorf("run %s did not finish after %d polls", runID, maxPollAttempts)
}

// lastAssistantText extracts the text of the newest assistant message.
// Content blocks other than text (images, tool output) are skipped; when
// nothing usable remains the fixed fallback string is returned instead of
// an error, so a finished run never fails on an odd content shape.
func (a *AssistantClient) lastAssistantText(ctx context.Context, threadID string) (string, error) {
	var list threadMessageList
	if err := a.call(ctx, "GET", "/threads/"+threadID+"/messages?order=desc&limit=10", nil, &list); err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range list.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, block := range msg.Content {
			if block.Type == "text" && block.Text != nil && block.Text.Value != "" {
				return block.Text.Value, nil
			}
		}
		return AssistantFallbackReply, nil
	}

	return AssistantFallbackReply, nil
}

// --- HTTP plumbing ---

func (a *AssistantClient) call(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, bodyBytes)
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func (a *AssistantClient) uploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.BaseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, bodyBytes)
	}

	var uploaded idResponse
	if err := json.Unmarshal(bodyBytes, &uploaded); err != nil {
		return "", fmt.Errorf("unmarshal upload response: %w", err)
	}
	return uploaded.Id, nil
}
