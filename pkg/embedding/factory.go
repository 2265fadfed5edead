package embedding

import "fmt"

func NewEmbeddingProvider(providerType, model, baseURL, apiKey string, dimensions int) (EmbeddingProvider, error) {
	switch providerType {
	case "openai":
		return NewOpenAIProvider(baseURL, apiKey, model, dimensions), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
