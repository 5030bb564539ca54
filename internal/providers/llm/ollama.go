package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/pkg/retry"
)

// Ollama talks to an Ollama-compatible server. Generate hits the streaming
// /api/generate endpoint and hands the caller the raw NDJSON body.
type Ollama struct {
	baseProvider
	retrier *retry.Retrier
}

func NewOllama(baseURL, apiKey, model string, timeout time.Duration) *Ollama {
	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = 2
	return &Ollama{
		baseProvider: newBaseProvider(baseURL, apiKey, model, timeout),
		retrier:      retry.NewRetrier(cfg),
	}
}

func (o *Ollama) authHeaders() map[string]string {
	if o.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + o.apiKey}
}

func (o *Ollama) Generate(ctx context.Context, model, prompt string) (io.ReadCloser, error) {
	if model == "" {
		model = o.model
	}
	payload := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": true,
	}

	var resp *http.Response
	err := o.retrier.Do(ctx, func() error {
		r, err := o.doRequest(ctx, http.MethodPost, "/api/generate", payload, o.authHeaders())
		if err != nil {
			return err
		}
		if r.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
			r.Body.Close()
			return fmt.Errorf("http %d: %s", r.StatusCode, string(body))
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	return resp.Body, nil
}

func (o *Ollama) Models(ctx context.Context) ([]core.Model, error) {
	type ollamaTag struct {
		Name string `json:"name"`
	}
	type ollamaResponse struct {
		Models []ollamaTag `json:"models"`
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", core.ErrBackendUnavailable, resp.StatusCode)
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}

	models := make([]core.Model, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, core.Model{ID: m.Name, Name: m.Name})
	}
	return models, nil
}
