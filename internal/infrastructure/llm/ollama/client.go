package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/infrastructure/resilience"
)

// Analyzer is the configured field analyzer: it asks a local Ollama model
// to structure extracted document text into the triage field mapping.
type Analyzer struct {
	baseURL      string
	model        string
	snippetLimit int
	httpClient   *http.Client
	executor     *resilience.Executor
}

type Options struct {
	SnippetLimit       int
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string, options Options) *Analyzer {
	snippetLimit := options.SnippetLimit
	if snippetLimit <= 0 {
		snippetLimit = 4000
	}
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}

	return &Analyzer{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		snippetLimit: snippetLimit,
		httpClient:   &http.Client{Timeout: requestTimeout},
		executor:     options.ResilienceExecutor,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.FieldMapping, error) {
	request := map[string]any{
		"model":  a.model,
		"prompt": buildAnalysisPrompt(text, a.snippetLimit),
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return a.postJSON(callCtx, "/api/generate", request, &response, "analyze")
	}

	var err error
	if a.executor != nil {
		err = a.executor.Execute(ctx, "ollama.analyze", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.FieldMapping{}, wrapTemporaryIfNeeded("analyze", err)
	}

	var fields domain.FieldMapping
	if err := json.Unmarshal([]byte(extractJSONObject(response.Response)), &fields); err != nil {
		return domain.FieldMapping{}, fmt.Errorf("parse analysis json: %w", err)
	}
	return fields, nil
}

// extractJSONObject tolerates models that wrap the object in prose.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
