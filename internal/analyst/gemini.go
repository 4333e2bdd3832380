package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"BoursePulse/internal/model"
)

const defaultGeminiModel = "gemini-2.0-flash"

const summaryPrompt = `Tu es un analyste financier spécialisé dans les sociétés cotées à la BRVM.
Analyse le rapport financier ci-dessous et réponds uniquement avec un objet JSON
contenant les champs "revenue_trend", "net_income", "dividend_policy" et
"outlook". Sois factuel et base tes conclusions uniquement sur le document.
Si une information est absente, indique-le clairement dans le champ concerné.`

// GeminiSummarizer implements Summarizer against the Gemini API. One client
// is kept per API key, created lazily.
type GeminiSummarizer struct {
	model string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiSummarizer creates a summarizer using the given model name, or
// the default when empty.
func NewGeminiSummarizer(modelName string) *GeminiSummarizer {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiSummarizer{
		model:   modelName,
		clients: make(map[string]*genai.Client),
	}
}

// Summarize sends the report text to Gemini and parses the structured reply.
func (g *GeminiSummarizer) Summarize(ctx context.Context, apiKey string, report model.Report) (*model.Summary, error) {
	if strings.TrimSpace(report.Text) == "" {
		return nil, Permanent(fmt.Errorf("report %s has no extractable text", report.URL))
	}

	client, err := g.client(ctx, apiKey)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	prompt := fmt.Sprintf("%s\n\nSociété : %s\nRapport : %s\n\n%s",
		summaryPrompt, report.Company, report.Title, report.Text)

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, Permanent(errors.New("backend returned an empty completion"))
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &summary); err != nil {
		return nil, Permanent(fmt.Errorf("malformed completion: %w", err))
	}
	return &summary, nil
}

func (g *GeminiSummarizer) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

// classifyGeminiError maps backend errors onto the failure taxonomy. The
// upstream reports both burst rate limiting and daily quota exhaustion as
// 429, so the message is inspected to tell them apart.
func classifyGeminiError(err error) *CallError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			if strings.Contains(strings.ToLower(apiErr.Message), "quota") {
				return QuotaExceeded(err)
			}
			return Transient(err)
		case apiErr.Code >= http.StatusInternalServerError:
			return Transient(err)
		default:
			return Permanent(err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"):
		return QuotaExceeded(err)
	default:
		return Transient(err)
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
