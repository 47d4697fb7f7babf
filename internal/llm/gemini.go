package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// GeminiGenerator calls Google's Gemini models through the genai SDK.
type GeminiGenerator struct {
	Model  string
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, &ServiceError{Op: "connect", Err: err}
	}
	return &GeminiGenerator{Model: strings.TrimSpace(model), client: cl}, nil
}

func (g *GeminiGenerator) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	m := g.client.GenerativeModel(g.Model)
	m.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(req.MaxTokens)
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil && len(req.Image.Data) > 0 {
		mime := req.Image.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, &genai.Blob{MIMEType: mime, Data: req.Image.Data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		se := &ServiceError{Op: "generate", Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			se.Status = gerr.Code
		}
		return "", se
	}
	return firstText(resp), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
