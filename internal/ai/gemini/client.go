package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultFastModel    = "gemini-2.5-flash"
	defaultPremiumModel = "gemini-2.5-pro"
	pingPrompt          = "ping"
)

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Call is one generation request.
type Call struct {
	Model           string
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	// Function, when set, forces the model to answer by calling it.
	Function *genai.FunctionDeclaration
}

// Reply is the decoded answer of a Call. Args is set when the model returned
// a call of the requested function; Text carries any textual parts.
type Reply struct {
	Text   string
	Args   map[string]any
	Tokens int
}

// Generator wraps the Google GenAI client.
type Generator struct {
	models modelsAPI
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Generator{models: client.Models}, nil
}

// Generate sends the call to Gemini.
func (g *Generator) Generate(ctx context.Context, call Call) (*Reply, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	prompt := strings.TrimSpace(call.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	model := strings.TrimSpace(call.Model)
	if model == "" {
		model = defaultFastModel
	}

	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), buildConfig(call))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return nil, errors.New("gemini api returned nil response")
	}

	reply := &Reply{Text: collectText(resp)}
	if resp.UsageMetadata != nil {
		reply.Tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	if call.Function != nil {
		for _, fc := range resp.FunctionCalls() {
			if fc != nil && fc.Name == call.Function.Name {
				reply.Args = fc.Args
				break
			}
		}
	}

	if reply.Args == nil && reply.Text == "" {
		return nil, errors.New("gemini api returned empty response")
	}

	return reply, nil
}

// Ping issues a minimal request to verify the key and model are usable.
func (g *Generator) Ping(ctx context.Context, model string) error {
	if g == nil || g.models == nil {
		return errors.New("gemini generator is not initialized")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultFastModel
	}

	_, err := g.models.GenerateContent(ctx, model, genai.Text(pingPrompt), &genai.GenerateContentConfig{MaxOutputTokens: 1})
	if err != nil {
		return fmt.Errorf("ping %s: %w", model, err)
	}
	return nil
}

func buildConfig(call Call) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(call.Temperature),
	}
	if call.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = call.MaxOutputTokens
	}
	if system := strings.TrimSpace(call.System); system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if call.Function != nil {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{call.Function}}}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{call.Function.Name},
			},
		}
	}
	return cfg
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}
