package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

// GeminiProvider is the primary model backend, using Gemini function
// calling for classification and plain generation for composition.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	tools   []*genai.Tool
	timeout time.Duration
}

// NewGeminiProvider creates the Gemini backend. Returns (nil, nil)
// when apiKey is empty so the caller can skip the provider cleanly.
func NewGeminiProvider(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		tools: []*genai.Tool{{
			FunctionDeclarations: buildGeminiFunctions(),
		}},
		timeout: timeout,
	}, nil
}

// buildGeminiFunctions converts the provider-neutral specs to Gemini
// function declarations.
func buildGeminiFunctions() []*genai.FunctionDeclaration {
	specs := FunctionSpecs()
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))

	for _, spec := range specs {
		properties := make(map[string]*genai.Schema, len(spec.Params))
		var required []string
		for _, p := range spec.Params {
			properties[p.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}

	return decls
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// ClassifyIntent implements Provider. AUTO mode (the default) lets the
// model either call one function or answer as chat.
func (p *GeminiProvider) ClassifyIntent(ctx context.Context, message string, history []HistoryTurn) (intent.Decision, error) {
	// A parent deadline closer than the model budget wins; that is the
	// per-message budget asserting itself.
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Tools:             p.tools,
		SystemInstruction: genai.NewContentFromText(classifierPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.1),
		MaxOutputTokens:   256,
	}

	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(classifyPrompt(message, history)),
		config,
	)
	if err != nil {
		return intent.Decision{}, fmt.Errorf("gemini classify: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return intent.Decision{}, fmt.Errorf("gemini classify: %w", apperrors.ErrModelUnparseable)
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return intent.Decision{}, fmt.Errorf("gemini classify: no content: %w", apperrors.ErrModelUnparseable)
	}

	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			return decisionFromCall(part.FunctionCall.Name, part.FunctionCall.Args)
		}
		if part.Text != "" {
			// Plain text means the model saw no data intent.
			return intent.ChatDecision(), nil
		}
	}

	return intent.Decision{}, fmt.Errorf("gemini classify: no function call or text: %w", apperrors.ErrModelUnparseable)
}

// decisionFromCall maps a model function call onto the closed intent
// set. Unknown function names degrade to chat rather than erroring, so
// a hallucinated tool never breaks the pipeline.
func decisionFromCall(name string, args map[string]any) (intent.Decision, error) {
	it, ok := IntentForFunction(name)
	if !ok {
		return intent.ChatDecision(), nil
	}
	return intent.Decision{
		Intent:       it,
		Params:       paramsFromArgs(name, args),
		FunctionName: name,
	}, nil
}

// ComposeReply implements Provider with a plain generation call.
func (p *GeminiProvider) ComposeReply(ctx context.Context, message string, history []HistoryTurn, dataSummary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(personaPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   512,
	}

	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(composePrompt(message, history, dataSummary)),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini compose: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini compose: %w", apperrors.ErrModelUnparseable)
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini compose: no content: %w", apperrors.ErrModelUnparseable)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}

	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", fmt.Errorf("gemini compose: empty reply: %w", apperrors.ErrModelUnparseable)
	}
	return reply, nil
}
