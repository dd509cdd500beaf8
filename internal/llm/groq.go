package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1/"

// GroqProvider is the fallback model backend, speaking the
// OpenAI-compatible chat completions API.
type GroqProvider struct {
	client  openai.Client
	model   string
	tools   []openai.ChatCompletionToolUnionParam
	timeout time.Duration
}

// NewGroqProvider creates the Groq backend. Returns nil when apiKey is
// empty so the caller can skip the provider cleanly.
func NewGroqProvider(apiKey, model string, timeout time.Duration) *GroqProvider {
	if apiKey == "" {
		return nil
	}

	client := openai.NewClient(
		option.WithBaseURL(groqBaseURL),
		option.WithAPIKey(apiKey),
	)

	return &GroqProvider{
		client:  client,
		model:   model,
		tools:   buildOpenAITools(),
		timeout: timeout,
	}
}

// buildOpenAITools converts the provider-neutral specs to the OpenAI
// v3 tool format. Schema types are lowercase per JSON Schema.
func buildOpenAITools() []openai.ChatCompletionToolUnionParam {
	specs := FunctionSpecs()
	result := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))

	for _, spec := range specs {
		properties := make(map[string]any, len(spec.Params))
		required := make([]string, 0)
		for _, p := range spec.Params {
			properties[p.Name] = map[string]string{
				"type":        "string",
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		result = append(result, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openai.String(spec.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		}))
	}

	return result
}

// Name implements Provider.
func (p *GroqProvider) Name() string { return "groq" }

// ClassifyIntent implements Provider. Auto tool choice lets the model
// either call one function or answer as chat.
func (p *GroqProvider) ClassifyIntent(ctx context.Context, message string, history []HistoryTurn) (intent.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierPrompt),
			openai.UserMessage(classifyPrompt(message, history)),
		},
		Tools:       p.tools,
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(256),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return intent.Decision{}, fmt.Errorf("groq classify: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return intent.Decision{}, fmt.Errorf("groq classify: %w", apperrors.ErrModelUnparseable)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		return p.decisionFromToolCall(choice.Message.ToolCalls[0])
	}
	if choice.Message.Content != "" {
		return intent.ChatDecision(), nil
	}

	return intent.Decision{}, fmt.Errorf("groq classify: no tool call or text: %w", apperrors.ErrModelUnparseable)
}

// decisionFromToolCall parses the tool call's JSON arguments and maps
// the function name onto the closed intent set.
func (p *GroqProvider) decisionFromToolCall(tc openai.ChatCompletionMessageToolCallUnion) (intent.Decision, error) {
	if tc.Type != "function" {
		return intent.Decision{}, fmt.Errorf("groq classify: unexpected tool type %q: %w", tc.Type, apperrors.ErrModelUnparseable)
	}

	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return intent.Decision{}, fmt.Errorf("groq classify: bad arguments: %w", apperrors.ErrModelUnparseable)
		}
	}

	return decisionFromCall(tc.Function.Name, args)
}

// ComposeReply implements Provider with a plain chat completion.
func (p *GroqProvider) ComposeReply(ctx context.Context, message string, history []HistoryTurn, dataSummary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(personaPrompt),
			openai.UserMessage(composePrompt(message, history, dataSummary)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(512),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq compose: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq compose: %w", apperrors.ErrModelUnparseable)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("groq compose: empty reply: %w", apperrors.ErrModelUnparseable)
	}
	return reply, nil
}
