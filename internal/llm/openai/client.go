package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Jrygg01/FrameForge/internal/config"
	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/llm"
)

const (
	finishLength        = "length"
	finishContentFilter = "content_filter"
)

// Client is the OpenAI-compatible Completion Requester.
type Client struct {
	client openai.Client
}

func NewClient(cfg config.OpenAIEnvConfig, opts ...option.RequestOption) *Client {
	// Re-requests are decided by the normalizer and orchestrator, never by the SDK.
	options := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		options = append(options, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.OTel.Enabled {
		options = append(options, option.WithMiddleware(openAIMiddleware(cfg.OTel)))
	}
	options = append(options, opts...)
	return &Client{client: openai.NewClient(options...)}
}

func (c *Client) Request(ctx context.Context, request llm.CompletionRequest) llm.CompletionResult {
	tracer := otel.Tracer("frameforge/llm/openai")
	ctx, span := tracer.Start(ctx, "llm.openai.chat.completions")
	span.SetAttributes(
		attribute.String("llm.provider", "openai"),
		attribute.String("llm.model", request.Model),
		attribute.Float64("llm.temperature", request.Temperature),
		attribute.Int("llm.max_tokens", request.MaxOutputTokens),
		attribute.Int("llm.history_messages", len(request.History)),
		attribute.Bool("llm.has_image", request.Image != ""),
		attribute.String("request.id", core.RequestIDFromContext(ctx)),
		attribute.String("session.id", core.SessionIDFromContext(ctx)),
	)
	defer span.End()

	response, err := c.client.Chat.Completions.New(ctx, buildParams(request))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.TransportFailure(describeError(err))
	}
	if len(response.Choices) == 0 {
		err := fmt.Errorf("openai: empty response")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.TransportFailure(err.Error())
	}

	result := resultFromChoice(response.Choices[0])
	span.SetAttributes(
		attribute.String("llm.result", string(result.Kind)),
		attribute.String("llm.finish_reason", string(response.Choices[0].FinishReason)),
		attribute.Int64("llm.usage.completion_tokens", response.Usage.CompletionTokens),
	)
	span.SetStatus(codes.Ok, "")
	return result
}

func buildParams(request llm.CompletionRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.History)+2)
	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}
	for _, msg := range request.History {
		switch msg.Role {
		case llm.RoleAssistant:
			messages = append(messages, openai.ChatCompletionMessageParamOfAssistant(msg.Content))
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	if request.Image != "" {
		parts := []openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(request.UserPrompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    request.Image,
				Detail: "high",
			}),
		}
		messages = append(messages, openai.UserMessage(parts))
	} else {
		messages = append(messages, openai.UserMessage(request.UserPrompt))
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(request.Model),
		Messages:    messages,
		Temperature: openai.Float(request.Temperature),
	}
	if request.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxOutputTokens))
	}
	return params
}

// resultFromChoice is the only place that knows how the provider reports
// refusals and truncation.
func resultFromChoice(choice openai.ChatCompletionChoice) llm.CompletionResult {
	if refusal := choice.Message.Refusal; refusal != "" {
		return llm.Refused(refusal)
	}
	switch string(choice.FinishReason) {
	case finishLength:
		return llm.Incomplete(llm.IncompleteLength)
	case finishContentFilter:
		return llm.Refused("the provider's content filter blocked this response")
	}
	return llm.Completed(choice.Message.Content)
}

func describeError(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("openai: status %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "openai: request timed out"
	}
	return err.Error()
}
