// Package generate composes completion, normalization and repair into the
// image, text and voice generation flows.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jrygg01/FrameForge/internal/config"
	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/llm"
	"github.com/Jrygg01/FrameForge/internal/llmutil"
	"github.com/Jrygg01/FrameForge/internal/markup"
	"github.com/Jrygg01/FrameForge/internal/normalize"
)

const (
	imageTemperature  = 0.2
	editTemperature   = 0.7
	strictTemperature = 0.2

	defaultHistoryLimit = 12
)

type Config struct {
	Model           string
	MaxOutputTokens int
	// BudgetKnob names the setting users raise after a truncation.
	BudgetKnob   string
	HistoryLimit int
}

type Orchestrator struct {
	requester  llm.Requester
	prompts    *config.Prompts
	normalizer *normalize.Normalizer
	intent     IntentClassifier
	cfg        Config
	logger     *slog.Logger
}

type ImageInput struct {
	// Image is a data URI of the sketch.
	Image      string
	PromptHint string
}

type ImageOutput struct {
	Document core.UIDocument
	// Rendered is Document composed into a single page.
	Rendered string
	Model    string
}

type TextInput struct {
	Instruction string
	Context     []core.ChatTurn
	CurrentHTML string
}

type TextOutput struct {
	Message     string
	MessageHTML string
	// UpdatedHTML is empty when the answer is conversational only.
	UpdatedHTML string
}

func New(requester llm.Requester, prompts *config.Prompts, cfg Config, intent IntentClassifier, logger *slog.Logger) (*Orchestrator, error) {
	if requester == nil {
		return nil, errors.New("completion requester is required")
	}
	if prompts == nil {
		return nil, errors.New("prompts are required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = config.DefaultMaxOutputTokens
	}
	if cfg.BudgetKnob == "" {
		cfg.BudgetKnob = config.MaxOutputTokensEnv
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if intent == nil {
		intent = KeywordIntent{}
	}
	correction, err := config.Render(prompts.JSONCorrection, config.PromptData{})
	if err != nil {
		return nil, fmt.Errorf("render json correction prompt: %w", err)
	}
	return &Orchestrator{
		requester:  requester,
		prompts:    prompts,
		normalizer: normalize.New(requester, correction, cfg.BudgetKnob, logger),
		intent:     intent,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func (o *Orchestrator) Model() string {
	return o.cfg.Model
}

func (o *Orchestrator) MaxOutputTokens() int {
	return o.cfg.MaxOutputTokens
}

// FromImage turns a sketch into html/css/js.
func (o *Orchestrator) FromImage(ctx context.Context, in ImageInput) (ImageOutput, error) {
	image, err := core.NormalizeImageDataURI(in.Image)
	if err != nil {
		return ImageOutput{}, err
	}

	ctx, span := o.startSpan(ctx, "image")
	defer span.End()
	logger := core.ComponentLogger(ctx, o.logger, "generate").With("mode", "image")

	data := config.PromptData{Hint: strings.TrimSpace(in.PromptHint)}
	system, err := config.Render(o.prompts.ImageSystem, data)
	if err != nil {
		return ImageOutput{}, endSpan(span, fmt.Errorf("render image system prompt: %w", err))
	}
	user, err := config.Render(o.prompts.ImageUser, data)
	if err != nil {
		return ImageOutput{}, endSpan(span, fmt.Errorf("render image user prompt: %w", err))
	}

	logger.Info("generating from image", "model", o.cfg.Model, "image_bytes", len(image))
	doc, err := o.normalizer.Generate(ctx, llm.CompletionRequest{
		Model:           o.cfg.Model,
		SystemPrompt:    system,
		UserPrompt:      user,
		Image:           image,
		MaxOutputTokens: o.cfg.MaxOutputTokens,
		Temperature:     imageTemperature,
	})
	if err != nil {
		logger.Warn("image generation failed", "kind", string(core.KindOf(err)), "error", err)
		return ImageOutput{}, endSpan(span, err)
	}
	return ImageOutput{
		Document: doc,
		Rendered: markup.Compose(doc),
		Model:    o.cfg.Model,
	}, endSpan(span, nil)
}

// FromText applies a natural-language instruction to the current page, or
// creates a page when there is none.
func (o *Orchestrator) FromText(ctx context.Context, in TextInput) (TextOutput, error) {
	return o.fromText(ctx, "text", in)
}

// FromVoiceTranscript handles a transcribed voice instruction like FromText.
func (o *Orchestrator) FromVoiceTranscript(ctx context.Context, in TextInput) (TextOutput, error) {
	in.Instruction = strings.TrimSpace(in.Instruction)
	if in.Instruction == "" {
		return TextOutput{}, core.Validationf("transcript is empty")
	}
	return o.fromText(ctx, "voice", in)
}

func (o *Orchestrator) fromText(ctx context.Context, mode string, in TextInput) (TextOutput, error) {
	in.Instruction = strings.TrimSpace(in.Instruction)
	if in.Instruction == "" {
		return TextOutput{}, core.Validationf("message is required")
	}
	for i, turn := range in.Context {
		if !turn.Role.Valid() {
			return TextOutput{}, core.Validationf("context[%d] has unknown role %q", i, turn.Role)
		}
	}

	ctx, span := o.startSpan(ctx, mode)
	defer span.End()
	intent := o.intent.Classify(in.Instruction)
	span.SetAttributes(attribute.String("generate.intent", intent.String()))
	logger := core.ComponentLogger(ctx, o.logger, "generate").With("mode", mode, "intent", intent.String())

	var (
		out TextOutput
		err error
	)
	if intent == IntentCanvas {
		out, err = o.canvasHelp(ctx, in)
	} else {
		out, err = o.editHTML(ctx, logger, in)
	}
	if err != nil {
		logger.Warn("text generation failed", "kind", string(core.KindOf(err)), "error", err)
		return TextOutput{}, endSpan(span, err)
	}
	out.MessageHTML = renderMarkdown(out.Message)
	span.SetAttributes(attribute.Bool("generate.updated_html", out.UpdatedHTML != ""))
	return out, endSpan(span, nil)
}

func (o *Orchestrator) canvasHelp(ctx context.Context, in TextInput) (TextOutput, error) {
	system, err := config.Render(o.prompts.CanvasHelpSystem, config.PromptData{Instruction: in.Instruction})
	if err != nil {
		return TextOutput{}, fmt.Errorf("render canvas help prompt: %w", err)
	}
	result := o.requester.Request(ctx, llm.CompletionRequest{
		Model:           o.cfg.Model,
		SystemPrompt:    system,
		UserPrompt:      in.Instruction,
		History:         o.history(in.Context),
		MaxOutputTokens: o.cfg.MaxOutputTokens,
		Temperature:     editTemperature,
	})
	if err := llmutil.ResultError(result, o.cfg.MaxOutputTokens, o.cfg.BudgetKnob); err != nil {
		return TextOutput{}, err
	}
	return TextOutput{Message: strings.TrimSpace(result.Text)}, nil
}

// notHTMLError carries a completion that still was not HTML after repair.
type notHTMLError struct {
	raw string
}

func (e *notHTMLError) Error() string {
	return "completion is not html"
}

func (o *Orchestrator) editHTML(ctx context.Context, logger *slog.Logger, in TextInput) (TextOutput, error) {
	data := config.PromptData{Instruction: in.Instruction, CurrentHTML: in.CurrentHTML}
	system, err := config.Render(o.prompts.HTMLEditSystem, data)
	if err != nil {
		return TextOutput{}, fmt.Errorf("render edit system prompt: %w", err)
	}
	userTmpl := o.prompts.HTMLEditUser
	if strings.TrimSpace(in.CurrentHTML) == "" {
		userTmpl = o.prompts.HTMLCreateUser
	}
	user, err := config.Render(userTmpl, data)
	if err != nil {
		return TextOutput{}, fmt.Errorf("render edit user prompt: %w", err)
	}
	strict, err := config.Render(o.prompts.HTMLStrictSystem, data)
	if err != nil {
		return TextOutput{}, fmt.Errorf("render strict system prompt: %w", err)
	}

	first := llm.CompletionRequest{
		Model:           o.cfg.Model,
		SystemPrompt:    system,
		UserPrompt:      user,
		History:         o.history(in.Context),
		MaxOutputTokens: o.cfg.MaxOutputTokens,
		Temperature:     editTemperature,
	}
	decode := func(result llm.CompletionResult) (string, error) {
		if err := llmutil.ResultError(result, o.cfg.MaxOutputTokens, o.cfg.BudgetKnob); err != nil {
			return "", err
		}
		page, verdict := markup.Repair(result.Text)
		logger.Debug("classified completion", "verdict", verdict.String())
		if verdict == markup.NotHTML {
			return "", &notHTMLError{raw: strings.TrimSpace(result.Text)}
		}
		return page, nil
	}
	retry := func(err error) (llm.CompletionRequest, bool) {
		var notHTML *notHTMLError
		if !errors.As(err, &notHTML) {
			return llm.CompletionRequest{}, false
		}
		forced := first
		forced.SystemPrompt = strict
		forced.Temperature = strictTemperature
		return forced, true
	}

	page, err := llmutil.RequestWithRetry(ctx, o.requester, logger, first, decode, retry)
	var notHTML *notHTMLError
	if errors.As(err, &notHTML) {
		logger.Info("falling back to conversational answer")
		return TextOutput{Message: notHTML.raw}, nil
	}
	if err != nil {
		return TextOutput{}, err
	}
	message := "I updated the page."
	if strings.TrimSpace(in.CurrentHTML) == "" {
		message = "I created a page from your description."
	}
	return TextOutput{Message: message, UpdatedHTML: page}, nil
}

// history converts the tail of the conversation into prompt messages.
// System turns are not forwarded.
func (o *Orchestrator) history(turns []core.ChatTurn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		switch turn.Role {
		case core.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: turn.Content})
		case core.RoleAssistant:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: turn.Content})
		}
	}
	if len(msgs) > o.cfg.HistoryLimit {
		msgs = msgs[len(msgs)-o.cfg.HistoryLimit:]
	}
	return msgs
}

func (o *Orchestrator) startSpan(ctx context.Context, mode string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("frameforge/generate").Start(ctx, "generate."+mode)
	span.SetAttributes(
		attribute.String("generate.mode", mode),
		attribute.String("llm.model", o.cfg.Model),
		attribute.String("request.id", core.RequestIDFromContext(ctx)),
	)
	if sessionID := core.SessionIDFromContext(ctx); sessionID != "" {
		span.SetAttributes(attribute.String("session.id", sessionID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.kind", string(core.KindOf(err))))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// renderMarkdown converts an assistant message to HTML for the chat widget.
// Raw HTML in the message is omitted by goldmark's default renderer.
func renderMarkdown(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(message), &buf); err != nil {
		return ""
	}
	return buf.String()
}
