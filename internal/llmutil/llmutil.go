package llmutil

import (
	"context"
	"log/slog"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/llm"
)

// Decoder turns one completion result into a value or a classified error.
type Decoder[T any] func(result llm.CompletionResult) (T, error)

// RetryPolicy inspects the failure of the first attempt and returns the
// corrective request to issue, or false to give up.
type RetryPolicy func(err error) (llm.CompletionRequest, bool)

const (
	stepAttempt = "attempt"
	stepRetry   = "retry"
)

// RequestWithRetry runs first, and when decoding fails and retry agrees, runs
// exactly one corrective request. The second failure is final.
func RequestWithRetry[T any](
	ctx context.Context,
	requester llm.Requester,
	logger *slog.Logger,
	first llm.CompletionRequest,
	decode Decoder[T],
	retry RetryPolicy,
) (T, error) {
	logger = DefaultLogger(logger)

	value, err := requestOnce(ctx, requester, logger, stepAttempt, first, decode)
	if err == nil || retry == nil {
		return value, err
	}
	next, ok := retry(err)
	if !ok {
		return value, err
	}
	logger.Info("llm retrying with corrective prompt", "reason", err.Error())
	return requestOnce(ctx, requester, logger, stepRetry, next, decode)
}

func requestOnce[T any](
	ctx context.Context,
	requester llm.Requester,
	logger *slog.Logger,
	step string,
	request llm.CompletionRequest,
	decode Decoder[T],
) (T, error) {
	result := requester.Request(ctx, request)
	logger.Info("llm completion",
		"step", step,
		"model", request.Model,
		"temperature", request.Temperature,
		"max_tokens", request.MaxOutputTokens,
		"result", string(result.Kind),
		"chars", len(result.Text),
	)
	return decode(result)
}

// ResultError maps the non-completed variants onto the error taxonomy.
// It returns nil for Completed results. budget and knob feed the truncation message.
func ResultError(result llm.CompletionResult, budget int, knob string) error {
	switch result.Kind {
	case llm.ResultCompleted:
		return nil
	case llm.ResultRefused:
		return core.RefusalError(result.Reason)
	case llm.ResultIncomplete:
		return core.IncompleteError(result.Reason, knob, budget)
	case llm.ResultTransportError:
		return &core.Error{Kind: core.KindTransport, Message: "model provider unavailable", Detail: result.Message}
	default:
		return &core.Error{Kind: core.KindTransport, Message: "model provider returned an unknown result", Detail: string(result.Kind)}
	}
}

// DefaultLogger ensures a non-nil logger.
func DefaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
