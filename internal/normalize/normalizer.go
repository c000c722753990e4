package normalize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/llm"
	"github.com/Jrygg01/FrameForge/internal/llmutil"
)

// correctionTemperature is used for the corrective re-request.
const correctionTemperature = 0.0

// Normalizer requests a JSON document and, when the first completion cannot
// be normalized, re-requests once with the correction prompt appended.
type Normalizer struct {
	requester  llm.Requester
	correction string
	knob       string
	logger     *slog.Logger
}

// New returns a Normalizer. correction is appended to the system prompt of
// the re-request; knob names the token budget setting in truncation errors.
func New(requester llm.Requester, correction, knob string, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		requester:  requester,
		correction: strings.TrimSpace(correction),
		knob:       knob,
		logger:     logger,
	}
}

func (n *Normalizer) Generate(ctx context.Context, request llm.CompletionRequest) (core.UIDocument, error) {
	logger := core.ComponentLogger(ctx, n.logger, "normalizer")
	decode := func(result llm.CompletionResult) (core.UIDocument, error) {
		return FromResult(result, request.MaxOutputTokens, n.knob)
	}
	retry := func(err error) (llm.CompletionRequest, bool) {
		if core.KindOf(err) != core.KindMalformed || n.correction == "" {
			return llm.CompletionRequest{}, false
		}
		corrective := request
		corrective.SystemPrompt = strings.TrimSpace(request.SystemPrompt + "\n\n" + n.correction)
		corrective.Temperature = correctionTemperature
		return corrective, true
	}
	return llmutil.RequestWithRetry(ctx, n.requester, logger, request, decode, retry)
}
