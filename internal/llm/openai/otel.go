package openai

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jrygg01/FrameForge/internal/config"
)

// openAIMiddleware records provider status codes on the active span and,
// when enabled, the request and response bodies (data URIs included, so keep
// MaxBodyBytes small in production).
func openAIMiddleware(cfg config.OpenAIOTelEnvConfig) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		span := trace.SpanFromContext(req.Context())
		capture := cfg.CaptureBodies && span.IsRecording()

		if capture && req.Body != nil {
			req.Body = newBodyRecorder(req.Body, cfg.MaxBodyBytes, func(body string, truncated bool) {
				span.SetAttributes(
					attribute.String("openai.request.body", body),
					attribute.Bool("openai.request.body.truncated", truncated),
				)
			})
		}

		res, err := next(req)
		if err != nil || res == nil {
			return res, err
		}
		if span.IsRecording() {
			span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		}
		if capture && res.Body != nil {
			res.Body = newBodyRecorder(res.Body, cfg.MaxBodyBytes, func(body string, truncated bool) {
				span.SetAttributes(
					attribute.String("openai.response.body", body),
					attribute.Bool("openai.response.body.truncated", truncated),
				)
			})
		}
		return res, nil
	}
}

// bodyRecorder tees up to limit bytes of a body and reports them once on Close.
// A negative limit records everything; zero records nothing.
type bodyRecorder struct {
	rc        io.ReadCloser
	limit     int
	buf       bytes.Buffer
	truncated bool
	once      sync.Once
	report    func(body string, truncated bool)
}

func newBodyRecorder(rc io.ReadCloser, limit int, report func(string, bool)) io.ReadCloser {
	return &bodyRecorder{rc: rc, limit: limit, report: report}
}

func (b *bodyRecorder) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.keep(p[:n])
	}
	return n, err
}

func (b *bodyRecorder) keep(chunk []byte) {
	switch {
	case b.limit < 0:
		b.buf.Write(chunk)
	case b.limit == 0:
		b.truncated = true
	default:
		room := b.limit - b.buf.Len()
		if room <= 0 {
			b.truncated = true
			return
		}
		if len(chunk) > room {
			chunk = chunk[:room]
			b.truncated = true
		}
		b.buf.Write(chunk)
	}
}

func (b *bodyRecorder) Close() error {
	b.once.Do(func() {
		if b.report != nil {
			b.report(strings.ToValidUTF8(b.buf.String(), "�"), b.truncated)
		}
	})
	return b.rc.Close()
}
