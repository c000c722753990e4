package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/generate"
)

type imageRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	HTML     string `json:"html"`
	CSS      string `json:"css"`
	JS       string `json:"js"`
	Document string `json:"document"`
	Model    string `json:"model"`
}

type textRequest struct {
	Message     string          `json:"message"`
	Transcript  string          `json:"transcript"`
	Context     []core.ChatTurn `json:"context"`
	CurrentHTML string          `json:"currentHtml"`
	SessionID   string          `json:"sessionId"`
}

type textResponse struct {
	Message     string `json:"message"`
	MessageHTML string `json:"messageHtml,omitempty"`
	UpdatedHTML string `json:"updatedHtml,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

func (s *Server) handleGenerateImage(c echo.Context) error {
	in, err := bindImage(c)
	if err != nil {
		return s.writeError(c, err)
	}
	ctx, cancel := s.withTimeout(c.Request().Context())
	defer cancel()

	out, err := s.gen.FromImage(ctx, in)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, imageResponse{
		HTML:     out.Document.HTML,
		CSS:      out.Document.CSS,
		JS:       out.Document.JS,
		Document: out.Rendered,
		Model:    out.Model,
	})
}

// bindImage accepts a JSON body with a data URI or a multipart upload.
func bindImage(c echo.Context) (generate.ImageInput, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return generate.ImageInput{}, core.Validationf("image file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return generate.ImageInput{}, fmt.Errorf("open uploaded image: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, core.MaxImageBytes+1))
		if err != nil {
			return generate.ImageInput{}, fmt.Errorf("read uploaded image: %w", err)
		}
		uri, err := core.ImageDataURI(data)
		if err != nil {
			return generate.ImageInput{}, err
		}
		return generate.ImageInput{Image: uri, PromptHint: c.FormValue("prompt")}, nil
	}

	var req imageRequest
	if err := c.Bind(&req); err != nil {
		return generate.ImageInput{}, &core.Error{Kind: core.KindValidation, Message: "invalid request body", Err: err}
	}
	return generate.ImageInput{Image: req.Image, PromptHint: req.Prompt}, nil
}

func (s *Server) handleGenerateText(c echo.Context) error {
	return s.handleConversation(c, false)
}

func (s *Server) handleGenerateVoice(c echo.Context) error {
	return s.handleConversation(c, true)
}

func (s *Server) handleConversation(c echo.Context, voice bool) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, &core.Error{Kind: core.KindValidation, Message: "invalid request body", Err: err})
	}
	instruction := req.Message
	if voice {
		instruction = req.Transcript
	}
	if strings.TrimSpace(instruction) == "" {
		if voice {
			return s.writeError(c, core.Validationf("transcript is empty"))
		}
		return s.writeError(c, core.Validationf("message is required"))
	}

	sessionID, err := s.sessionFor(req.SessionID)
	if err != nil {
		return s.writeError(c, err)
	}

	ctx, cancel := s.withTimeout(c.Request().Context())
	defer cancel()
	if sessionID != "" {
		ctx = core.WithSessionID(ctx, sessionID)
		ctx = core.WithLogger(ctx, core.LoggerFromContext(ctx).With("session_id", sessionID))
	}
	logger := core.ComponentLogger(ctx, s.logger, "api")

	history := req.Context
	if history == nil && sessionID != "" {
		stored, err := s.transcripts.List(ctx, sessionID, 0)
		if err != nil {
			logger.Warn("load transcript failed", "session_id", sessionID, "error", err)
		} else {
			history = stored
		}
	}

	in := generate.TextInput{Instruction: instruction, Context: history, CurrentHTML: req.CurrentHTML}
	var out generate.TextOutput
	if voice {
		out, err = s.gen.FromVoiceTranscript(ctx, in)
	} else {
		out, err = s.gen.FromText(ctx, in)
	}
	if err != nil {
		return s.writeError(c, err)
	}

	if sessionID != "" {
		turns := []core.ChatTurn{
			core.NewTurn(core.RoleUser, strings.TrimSpace(instruction)),
			core.NewTurn(core.RoleAssistant, out.Message),
		}
		if err := s.transcripts.Append(ctx, sessionID, turns...); err != nil {
			logger.Warn("append transcript failed", "session_id", sessionID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, textResponse{
		Message:     out.Message,
		MessageHTML: out.MessageHTML,
		UpdatedHTML: out.UpdatedHTML,
		SessionID:   sessionID,
	})
}

// sessionFor validates a caller session id, or mints one when transcripts
// are enabled and none was sent.
func (s *Server) sessionFor(raw string) (string, error) {
	if s.transcripts == nil {
		return "", nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", &core.Error{Kind: core.KindValidation, Message: "sessionId must be a UUID", Err: err}
	}
	return id.String(), nil
}

func (s *Server) handleListTurns(c echo.Context) error {
	if s.transcripts == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "transcripts are disabled"})
	}
	id, err := sessionParam(c)
	if err != nil {
		return s.writeError(c, err)
	}
	turns, err := s.transcripts.List(c.Request().Context(), id, 0)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"turns": turns})
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if s.transcripts == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "transcripts are disabled"})
	}
	id, err := sessionParam(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.transcripts.Delete(id); err != nil {
		return s.writeError(c, err)
	}
	core.ComponentLogger(c.Request().Context(), s.logger, "api").Info("session deleted", "session_id", id)
	return c.NoContent(http.StatusNoContent)
}

func sessionParam(c echo.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", &core.Error{Kind: core.KindValidation, Message: "session id must be a UUID", Err: err}
	}
	return id.String(), nil
}

func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		_ = c.JSON(he.Code, errorResponse{Error: msg})
		return
	}
	_ = s.writeError(c, err)
}
