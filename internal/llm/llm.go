package llm

import "context"

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
}

// CompletionRequest is built per call and not modified afterwards.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	// History holds prior conversation messages, oldest first. They are sent
	// between the system prompt and the user prompt.
	History []Message
	// Image is an optional data URI attached to the user message.
	Image           string
	MaxOutputTokens int
	Temperature     float64
}

type ResultKind string

const (
	ResultCompleted      ResultKind = "completed"
	ResultIncomplete     ResultKind = "incomplete"
	ResultRefused        ResultKind = "refused"
	ResultTransportError ResultKind = "transport_error"
)

// IncompleteLength is the Incomplete reason for output cut off by the token budget.
const IncompleteLength = "length"

// CompletionResult is a tagged variant: Kind selects which of Text, Reason
// or Message is meaningful.
type CompletionResult struct {
	Kind    ResultKind
	Text    string
	Reason  string
	Message string
}

func Completed(text string) CompletionResult {
	return CompletionResult{Kind: ResultCompleted, Text: text}
}

func Incomplete(reason string) CompletionResult {
	return CompletionResult{Kind: ResultIncomplete, Reason: reason}
}

func Refused(reason string) CompletionResult {
	return CompletionResult{Kind: ResultRefused, Reason: reason}
}

func TransportFailure(message string) CompletionResult {
	return CompletionResult{Kind: ResultTransportError, Message: message}
}

// Requester issues exactly one completion call. Expected provider outcomes
// (refusal, truncation) and transport failures are all reported through the
// result; implementations never retry.
type Requester interface {
	Request(ctx context.Context, request CompletionRequest) CompletionResult
}
