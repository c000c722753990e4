package mock

import (
	"context"
	"sync"

	"github.com/Jrygg01/FrameForge/internal/llm"
)

// Client replays Results in order; the last result repeats once the queue
// is down to one entry. Every request is recorded in Calls.
type Client struct {
	mu      sync.Mutex
	Results []llm.CompletionResult
	Calls   []llm.CompletionRequest
}

func (c *Client) Request(_ context.Context, request llm.CompletionRequest) llm.CompletionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, request)
	if len(c.Results) == 0 {
		return llm.Completed("")
	}
	result := c.Results[0]
	if len(c.Results) > 1 {
		c.Results = c.Results[1:]
	}
	return result
}

func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}
