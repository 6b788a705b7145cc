// Package llm implements the gateway to the upstream completion service.
//
// The gateway never surfaces transport, timeout or parse failures to its
// callers. Any failure is absorbed into a single human-readable apology
// fragment, so that persona code stays free of error plumbing and the
// chat surface always has something to say.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/internal/config"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// Fixed apology fragments yielded instead of errors.
const (
	ApologyUnavailable = "抱歉，AI服务暂时不可用，请稍后再试。"
	ApologyTimeout     = "抱歉，请求超时，请稍后再试。"
	ApologyGeneric     = "抱歉，服务出现异常，请稍后再试。"
)

// IsApology reports whether text is one of the gateway's absorbed
// failure fragments. Callers that need a real result (the summary
// phase) use this to detect a degraded reply.
func IsApology(text string) bool {
	switch text {
	case ApologyUnavailable, ApologyTimeout, ApologyGeneric:
		return true
	}
	return false
}

// Request describes one completion call.
type Request struct {
	Messages    []models.ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completer is the capability consumed by persona agents and the
// orchestrator. Neither method returns an error: a failed call yields
// exactly one apology fragment.
type Completer interface {
	// Complete performs a buffered completion and returns the full text.
	Complete(ctx context.Context, req Request) string

	// Stream performs a streaming completion. The returned channel is
	// closed after the final fragment. Cancelling ctx stops production
	// at the next fragment boundary.
	Stream(ctx context.Context, req Request) <-chan string
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient creates a gateway client from LLM configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// DefaultModel returns the configured model identifier, used when a
// request leaves Model empty.
func (c *Client) DefaultModel() string { return c.model }

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Stream      bool                 `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete implements Completer.
func (c *Client) Complete(ctx context.Context, req Request) string {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return apologyFor(err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Error().Err(err).Msg("gateway: decode completion response")
		return ApologyGeneric
	}
	if len(parsed.Choices) == 0 {
		log.Error().Msg("gateway: completion response carried no choices")
		return ApologyGeneric
	}
	return parsed.Choices[0].Message.Content
}

// Stream implements Completer. Fragments are sent unbuffered so that a
// gone consumer stops production at the next suspension point.
func (c *Client) Stream(ctx context.Context, req Request) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		resp, err := c.post(ctx, req, true)
		if err != nil {
			emit(ctx, out, apologyFor(err))
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}
			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue // partial or keep-alive frame
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				if !emit(ctx, out, content) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("gateway: stream read failed")
			emit(ctx, out, ApologyGeneric)
		}
	}()
	return out
}

func (c *Client) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	body, _ := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("gateway: request failed")
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("gateway: non-200 response")
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp, nil
}

// emit sends one fragment unless the consumer is gone.
func emit(ctx context.Context, out chan<- string, s string) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

func apologyFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ApologyTimeout
	case isTimeout(err):
		return ApologyTimeout
	case strings.HasPrefix(err.Error(), "status "):
		return ApologyUnavailable
	default:
		return ApologyGeneric
	}
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
