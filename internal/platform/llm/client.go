// Package llm streams chat completions from an OpenAI-compatible endpoint.
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
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("generation service not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a client. httpClient may be nil; the default has no overall timeout so long streams are not cut.
func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.StatusCode, e.Body)
}

// StreamChat sends messages and calls onDelta for every non-empty content delta, in order.
// It returns when the upstream closes the stream, sends [DONE], or ctx is cancelled.
func (c *Client) StreamChat(ctx context.Context, messages []Message, onDelta func(delta string) error) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chatRequest{Model: c.model, Messages: messages, Stream: true}); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	errDone := errors.New("done")
	err = readData(resp.Body, func(data string) error {
		data = strings.TrimSpace(data)
		if data == "" {
			return nil
		}
		if data == "[DONE]" {
			return errDone
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if chunk.Error != nil {
			return fmt.Errorf("generation stream error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errDone) {
		return nil
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// readData calls onData with the payload of every "data:" line of an event stream.
// Completion chunks are single-line JSON, so events are not reassembled.
func readData(r io.Reader, onData func(data string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		if err := onData(strings.TrimSpace(payload)); err != nil {
			return err
		}
	}
	return sc.Err()
}
