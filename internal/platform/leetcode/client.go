// Package leetcode fetches problem statements from the LeetCode GraphQL endpoint.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrProblemNotFound is returned when the slug names no problem.
var ErrProblemNotFound = errors.New("problem not found")

const questionQuery = `query getQuestionDetail($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    title
    content
    codeSnippets {
      lang
      code
    }
  }
}`

type CodeSnippet struct {
	Lang string `json:"lang"`
	Code string `json:"code"`
}

type Problem struct {
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	CodeSnippets []CodeSnippet `json:"codeSnippets"`
}

// Snippet returns the starter code for lang, or "" when the problem has none.
func (p *Problem) Snippet(lang string) string {
	for _, s := range p.CodeSnippets {
		if s.Lang == lang {
			return s.Code
		}
	}
	return ""
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Question *Problem `json:"question"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) FetchProblem(ctx context.Context, slug string) (*Problem, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(graphQLRequest{
		Query:     questionQuery,
		Variables: map[string]any{"titleSlug": slug},
	}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/problems/"+slug+"/")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leetcode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("leetcode returned %d: %s", resp.StatusCode, raw)
	}

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode leetcode response: %w", err)
	}
	if out.Data.Question == nil {
		if len(out.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, out.Errors[0].Message)
		}
		return nil, ErrProblemNotFound
	}
	return out.Data.Question, nil
}
