package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/leetcode"
	"dsa_arena/internal/platform/llm"
	"dsa_arena/internal/platform/logger"
)

type fakeFetcher struct {
	problem *leetcode.Problem
	err     error
	slug    string
}

func (f *fakeFetcher) FetchProblem(ctx context.Context, slug string) (*leetcode.Problem, error) {
	f.slug = slug
	return f.problem, f.err
}

type fakeStreamer struct {
	deltas   []string
	err      error
	messages []llm.Message
	// cancel, when set, is called after the first delta.
	cancel context.CancelFunc
}

func (f *fakeStreamer) StreamChat(ctx context.Context, messages []llm.Message, onDelta func(string) error) error {
	f.messages = messages
	for i, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
		if i == 0 && f.cancel != nil {
			f.cancel()
			return ctx.Err()
		}
	}
	return f.err
}

var twoSum = &leetcode.Problem{
	Title:   "Two Sum",
	Content: "<p>Find two numbers.</p>",
	CodeSnippets: []leetcode.CodeSnippet{
		{Lang: "C++", Code: "class Solution {};"},
		{Lang: "Python3", Code: "class Solution:"},
	},
}

func collect(t *testing.T, svc *ExplainService, ctx context.Context, exp *Explanation) ([]model.StreamEnvelope, error) {
	t.Helper()
	var got []model.StreamEnvelope
	err := svc.Stream(ctx, exp, func(e model.StreamEnvelope) error {
		got = append(got, e)
		return nil
	})
	return got, err
}

func TestExplainStreamsDeltasThenComplete(t *testing.T) {
	fetcher := &fakeFetcher{problem: twoSum}
	streamer := &fakeStreamer{deltas: []string{"Use ", "a hash map."}}
	svc := NewExplainService(fetcher, streamer, logger.Nop())

	exp, err := svc.Prepare(context.Background(), ExplainRequest{Slug: " two-sum ", Lang: ""})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if fetcher.slug != "two-sum" || exp.Language != DefaultExplainLanguage {
		t.Fatalf("slug=%q lang=%q", fetcher.slug, exp.Language)
	}

	got, err := collect(t, svc, context.Background(), exp)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	want := []model.StreamEnvelope{
		{Type: "content", Content: "Use ", Status: "streaming"},
		{Type: "content", Content: "a hash map.", Status: "streaming"},
		{Type: "complete", Content: "", Status: "completed"},
	}
	if len(got) != len(want) {
		t.Fatalf("envelopes = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("envelope %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	prompt := streamer.messages[len(streamer.messages)-1].Content
	for _, part := range []string{"Two Sum", "Find two numbers.", "class Solution {};", "C++"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q:\n%s", part, prompt)
		}
	}
	if strings.Contains(prompt, "<p>") {
		t.Errorf("prompt still contains HTML")
	}
}

func TestExplainUsesRequestedLanguage(t *testing.T) {
	streamer := &fakeStreamer{}
	svc := NewExplainService(&fakeFetcher{problem: twoSum}, streamer, logger.Nop())
	exp, err := svc.Prepare(context.Background(), ExplainRequest{Slug: "two-sum", Lang: "Python3"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := collect(t, svc, context.Background(), exp); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if prompt := streamer.messages[1].Content; !strings.Contains(prompt, "class Solution:") {
		t.Fatalf("prompt lacks python starter:\n%s", prompt)
	}

	exp, _ = svc.Prepare(context.Background(), ExplainRequest{Slug: "two-sum", Lang: "Rust"})
	collect(t, svc, context.Background(), exp)
	if prompt := streamer.messages[1].Content; !strings.Contains(prompt, "Starter code:\n(none)") {
		t.Fatalf("missing-language starter not empty:\n%s", prompt)
	}
}

func TestExplainProblemNotFound(t *testing.T) {
	svc := NewExplainService(&fakeFetcher{err: leetcode.ErrProblemNotFound}, &fakeStreamer{}, logger.Nop())
	if _, err := svc.Prepare(context.Background(), ExplainRequest{Slug: "nope"}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Prepare(context.Background(), ExplainRequest{Slug: " "}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("blank slug err = %v", err)
	}
}

func TestExplainUpstreamFailureEmitsErrorEnvelope(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"partial"}, err: errors.New("upstream reset")}
	svc := NewExplainService(&fakeFetcher{problem: twoSum}, streamer, logger.Nop())
	exp, _ := svc.Prepare(context.Background(), ExplainRequest{Slug: "two-sum"})

	got, err := collect(t, svc, context.Background(), exp)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(got) != 2 || got[1].Type != "error" || got[1].Status != "error" || !strings.Contains(got[1].Content, "upstream reset") {
		t.Fatalf("envelopes = %+v", got)
	}
}

func TestExplainClientCancelStopsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	streamer := &fakeStreamer{deltas: []string{"one", "two"}, cancel: cancel}
	svc := NewExplainService(&fakeFetcher{problem: twoSum}, streamer, logger.Nop())
	exp, _ := svc.Prepare(context.Background(), ExplainRequest{Slug: "two-sum"})

	got, err := collect(t, svc, ctx, exp)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(got) != 1 || got[0].Content != "one" {
		t.Fatalf("envelopes after cancel = %+v", got)
	}
}
