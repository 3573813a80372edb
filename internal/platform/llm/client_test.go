package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadData(t *testing.T) {
	body := ": keepalive\r\n\nevent: msg\ndata: a\r\n\ndata:b\n\ndata: tail"
	var got []string
	err := readData(strings.NewReader(body), func(data string) error {
		got = append(got, data)
		return nil
	})
	if err != nil {
		t.Fatalf("readData: %v", err)
	}
	want := []string{"a", "b", "tail"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("payloads = %q, want %q", got, want)
	}
}

func TestStreamChatRelaysDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("auth header = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Stream || req.Model != "m" {
			t.Errorf("bad request body: %+v err=%v", req, err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range []string{"Hel", "", "lo"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k", "m", srv.Client())
	var deltas []string
	err := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if strings.Join(deltas, "|") != "Hel|lo" {
		t.Fatalf("deltas = %q", deltas)
	}
}

func TestStreamChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k", "m", nil).StreamChat(context.Background(), nil, func(string) error { return nil })
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want HTTPError 429", err)
	}
}

func TestStreamChatNotConfigured(t *testing.T) {
	err := NewClient("http://unused", "", "m", nil).StreamChat(context.Background(), nil, func(string) error { return nil })
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}
