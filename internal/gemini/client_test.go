package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/plainbot/internal/config"
	"github.com/edgard/plainbot/internal/database"
	"github.com/edgard/plainbot/internal/resilience"
)

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(s, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

type fakeGenerator struct {
	errs  []error
	resp  *genai.GenerateContentResponse
	calls int

	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (f *fakeGenerator) generate(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.gotContents = contents
	f.gotConfig = cfg
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.resp, nil
}

func testClient(f *fakeGenerator, maxRetries int) *sdkClient {
	cfg := config.GeminiConfig{
		ModelName:         "test-model",
		SystemInstruction: "Be brief.",
		MaxRetries:        maxRetries,
	}
	return newClient(f.generate, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func history() []*database.Message {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []*database.Message{
		{UserID: 10, Content: "hello @plainbot", Timestamp: ts},
		{UserID: 99, Content: "hi", Timestamp: ts.Add(time.Second)},
	}
}

func TestGenerateReply(t *testing.T) {
	t.Parallel()

	f := &fakeGenerator{resp: textResponse("[2024-01-02 03:04:05] UID 99: **Sure**")}
	got, err := testClient(f, 0).GenerateReply(context.Background(), history(), 99, "plainbot", "Plain")
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if got != "**Sure**" {
		t.Errorf("GenerateReply() = %q, want %q", got, "**Sure**")
	}

	if len(f.gotContents) != 2 {
		t.Fatalf("sent %d contents, want 2", len(f.gotContents))
	}
	if f.gotContents[0].Role != genai.RoleUser || f.gotContents[1].Role != genai.RoleModel {
		t.Errorf("roles = %q, %q; want user, model", f.gotContents[0].Role, f.gotContents[1].Role)
	}
	if want := "[2024-01-02 03:04:05] UID 10: hello @plainbot"; f.gotContents[0].Parts[0].Text != want {
		t.Errorf("first content = %q, want %q", f.gotContents[0].Parts[0].Text, want)
	}

	instruction := f.gotConfig.SystemInstruction.Parts[0].Text
	if !strings.Contains(instruction, "@plainbot") || !strings.HasSuffix(instruction, "Be brief.") {
		t.Errorf("system instruction missing header or configured text: %q", instruction)
	}
}

func TestGenerateReply_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	f := &fakeGenerator{
		errs: []error{&genai.APIError{Code: 503}, &genai.APIError{Code: 500}},
		resp: textResponse("ok"),
	}
	got, err := testClient(f, 2).GenerateReply(context.Background(), history(), 99, "plainbot", "Plain")
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if got != "ok" || f.calls != 3 {
		t.Errorf("GenerateReply() = %q after %d calls, want ok after 3", got, f.calls)
	}
}

func TestGenerateReply_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	f := &fakeGenerator{errs: []error{&genai.APIError{Code: 503}, &genai.APIError{Code: 503}}}
	if _, err := testClient(f, 1).GenerateReply(context.Background(), history(), 99, "plainbot", "Plain"); err == nil {
		t.Fatal("GenerateReply() error = nil, want failure")
	}
	if f.calls != 2 {
		t.Errorf("made %d calls, want 2", f.calls)
	}
}

func TestGenerateReply_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	for _, err := range []error{&genai.APIError{Code: 400}, boom} {
		f := &fakeGenerator{errs: []error{err}, resp: textResponse("unused")}
		if _, got := testClient(f, 3).GenerateReply(context.Background(), history(), 99, "plainbot", "Plain"); got == nil {
			t.Errorf("GenerateReply() error = nil for %v", err)
		}
		if f.calls != 1 {
			t.Errorf("made %d calls for %v, want 1", f.calls, err)
		}
	}
}

func TestGenerateReply_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	f := &fakeGenerator{errs: []error{errors.New("boom")}, resp: textResponse("unused")}
	cfg := config.GeminiConfig{ModelName: "test-model", BreakerFailures: 1, BreakerCooldownSeconds: 3600}
	c := newClient(f.generate, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := c.GenerateReply(context.Background(), history(), 99, "plainbot", "Plain"); err == nil {
		t.Fatal("first GenerateReply() error = nil, want failure")
	}
	_, err := c.GenerateReply(context.Background(), history(), 99, "plainbot", "Plain")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("second GenerateReply() error = %v, want ErrCircuitOpen", err)
	}
	if f.calls != 1 {
		t.Errorf("made %d calls, want 1", f.calls)
	}
}

func TestGenerateReply_EmptyResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "only prefix", resp: textResponse("[2024-01-02 03:04:05] UID 1: ")},
	}

	for _, tt := range tests {
		f := &fakeGenerator{resp: tt.resp}
		_, err := testClient(f, 0).GenerateReply(context.Background(), history(), 99, "plainbot", "Plain")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("%s: error = %v, want ErrEmptyResponse", tt.name, err)
		}
	}
}

func TestStripHistoryPrefixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"plain answer", "plain answer"},
		{"[2024-01-02 03:04:05] UID 7: answer", "answer"},
		{"[2024-01-02 03:04:05] UID 7: [2024-01-02 03:04:06] UID 8: twice", "twice"},
		{"line one\n[2024-01-02 03:04:05] UID 7: line two", "line one\nline two"},
		{"mid [2024-01-02 03:04:05] UID 7: text", "mid [2024-01-02 03:04:05] UID 7: text"},
	}

	for _, tt := range tests {
		if got := StripHistoryPrefixes(tt.input); got != tt.want {
			t.Errorf("StripHistoryPrefixes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
