package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mendhq/mend/internal/types"
)

func testRequest() *types.ApprovalRequest {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &types.ApprovalRequest{
		ID: "apr_cafe0001_1748779200",
		Repair: types.RepairDescriptor{
			Type:     "type_error",
			File:     "billing/invoice.py",
			Line:     42,
			Severity: "high",
			Solution: "int(a) + int(b)",
		},
		Recipients:   []string{"dev@example.com"},
		Channels:     []string{"email", "webhook"},
		Status:       types.StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
		TimeoutHours: 24,
	}
}

func newTestDispatcher(t *testing.T, reg *Registry) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(&DispatcherConfig{
		Registry:          reg,
		PerChannelTimeout: time.Second,
		RateEvery:         time.Millisecond,
		RateBurst:         100,
	})
	if err != nil {
		t.Fatalf("Failed to create dispatcher: %v", err)
	}
	return d
}

func TestDispatchFanOut(t *testing.T) {
	reg := NewRegistry()
	email := NewRecordingSender("email")
	webhook := NewRecordingSender("webhook")
	reg.Register(email)
	reg.Register(webhook)

	d := newTestDispatcher(t, reg)
	sent, failed := d.Dispatch(context.Background(), testRequest())

	if sent != 2 || failed != 0 {
		t.Errorf("Expected 2 sent / 0 failed, got %d / %d", sent, failed)
	}
	if len(email.Sent()) != 1 || len(webhook.Sent()) != 1 {
		t.Error("Expected both channels to receive the request")
	}
}

func TestDispatchChannelFailureIsolated(t *testing.T) {
	reg := NewRegistry()
	email := NewRecordingSender("email")
	email.Fail(errors.New("smtp unreachable"))
	webhook := NewRecordingSender("webhook")
	reg.Register(email)
	reg.Register(webhook)

	d := newTestDispatcher(t, reg)
	sent, failed := d.Dispatch(context.Background(), testRequest())

	if sent != 1 || failed != 1 {
		t.Errorf("Expected 1 sent / 1 failed, got %d / %d", sent, failed)
	}
	if len(webhook.Sent()) != 1 {
		t.Error("Webhook delivery must proceed despite email failure")
	}
}

func TestDispatchUnknownChannelSkipped(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewRecordingSender("email"))

	req := testRequest()
	req.Channels = []string{"email", "carrier-pigeon"}

	d := newTestDispatcher(t, reg)
	sent, failed := d.Dispatch(context.Background(), req)

	if sent != 1 || failed != 1 {
		t.Errorf("Expected 1 sent / 1 failed (skip), got %d / %d", sent, failed)
	}
}

func TestDispatchSlowChannelBounded(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stallSender{name: "email"})

	d, err := NewDispatcher(&DispatcherConfig{
		Registry:          reg,
		PerChannelTimeout: 50 * time.Millisecond,
		RateEvery:         time.Millisecond,
		RateBurst:         10,
	})
	if err != nil {
		t.Fatalf("Failed to create dispatcher: %v", err)
	}

	req := testRequest()
	req.Channels = []string{"email"}

	start := time.Now()
	sent, failed := d.Dispatch(context.Background(), req)
	if sent != 0 || failed != 1 {
		t.Errorf("Expected 0 sent / 1 failed, got %d / %d", sent, failed)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Dispatch not bounded by per-channel timeout, took %v", elapsed)
	}
}

// stallSender blocks until its context is cancelled
type stallSender struct{ name string }

func (s *stallSender) Name() string { return s.name }
func (s *stallSender) Send(ctx context.Context, _ *types.ApprovalRequest) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWebhookSender(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewWebhookSender(&WebhookConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("Failed to create webhook sender: %v", err)
	}
	if err := s.Send(context.Background(), testRequest()); err != nil {
		t.Fatalf("Expected send to succeed, got %v", err)
	}
	if received == nil {
		t.Fatal("Server received no payload")
	}
	if _, ok := received["blocks"]; !ok {
		t.Error("Expected blocks in webhook payload")
	}
}

func TestWebhookSenderNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, _ := NewWebhookSender(&WebhookConfig{URL: srv.URL})
	if err := s.Send(context.Background(), testRequest()); err == nil {
		t.Error("Expected error for non-2xx response")
	}
}

func TestRenderEmailBody(t *testing.T) {
	req := testRequest()
	body, err := renderEmailBody(req, "https://mend.example.com")
	if err != nil {
		t.Fatalf("Failed to render email body: %v", err)
	}
	for _, want := range []string{
		req.ID,
		"billing/invoice.py",
		"https://mend.example.com/approve/" + req.ID + "?decision=approve",
		"https://mend.example.com/approve/" + req.ID + "?decision=reject",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestSubject(t *testing.T) {
	req := testRequest()
	if got := Subject(req); !strings.Contains(got, req.ID) {
		t.Errorf("Expected subject to contain request id, got %q", got)
	}
}

func TestRegistryReplaceAndList(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewRecordingSender("email"))
	replacement := NewRecordingSender("email")
	reg.Register(replacement)

	s, ok := reg.Lookup("email")
	if !ok || s != Sender(replacement) {
		t.Error("Expected later registration to replace earlier one")
	}
	if got := reg.Channels(); len(got) != 1 {
		t.Errorf("Expected 1 channel, got %v", got)
	}
}
