package http_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	httpctrl "github.com/modsec-lab/aegis/pkg/controller/http"
)

// computeSlackSignature computes the Slack signature for testing
func computeSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := []byte(`{"type":"url_verification","challenge":"test"}`)

	t.Run("valid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature(signingSecret, timestamp, string(body))

		if err := httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		if err := httpctrl.VerifySlackSignature(signingSecret, timestamp, "v0=invalid_signature", body); err == nil {
			t.Error("expected error for invalid signature, got nil")
		}
	})

	t.Run("missing timestamp", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "123456", string(body))

		if err := httpctrl.VerifySlackSignature(signingSecret, "", signature, body); err == nil {
			t.Error("expected error for missing timestamp, got nil")
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		if err := httpctrl.VerifySlackSignature(signingSecret, timestamp, "", body); err == nil {
			t.Error("expected error for missing signature, got nil")
		}
	})

	t.Run("timestamp too old", func(t *testing.T) {
		oldTimestamp := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, oldTimestamp, string(body))

		if err := httpctrl.VerifySlackSignature(signingSecret, oldTimestamp, signature, body); err == nil {
			t.Error("expected error for old timestamp, got nil")
		}
	})

	t.Run("invalid timestamp format", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "not-a-number", string(body))

		if err := httpctrl.VerifySlackSignature(signingSecret, "not-a-number", signature, body); err == nil {
			t.Error("expected error for invalid timestamp format, got nil")
		}
	})
}

func TestSlackWebhookEndpoint(t *testing.T) {
	signingSecret := "test-signing-secret"
	handler := httpctrl.NewSlackEventHandler(nil, "UBOT0000001")
	server := httpctrl.New(handler, signingSecret)

	t.Run("url verification challenge", func(t *testing.T) {
		body := `{"type":"url_verification","challenge":"challenge-token"}`
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewBufferString(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", computeSlackSignature(signingSecret, timestamp, body))

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		respBody, _ := io.ReadAll(rec.Body)
		if string(respBody) != "challenge-token" {
			t.Errorf("expected challenge echo, got %q", respBody)
		}
	})

	t.Run("rejects bad signature", func(t *testing.T) {
		body := `{"type":"url_verification","challenge":"challenge-token"}`
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewBufferString(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", "v0=forged")

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := httpctrl.New(httpctrl.NewSlackEventHandler(nil, ""), "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
