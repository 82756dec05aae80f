package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/usecase"
	"github.com/modsec-lab/aegis/pkg/utils/async"
	"github.com/modsec-lab/aegis/pkg/utils/errutil"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

// verifySlackSignature verifies the Slack request signature.
// Kept as a pure function so it can be tested without an HTTP stack.
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}
	if signature == "" {
		return goerr.New("missing signature")
	}

	// Reject stale timestamps to prevent replay
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}
	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware verifies Slack request signatures on all wrapped routes
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

// SlackEventHandler receives Slack Events API callbacks and routes message
// events to the session coordinator.
type SlackEventHandler struct {
	coordinator *usecase.Coordinator
	botUserID   string
}

func NewSlackEventHandler(coordinator *usecase.Coordinator, botUserID string) *SlackEventHandler {
	return &SlackEventHandler{
		coordinator: coordinator,
		botUserID:   botUserID,
	}
}

func (h *SlackEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}

	case slackevents.CallbackEvent:
		// Ack within Slack's 3-second window, process in the background
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.handleCallback(ctx, &event)
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", event.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackEventHandler) handleCallback(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		logging.From(ctx).Info("ignoring non-message event", "type", event.InnerEvent.Type)
		return nil
	}

	// Skip bot echoes and message edits/deletes
	if ev.BotID != "" || ev.User == h.botUserID || ev.SubType != "" {
		return nil
	}

	if ev.ChannelType == "im" {
		return h.coordinator.HandleDirectMessage(ctx,
			types.UserID(ev.User),
			fmt.Sprintf("<@%s>", ev.User),
			types.ChannelID(ev.Channel),
			ev.Text,
		)
	}

	return h.coordinator.HandleChannelMessage(ctx, &model.SourceMessage{
		TeamID:     types.TeamID(event.TeamID),
		ChannelID:  types.ChannelID(ev.Channel),
		Timestamp:  types.MessageTS(ev.TimeStamp),
		AuthorID:   types.UserID(ev.User),
		AuthorName: fmt.Sprintf("<@%s>", ev.User),
		Text:       ev.Text,
	})
}
