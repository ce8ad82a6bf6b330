package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	slackmodel "github.com/secmon-lab/welcomebot/pkg/domain/model/slack"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
	"github.com/secmon-lab/welcomebot/pkg/utils/errutil"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
	"github.com/secmon-lab/welcomebot/pkg/utils/safe"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const slackBodyKey contextKey = "slack_body"

// maxEventBodySize bounds webhook bodies; Slack payloads are far smaller
const maxEventBodySize = 1 << 20

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	// Reject replays older than 5 minutes
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
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodySize))
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer safe.Close(ctx, "slack request body", r.Body)

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, slackBodyKey, body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SlackEventHandler handles Slack Events API webhook requests. Events are
// applied before the response is written so that one user's events are
// processed in delivery order.
type SlackEventHandler struct {
	eventUC *usecase.EventUseCase
}

// NewSlackEventHandler creates a new Slack event handler
func NewSlackEventHandler(eventUC *usecase.EventUseCase) *SlackEventHandler {
	return &SlackEventHandler{
		eventUC: eventUC,
	}
}

// Handle processes one webhook body and returns the status and body of the
// response
func (h *SlackEventHandler) Handle(ctx context.Context, body []byte) (int, string) {
	logger := logging.From(ctx)

	env, err := slackmodel.ParseEnvelope(body)
	if err != nil {
		logger.Warn("malformed slack payload", "error", err.Error())
		return http.StatusBadRequest, "Malformed Slack event payload"
	}

	// The challenge is echoed before the token is checked
	if env.IsURLVerification() {
		logger.Info("slack url verification")
		return http.StatusOK, env.Challenge
	}

	err = h.eventUC.Dispatch(ctx, env)
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, usecase.ErrInvalidVerificationToken):
		logger.Warn("invalid slack verification token", "team_id", env.TeamID)
		return http.StatusForbidden, "Invalid Slack verification token received"

	case errors.Is(err, slackmodel.ErrMalformedPayload):
		logger.Warn("malformed slack event", "error", err.Error())
		return http.StatusBadRequest, "Malformed Slack event payload"

	default:
		// Acknowledged regardless; Slack redelivers on any non-2xx
		_ = errutil.Handle(ctx, err, "failed to process slack event")
		return http.StatusOK, ""
	}
}

// ServeHTTP handles Slack webhook requests
func (h *SlackEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := ctx.Value(slackBodyKey).([]byte)
	if !ok {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxEventBodySize))
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
			return
		}
	}

	status, resp := h.Handle(ctx, body)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if resp == "" {
		return
	}
	safe.Write(ctx, w, []byte(resp))
}
