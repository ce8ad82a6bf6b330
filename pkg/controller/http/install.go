package http

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
	"github.com/secmon-lab/welcomebot/pkg/utils/errutil"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
	"github.com/secmon-lab/welcomebot/pkg/utils/safe"
)

const stateCookieName = "welcomebot_oauth_state"

const addToSlackButton = `<a href="%s"><img alt="Add to Slack" height="40" width="139" src="https://platform.slack-edge.com/img/add_to_slack.png" srcset="https://platform.slack-edge.com/img/add_to_slack.png 1x, https://platform.slack-edge.com/img/add_to_slack@2x.png 2x"/></a>`

type workspaceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type workspacesResponse struct {
	Workspaces []workspaceResponse `json:"workspaces"`
}

func writeHTML(ctx context.Context, w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, []byte(body))
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, raw)
}

// installButton renders the Add to Slack button bound to a fresh state
// nonce, which is also stored in a cookie for finishAuthHandler
func installButton(w http.ResponseWriter, r *http.Request, installUC *usecase.InstallUseCase) (string, error) {
	state := uuid.NewString()
	authURL, err := installUC.AuthorizeURL(state)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	return fmt.Sprintf(addToSlackButton, html.EscapeString(authURL)), nil
}

// beginAuthHandler serves the install page
func beginAuthHandler(installUC *usecase.InstallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		button, err := installButton(w, r, installUC)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeHTML(r.Context(), w, http.StatusOK, button)
	}
}

// finishAuthHandler completes the install started by beginAuthHandler
func finishAuthHandler(installUC *usecase.InstallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		fail := func(reason string) {
			logging.From(ctx).Warn("slack install failed", "reason", reason)
			body := "Auth failed! Reason: " + html.EscapeString(reason)
			if button, err := installButton(w, r, installUC); err == nil {
				body += "<br/>" + button
			}
			writeHTML(ctx, w, http.StatusForbidden, body)
		}

		stateCookie, err := r.Cookie(stateCookieName)
		state := r.URL.Query().Get("state")
		if err != nil || state == "" || state != stateCookie.Value {
			fail("invalid state parameter")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})

		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			fail(errMsg)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			fail("missing authorization code")
			return
		}

		ws, err := installUC.Complete(ctx, code)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to install slack app")
			fail(err.Error())
			return
		}

		writeHTML(ctx, w, http.StatusOK, "OAuth succeeded! Welcomebot is installed to "+html.EscapeString(ws.Name)+".")
	}
}

// workspacesHandler returns a handler that serves the workspace list as JSON
func workspacesHandler(installUC *usecase.InstallUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaces, err := installUC.Workspaces(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := workspacesResponse{
			Workspaces: make([]workspaceResponse, len(workspaces)),
		}
		for i, ws := range workspaces {
			resp.Workspaces[i] = workspaceResponse{
				ID:   ws.ID.String(),
				Name: ws.Name,
			}
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
