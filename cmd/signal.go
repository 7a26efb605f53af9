package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/coldcall-cli/internal/signal"
	"github.com/sells-group/coldcall-cli/pkg/followup"
)

// registerSignalRoutes mounts the buying-signal webhook, the call
// disposition webhook, and their supporting lookups.
func registerSignalRoutes(r chi.Router, env *appEnv) {
	r.Post("/webhook/signal", func(w http.ResponseWriter, req *http.Request) {
		if key := env.cfg.Signal.WebhookAPIKey; key != "" && req.Header.Get("X-API-Key") != key {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		var body struct {
			SignalType string `json:"signal_type"`
			ContactID  string `json:"contact_id"`
			Email      string `json:"email"`
			Company    string `json:"company"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.SignalType == "" {
			writeError(w, http.StatusBadRequest, "signal_type is required")
			return
		}

		contact := body.ContactID
		if contact == "" {
			contact = body.Email
		}
		if contact == "" {
			writeError(w, http.StatusBadRequest, "contact_id or email is required")
			return
		}

		tier, info, ok := signal.Classify(body.SignalType)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown signal type: "+body.SignalType)
			return
		}

		// Dedup before acting: the same signal for the same contact inside
		// the cooldown window is acknowledged but not re-routed.
		fresh, err := env.dedup.CheckAndMark(req.Context(), body.SignalType+":"+contact)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !fresh {
			writeJSON(w, http.StatusOK, map[string]any{
				"status": "duplicate",
				"reason": "signal within cooldown window",
			})
			return
		}

		zap.L().Info("signal accepted",
			zap.String("signal_type", body.SignalType),
			zap.String("contact", contact),
			zap.Int("tier", int(tier)),
		)
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "accepted",
			"tier":   int(tier),
			"label":  info.Label,
			"action": info.Action,
		})
	})

	r.Post("/webhook/disposition", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Disposition string `json:"disposition"`
			ContactID   string `json:"contact_id"`
			SequenceID  string `json:"sequence_id"`
			StepNumber  int    `json:"step_number"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		route, ok := env.router.Route(body.Disposition)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown disposition: "+body.Disposition)
			return
		}

		var actionErr error
		switch route.Action {
		case signal.ActionAdvance:
			next := route.NextStep
			if next == 0 {
				next = body.StepNumber + 1
			}
			actionErr = env.supersend.AssignStep(req.Context(), body.ContactID, body.SequenceID, next)
		case signal.ActionTransfer:
			actionErr = env.supersend.TransferContact(req.Context(), body.ContactID, body.SequenceID, route.TransferTo, 0)
		case signal.ActionFinish, signal.ActionRemove:
			actionErr = env.supersend.FinishContact(req.Context(), body.ContactID, body.SequenceID)
		case signal.ActionRetry:
			// No sequence change; the caller re-dials after the delay.
		}
		if actionErr != nil {
			writeError(w, http.StatusBadGateway, actionErr.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "routed",
			"action":      route.Action,
			"delay_hours": route.DelayHours,
			"log_entry":   route.LogEntry,
		})
	})

	r.Get("/api/dispositions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"dispositions": env.router.List()})
	})

	r.Post("/api/followup", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Disposition     string `json:"disposition"`
			FirstName       string `json:"first_name"`
			CompanyName     string `json:"company_name"`
			OriginalSubject string `json:"original_subject"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := firstMissing("anthropic.key", env.cfg.Anthropic.Key); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		email, err := env.followup.Generate(req.Context(), followup.Request{
			Disposition:     followup.Disposition(body.Disposition),
			FirstName:       body.FirstName,
			CompanyName:     body.CompanyName,
			OriginalSubject: body.OriginalSubject,
		})
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"email_body": email})
	})
}
