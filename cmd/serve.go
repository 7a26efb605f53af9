package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/coldcall-cli/internal/pipeline"
	"github.com/sells-group/coldcall-cli/pkg/notion"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with SSE progress streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"breakers": env.breakers.States(),
		})
	})

	// Generation lifecycle.
	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Segment      string `json:"segment"`
			Campaign     string `json:"campaign"`
			CallingDate  string `json:"calling_date"`
			SkipExisting bool   `json:"skip_existing"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Segment == "" || req.Campaign == "" {
			writeError(w, http.StatusBadRequest, "segment and campaign are required")
			return
		}
		if err := env.checkCalling(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.Generate(ctx, pipeline.GenerateRequest{
				Segment:      req.Segment,
				Campaign:     req.Campaign,
				CallingDate:  req.CallingDate,
				SkipExisting: req.SkipExisting,
			}, emit)
		})
	})

	r.Post("/approve/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkCRM(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.Commit(ctx, sessionID, emit)
		})
	})

	r.Post("/discard/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.pipeline.Discard(chi.URLParam(r, "sessionID"), nil); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
	})

	r.Post("/cleanup/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkCRM(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.ScanCleanup(ctx, sessionID, emit)
		})
	})

	r.Post("/execute-cleanup/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkCRM(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_ = env.pipeline.ExecuteCleanup(ctx, sessionID, emit)
		})
	})

	// Dropdown data and session recovery.
	r.Get("/api/lists", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkCRM(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		lists, err := env.hubspot.ListLists(r.Context(), env.cfg.HubSpot.CreatorID)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		sort.Slice(lists, func(i, j int) bool { return lists[i].Name < lists[j].Name })
		writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
	})

	r.Get("/api/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkCRM(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		options, err := env.hubspot.CampaignOptions(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"campaigns": options})
	})

	r.Get("/api/session/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		sess, err := env.store.LoadPrep(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess)
	})

	r.Get("/api/recoverable-sessions", func(w http.ResponseWriter, _ *http.Request) {
		summaries, err := env.store.ListPrep()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(summaries) > 20 {
			summaries = summaries[:20]
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
	})

	// Prospecting pipeline.
	r.Get("/api/forge/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkNotion(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		campaigns, err := notion.ListCampaigns(r.Context(), env.notion, env.cfg.Notion.CampaignsDB)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
	})

	r.Get("/api/forge/campaign-brief/{pageID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkNotion(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		brief, err := notion.GetCampaignBrief(r.Context(), env.notion, chi.URLParam(r, "pageID"))
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, brief)
	})

	r.Post("/api/forge/start", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CampaignID   string   `json:"campaign_id"`
			CampaignName string   `json:"campaign_name"`
			PlaybookID   string   `json:"playbook_id"`
			BriefSummary string   `json:"brief_summary"`
			Domains      []string `json:"domains"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		sess, err := env.pipeline.ForgeStart(pipeline.ForgeStartRequest{
			CampaignID:   req.CampaignID,
			CampaignName: req.CampaignName,
			PlaybookID:   req.PlaybookID,
			BriefSummary: req.BriefSummary,
			Domains:      req.Domains,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess)
	})

	r.Post("/forge/prospect/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkOctave(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.Prospect(ctx, sessionID, emit)
		})
	})

	r.Post("/forge/enrich-companies/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkOctave(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.EnrichCompanies(ctx, sessionID, emit)
		})
	})

	r.Post("/forge/discover-enrich-people/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		if err := env.checkOctave(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessionID := chi.URLParam(r, "sessionID")
		streamSSE(w, r, func(ctx context.Context, emit pipeline.Emitter) {
			_, _ = env.pipeline.DiscoverEnrichPeople(ctx, sessionID, emit)
		})
	})

	r.Post("/api/forge/approve-stage", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string   `json:"session_id"`
			Stage     int      `json:"stage"`
			Approved  []string `json:"approved"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		sess, err := env.pipeline.ApproveStage(req.SessionID, req.Stage, req.Approved)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess)
	})

	r.Get("/api/forge/sessions", func(w http.ResponseWriter, _ *http.Request) {
		summaries, err := env.store.ListForge()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
	})

	r.Get("/api/forge/session/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		sess, err := env.store.LoadForge(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess)
	})

	registerSignalRoutes(r, env)

	return r
}

// streamSSE runs a pipeline flow while forwarding its events to the
// client as server-sent events.
func streamSSE(w http.ResponseWriter, r *http.Request, run func(context.Context, pipeline.Emitter)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Forge stages emit from worker goroutines.
	var mu sync.Mutex
	emit := func(e pipeline.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		mu.Lock()
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		mu.Unlock()
	}

	run(r.Context(), emit)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
