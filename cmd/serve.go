package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the campaign and email HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{env: env}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown: stop accepting, then drain in-flight campaign
		// jobs via env.Close.
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

type apiServer struct {
	env *pipelineEnv
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/users", s.createUser)
	r.Post("/campaigns", s.createCampaign)
	r.Post("/campaigns/{id}/process", s.processCampaign)
	r.Get("/campaigns/{id}", s.campaignStatus)
	r.Get("/campaigns/{id}/emails", s.campaignEmails)
	r.Patch("/emails/{id}", s.editEmail)
	r.Post("/emails/{id}/approve", s.approveEmail)
	r.Post("/emails/{id}/regenerate", s.regenerateEmail)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *apiServer) createUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	if user.Email == "" {
		writeError(w, http.StatusBadRequest, eris.New("email is required"))
		return
	}
	if err := s.env.Store.CreateUser(r.Context(), &user); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *apiServer) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string            `json:"user_id"`
		Name   string            `json:"name"`
		Leads  []model.LeadInput `json:"leads"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, eris.New("user_id is required"))
		return
	}

	campaign, err := s.env.Dispatcher.CreateAndEnqueue(r.Context(), req.UserID, req.Name, req.Leads)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusAccepted, campaign)
}

func (s *apiServer) processCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	campaign, err := s.env.Store.GetCampaign(r.Context(), campaignID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.env.Dispatcher.Enqueue(campaign.ID, campaign.UserID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "campaign_id": campaign.ID})
}

func (s *apiServer) campaignStatus(w http.ResponseWriter, r *http.Request) {
	progress, err := s.env.Dispatcher.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *apiServer) campaignEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := s.env.Store.ListEmails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if emails == nil {
		emails = []model.Email{}
	}
	writeJSON(w, http.StatusOK, emails)
}

// editEmail updates subject/body and marks the email edited. Rescoring uses
// the edited body so the user sees how their changes move the score.
func (s *apiServer) editEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject *string `json:"subject"`
		Body    *string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	email, err := s.env.Store.GetEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if req.Subject != nil {
		email.Subject = *req.Subject
	}
	if req.Body != nil {
		email.Body = *req.Body
		lead, leadErr := s.env.Store.GetLead(r.Context(), email.LeadID)
		if leadErr == nil {
			email.ConfidenceScore = pipeline.Score(email.Body, lead.Research.Present())
		}
	}
	email.Status = model.EmailStatusEdited

	if err := s.env.Store.UpdateEmail(r.Context(), email); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}

func (s *apiServer) approveEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.env.Store.GetEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	email.Status = model.EmailStatusApproved
	if err := s.env.Store.UpdateEmail(r.Context(), email); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}

func (s *apiServer) regenerateEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.env.Pipeline.RegenerateEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}
