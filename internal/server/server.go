package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"studypilot/internal/app"
	"studypilot/internal/ratelimit"
	"studypilot/internal/util"
	"studypilot/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App             *app.App
	ChatLimiter     *ratelimit.FixedWindowLimiter
	CheckoutLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies  *util.TrustedProxies
	MaxUploadBytes  int64
}

// Server exposes the HTTP endpoints of the service.
type Server struct {
	app             *app.App
	chatLimiter     *ratelimit.FixedWindowLimiter
	checkoutLimiter *ratelimit.FixedWindowLimiter
	trustedProxies  *util.TrustedProxies
	maxUploadBytes  int64
	mux             *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	s := &Server{
		app:             cfg.App,
		chatLimiter:     cfg.ChatLimiter,
		checkoutLimiter: cfg.CheckoutLimiter,
		trustedProxies:  cfg.TrustedProxies,
		maxUploadBytes:  maxUpload,
		mux:             http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("studypilot", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/generate-plan-with-sources", s.handleGeneratePlan)
	s.mux.HandleFunc("/upload-file", s.handleUploadFile)
	s.mux.HandleFunc("/scrape-url", s.handleScrapeURL)
	s.mux.HandleFunc("/messages", s.handleMessages)
	s.mux.HandleFunc("/generated-content", s.handleGeneratedContent)
	s.mux.HandleFunc("/study-plan", s.handleStudyPlan)
	s.mux.HandleFunc("/create-checkout-session", s.handleCreateCheckoutSession)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allow(s.chatLimiter, r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	result, err := s.app.Chat(req.UserID, req.StudyPlanID, req.Type, req.Message)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Reply:       result.Reply,
		UserID:      result.UserID,
		StudyPlanID: result.StudyPlanID,
	})
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generatePlanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	result, err := s.app.GeneratePlanWithSources(req.UserID, req.StudyPlanID, req.Title, req.Description, req.Goals, req.Sources)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generatePlanResponse{
		Success: true,
		Plan:    result.Plan,
		Sources: result.Sources,
	})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	saved, err := s.app.SaveUploadedFile(r.FormValue("userId"), header.Filename, header.Size, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{Success: true, File: saved})
}

func (s *Server) handleScrapeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req scrapeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	file, err := s.app.ScrapeURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{Success: true, File: file})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	planID := strings.TrimSpace(r.URL.Query().Get("studyPlanId"))
	if userID == "" || planID == "" {
		writeError(w, http.StatusBadRequest, "userId and studyPlanId are required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("action") == "count" {
			count, total := s.app.MessageCounts(userID, planID)
			writeJSON(w, http.StatusOK, countResponse{Count: count, TotalMessages: total})
			return
		}
		messages := s.app.Messages(userID, planID)
		if messages == nil {
			messages = []domain.Message{}
		}
		writeJSON(w, http.StatusOK, messagesResponse{Messages: messages})
	case http.MethodDelete:
		s.app.DeleteMessages(userID, planID)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGeneratedContent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		planID := strings.TrimSpace(r.URL.Query().Get("studyPlanId"))
		if userID == "" || planID == "" {
			writeError(w, http.StatusBadRequest, "userId and studyPlanId are required")
			return
		}
		content := s.app.ListGeneratedContent(userID, planID)
		if content == nil {
			content = []domain.GeneratedContent{}
		}
		writeJSON(w, http.StatusOK, contentListResponse{Content: content})
	case http.MethodPost:
		var item domain.GeneratedContent
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&item); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		saved, err := s.app.SaveGeneratedContent(item)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, contentSaveResponse{Success: true, Content: saved})
	case http.MethodDelete:
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		planID := strings.TrimSpace(r.URL.Query().Get("studyPlanId"))
		if userID == "" || planID == "" {
			writeError(w, http.StatusBadRequest, "userId and studyPlanId are required")
			return
		}
		s.app.DeleteGeneratedContent(userID, planID)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req studyPlanRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		plan, err := s.app.CreateStudyPlan(req.UserID, req.Title, req.Description)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, planResponse{Success: true, Plan: plan})
	case http.MethodGet:
		planID := strings.TrimSpace(r.URL.Query().Get("planId"))
		if planID != "" {
			plan, err := s.app.GetStudyPlan(planID)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, plan)
			return
		}
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if userID == "" {
			writeError(w, http.StatusBadRequest, "planId or userId is required")
			return
		}
		plans := s.app.ListStudyPlans(userID)
		if plans == nil {
			plans = []domain.StudyPlan{}
		}
		writeJSON(w, http.StatusOK, plansResponse{Plans: plans})
	case http.MethodDelete:
		planID := strings.TrimSpace(r.URL.Query().Get("planId"))
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if planID == "" || userID == "" {
			writeError(w, http.StatusBadRequest, "planId and userId are required")
			return
		}
		deleted := s.app.DeleteStudyPlan(planID, userID)
		writeJSON(w, http.StatusOK, deleteResponse{Success: true, Deleted: deleted})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allow(s.checkoutLimiter, r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.PriceID) == "" {
		writeError(w, http.StatusBadRequest, "priceId is required")
		return
	}
	sessionID, err := s.app.CreateCheckoutSession(req.PriceID, req.CustomerEmail)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{SessionID: sessionID})
}

// allow checks the limiter keyed by path and client IP. A nil limiter means
// the endpoint is unlimited.
func (s *Server) allow(limiter *ratelimit.FixedWindowLimiter, r *http.Request) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(r.URL.Path + ":" + util.ClientIP(r, s.trustedProxies))
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrModelUnavailable), errors.Is(err, app.ErrPaymentsUnavailable):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type chatRequest struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	UserID      string `json:"userId"`
	StudyPlanID string `json:"studyPlanId"`
}

type chatResponse struct {
	Reply       string `json:"reply"`
	UserID      string `json:"userId"`
	StudyPlanID string `json:"studyPlanId"`
}

type generatePlanRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Goals       string            `json:"goals"`
	Sources     []app.SourceInput `json:"sources"`
	UserID      string            `json:"userId"`
	StudyPlanID string            `json:"studyPlanId"`
}

type generatePlanResponse struct {
	Success bool             `json:"success"`
	Plan    domain.StudyPlan `json:"plan"`
	Sources []string         `json:"sources"`
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type fileResponse struct {
	Success bool              `json:"success"`
	File    domain.SourceFile `json:"file"`
}

type messagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type countResponse struct {
	Count         int `json:"count"`
	TotalMessages int `json:"totalMessages"`
}

type contentListResponse struct {
	Content []domain.GeneratedContent `json:"content"`
}

type contentSaveResponse struct {
	Success bool                    `json:"success"`
	Content domain.GeneratedContent `json:"content"`
}

type studyPlanRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type planResponse struct {
	Success bool             `json:"success"`
	Plan    domain.StudyPlan `json:"plan"`
}

type plansResponse struct {
	Plans []domain.StudyPlan `json:"plans"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

type checkoutRequest struct {
	PriceID       string `json:"priceId"`
	CustomerEmail string `json:"customerEmail"`
}

type checkoutResponse struct {
	SessionID string `json:"sessionId"`
}

type successResponse struct {
	Success bool `json:"success"`
}
