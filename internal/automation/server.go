package automation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/jbapex/planeje/pkg/cerr"
)

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/automation-rules", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{ruleID}", s.get)
		r.Put("/{ruleID}", s.update)
		r.Delete("/{ruleID}", s.delete)
		r.Post("/{ruleID}/activate", s.activate)
	})
}

type listRulesResponse struct {
	Rules []*Rule `json:"rules"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rules, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if rules == nil {
		rules = []*Rule{}
	}
	cerr.SetJSONResponse(ctx, listRulesResponse{Rules: rules})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var rule Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if err := rule.Validate(); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	now := time.Now()
	rule.ID = ulid.Make().String()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if err := s.repo.Create(ctx, &rule); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, &rule)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rule, err := s.repo.Get(ctx, chi.URLParam(r, "ruleID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, rule)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var rule Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	rule.ID = chi.URLParam(r, "ruleID")
	if err := rule.Validate(); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Update(ctx, &rule); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &rule)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "ruleID")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}

type activateRequest struct {
	Active bool `json:"active"`
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	rule, err := s.repo.Get(ctx, chi.URLParam(r, "ruleID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	rule.Active = req.Active
	if err := s.repo.Update(ctx, rule); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, rule)
}
