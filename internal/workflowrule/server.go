package workflowrule

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jbapex/planeje/internal/subtask"
	"github.com/jbapex/planeje/pkg/cerr"
)

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/workflow-rules", func(r chi.Router) {
		r.Get("/", s.list)
		r.Get("/lookup", s.lookup)
		r.Put("/", s.upsert)
		r.Delete("/", s.delete)
	})
}

type listRulesResponse struct {
	Rules []*WorkflowRule `json:"rules"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rules, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if rules == nil {
		rules = []*WorkflowRule{}
	}
	cerr.SetJSONResponse(ctx, listRulesResponse{Rules: rules})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	rule, err := s.repo.Get(ctx, q.Get("task_type"), q.Get("status"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if rule == nil {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "workflow rule not found", nil)
		return
	}
	cerr.SetJSONResponse(ctx, rule)
}

func (s *Server) upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var rule WorkflowRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if rule.TaskType == "" || rule.Status == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "task_type and status are required", nil)
		return
	}
	for _, item := range rule.Items {
		if strings.TrimSpace(item.Title) == "" {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "every item requires a title", nil)
			return
		}
		if item.Kind != subtask.KindCheckbox && item.Kind != subtask.KindText {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "item kind must be checkbox or text", nil)
			return
		}
	}
	if err := s.repo.Upsert(ctx, &rule); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &rule)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	if err := s.repo.Delete(ctx, q.Get("task_type"), q.Get("status")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}
