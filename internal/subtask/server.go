package subtask

import (
	"encoding/json"
	"net/http"
	"strings"
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
	r.Route("/tasks/{taskID}/subtasks", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Patch("/{subtaskID}", s.update)
		r.Delete("/{subtaskID}", s.delete)
	})
}

type listSubtasksResponse struct {
	Subtasks []*Subtask `json:"subtasks"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := s.repo.ListByTask(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if subs == nil {
		subs = []*Subtask{}
	}
	cerr.SetJSONResponse(ctx, listSubtasksResponse{Subtasks: subs})
}

type createSubtaskRequest struct {
	Title   string `json:"title"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

// create adds an ad-hoc checklist item. Required items only come from
// workflow rules via provisioning.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createSubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title is required", nil)
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = KindCheckbox
	}
	if kind != KindCheckbox && kind != KindText {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "kind must be checkbox or text", nil)
		return
	}

	now := time.Now()
	sub := &Subtask{
		ID:        ulid.Make().String(),
		TaskID:    chi.URLParam(r, "taskID"),
		Title:     req.Title,
		Kind:      kind,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.InsertMany(ctx, []*Subtask{sub}); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, sub)
}

type updateSubtaskRequest struct {
	Title   *string `json:"title"`
	Done    *bool   `json:"done"`
	Content *string `json:"content"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateSubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	sub, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"), chi.URLParam(r, "subtaskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.Title != nil {
		if sub.Required {
			// Titles key required items to their workflow rule.
			cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "required subtasks cannot be renamed", nil)
			return
		}
		sub.Title = *req.Title
	}
	if req.Done != nil {
		sub.Done = *req.Done
	}
	if req.Content != nil {
		sub.Content = *req.Content
	}
	if err := s.repo.Update(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, sub)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskID")
	id := chi.URLParam(r, "subtaskID")

	sub, err := s.repo.Get(ctx, taskID, id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if sub.Required {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "required subtasks cannot be deleted", nil)
		return
	}
	if err := s.repo.Delete(ctx, taskID, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}
