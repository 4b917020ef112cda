package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/jbapex/planeje/internal/checklist"
	"github.com/jbapex/planeje/internal/eventbus"
	"github.com/jbapex/planeje/pkg/cerr"
)

type Server struct {
	repo     Repository
	gate     *checklist.Service
	eventBus *eventbus.Bus
}

func NewServer(repo Repository, gate *checklist.Service, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:     repo,
		gate:     gate,
		eventBus: eventBus,
	}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.create)
		r.Get("/", s.list)
		r.Get("/{taskID}", s.get)
		r.Patch("/{taskID}", s.update)
		r.Delete("/{taskID}", s.delete)
		r.Post("/{taskID}/status", s.changeStatus)
	})
}

type createTaskRequest struct {
	BoardID     string   `json:"board_id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	AssigneeIDs []string `json:"assignee_ids"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title is required", nil)
		return
	}
	status := req.Status
	if status == "" {
		status = "todo"
	}

	now := time.Now()
	assignees := NormalizeAssignees(req.AssigneeIDs)
	t := &Task{
		ID:          ulid.Make().String(),
		BoardID:     req.BoardID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssigneeIDs: assignees,
		StatusHistory: []HistoryEntry{{
			Status:      status,
			AssigneeIDs: assignees,
			ChangedAt:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.eventBus.PublishNew(eventbus.TypeTaskCreated, t.ID, map[string]string{
		"board_id":   t.BoardID,
		"task_type":  t.Type,
		"new_status": t.Status,
	})
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, t)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

type listTasksResponse struct {
	Tasks []*Task `json:"tasks"`
	Total int     `json:"total"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	tasks, total, err := s.repo.List(ctx, q.Get("board_id"), q.Get("type"), q.Get("status"), limit, offset)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, listTasksResponse{Tasks: tasks, Total: total})
}

type updateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AssigneeIDs *[]string `json:"assignee_ids"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	upd := Update{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.AssigneeIDs != nil {
		normalized := NormalizeAssignees(*req.AssigneeIDs)
		upd.AssigneeIDs = &normalized
	}
	t, err := s.repo.Apply(ctx, chi.URLParam(r, "taskID"), upd)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.eventBus.PublishNew(eventbus.TypeTaskUpdated, t.ID, map[string]string{
		"board_id": t.BoardID,
	})
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "taskID")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

type changeStatusResponse struct {
	Task *Task                `json:"task"`
	Gate checklist.GateResult `json:"gate"`
}

// changeStatus is the user-facing transition: the destination status's
// checklist is provisioned and evaluated first, and the transition only
// proceeds when the gate allows it. Automations run afterwards, triggered
// by the published event, and never block the transition itself.
func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Status == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "status is required", nil)
		return
	}

	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	gate, err := s.gate.ProvisionAndGate(ctx, t.ID, t.Type, req.Status)
	if err != nil {
		// Gate failures deny the transition, never allow it silently.
		cerr.SetJSONError(ctx, err)
		return
	}
	if !gate.Allowed {
		gateErr := cerr.NewError(cerr.FailedPrecondition, "required subtasks are not complete", nil)
		for _, title := range gate.Missing {
			gateErr.AddDetail(title)
		}
		cerr.SetJSONError(ctx, gateErr)
		return
	}

	oldStatus := t.Status
	updated, err := s.repo.Apply(ctx, t.ID, Update{
		Status: &req.Status,
		History: &HistoryEntry{
			Status:      req.Status,
			AssigneeIDs: t.AssigneeIDs,
			ChangedAt:   time.Now(),
		},
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.eventBus.PublishNew(eventbus.TypeTaskStatusChanged, updated.ID, map[string]string{
		"board_id":   updated.BoardID,
		"task_type":  updated.Type,
		"old_status": oldStatus,
		"new_status": updated.Status,
	})
	cerr.SetJSONResponse(ctx, changeStatusResponse{Task: updated, Gate: gate})
}
