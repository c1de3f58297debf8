// Package controllers exposes the workflow over HTTP. Controllers stay
// thin: subject resolution, payload decoding and error mapping; every rule
// lives in the services.
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/modules/competency/services/workflow"
	"github.com/sgc-hq/sgc/pkg/composables"
	"github.com/sgc-hq/sgc/pkg/middleware"
)

type SubprocessController struct {
	svc *workflow.Service
}

func NewSubprocessController(svc *workflow.Service) *SubprocessController {
	return &SubprocessController{svc: svc}
}

// Register wires the subprocess routes. viewGuard protects the read
// endpoint; the mutating operations authorize inside the service.
func (c *SubprocessController) Register(r *mux.Router, viewGuard mux.MiddlewareFunc) {
	s := r.PathPrefix("/subprocesses/{id:[0-9]+}").Subrouter()
	s.Handle("", viewGuard(http.HandlerFunc(c.Get))).Methods(http.MethodGet)
	s.HandleFunc("/permissions", c.Permissions).Methods(http.MethodGet)

	s.HandleFunc("/cadastro/submit", c.simple(c.svc.SubmitCadastro)).Methods(http.MethodPost)
	s.HandleFunc("/cadastro/return", c.reasoned(c.svc.ReturnCadastro)).Methods(http.MethodPost)
	s.HandleFunc("/cadastro/accept", c.simple(c.svc.AcceptCadastro)).Methods(http.MethodPost)
	s.HandleFunc("/cadastro/homologate", c.simple(c.svc.HomologateCadastro)).Methods(http.MethodPost)
	s.HandleFunc("/cadastro/reopen", c.reasoned(c.svc.ReopenCadastro)).Methods(http.MethodPost)
	s.HandleFunc("/revision/reopen", c.reasoned(c.svc.ReopenRevision)).Methods(http.MethodPost)

	s.HandleFunc("/map", c.CreateMap).Methods(http.MethodPost)
	s.HandleFunc("/map/adjust", c.simple(c.svc.AdjustMap)).Methods(http.MethodPost)
	s.HandleFunc("/map/submit", c.simple(c.svc.SubmitMap)).Methods(http.MethodPost)
	s.HandleFunc("/map/suggestions", c.reasoned(c.svc.PresentSuggestions)).Methods(http.MethodPost)
	s.HandleFunc("/map/validate", c.simple(c.svc.ValidateMap)).Methods(http.MethodPost)
	s.HandleFunc("/map/return", c.reasoned(c.svc.ReturnMapValidation)).Methods(http.MethodPost)
	s.HandleFunc("/map/accept", c.simple(c.svc.AcceptMapValidation)).Methods(http.MethodPost)
	s.HandleFunc("/map/homologate", c.simple(c.svc.HomologateMap)).Methods(http.MethodPost)

	s.HandleFunc("/self-assessment/complete", c.simple(c.svc.CompleteSelfAssessment)).Methods(http.MethodPost)
	s.HandleFunc("/deadline", c.ChangeDeadline).Methods(http.MethodPatch)
	s.HandleFunc("/reminder", c.simple(c.svc.SendReminder)).Methods(http.MethodPost)
}

type subprocessView struct {
	ID               int64                `json:"id"`
	ProcessID        int64                `json:"processId"`
	UnitID           int64                `json:"unitId"`
	Situation        subprocess.Situation `json:"situation"`
	MapID            *int64               `json:"mapId,omitempty"`
	StageOneDeadline *time.Time           `json:"stageOneDeadline,omitempty"`
	StageTwoDeadline *time.Time           `json:"stageTwoDeadline,omitempty"`
	StageOneDoneAt   *time.Time           `json:"stageOneDoneAt,omitempty"`
	StageTwoDoneAt   *time.Time           `json:"stageTwoDoneAt,omitempty"`
}

func viewOf(sp *subprocess.Subprocess) subprocessView {
	return subprocessView{
		ID:               sp.ID,
		ProcessID:        sp.ProcessID,
		UnitID:           sp.UnitID,
		Situation:        sp.Situation,
		MapID:            sp.MapID,
		StageOneDeadline: sp.StageOneDeadline,
		StageTwoDeadline: sp.StageTwoDeadline,
		StageOneDoneAt:   sp.StageOneDoneAt,
		StageTwoDoneAt:   sp.StageTwoDoneAt,
	}
}

type opFunc func(r *http.Request, subject *access.Subject, id int64) (*subprocess.Subprocess, error)

func (c *SubprocessController) handle(op opFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := composables.UseSubject(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		sp, err := op(r, middleware.AccessSubject(subject), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sp))
	}
}

func (c *SubprocessController) simple(fn func(ctx context.Context, subject *access.Subject, id int64) (*subprocess.Subprocess, error)) http.HandlerFunc {
	return c.handle(func(r *http.Request, subject *access.Subject, id int64) (*subprocess.Subprocess, error) {
		return fn(r.Context(), subject, id)
	})
}

func (c *SubprocessController) reasoned(fn func(ctx context.Context, subject *access.Subject, id int64, reason string) (*subprocess.Subprocess, error)) http.HandlerFunc {
	return c.handle(func(r *http.Request, subject *access.Subject, id int64) (*subprocess.Subprocess, error) {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, workflow.ErrValidation.WithDetails("corpo inválido: %v", err)
		}
		return fn(r.Context(), subject, id, body.Reason)
	})
}

func (c *SubprocessController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sp, err := c.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sp))
}

func (c *SubprocessController) Permissions(w http.ResponseWriter, r *http.Request) {
	subject, ok := composables.UseSubject(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	flags, err := c.svc.Permissions(r.Context(), middleware.AccessSubject(subject), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

func (c *SubprocessController) CreateMap(w http.ResponseWriter, r *http.Request) {
	c.handle(func(r *http.Request, subject *access.Subject, id int64) (*subprocess.Subprocess, error) {
		var body struct {
			MapID int64 `json:"mapId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, workflow.ErrValidation.WithDetails("corpo inválido: %v", err)
		}
		return c.svc.CreateMap(r.Context(), subject, id, body.MapID)
	})(w, r)
}

func (c *SubprocessController) ChangeDeadline(w http.ResponseWriter, r *http.Request) {
	c.handle(func(r *http.Request, subject *access.Subject, id int64) (*subprocess.Subprocess, error) {
		var body struct {
			Deadline time.Time `json:"deadline"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, workflow.ErrValidation.WithDetails("corpo inválido: %v", err)
		}
		return c.svc.ChangeDeadline(r.Context(), subject, id, body.Deadline)
	})(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusUnprocessableEntity
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("workflow operation failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
