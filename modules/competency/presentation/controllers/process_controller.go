package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/services/workflow"
	"github.com/sgc-hq/sgc/pkg/composables"
	"github.com/sgc-hq/sgc/pkg/middleware"
)

type ProcessController struct {
	svc *workflow.Service
}

func NewProcessController(svc *workflow.Service) *ProcessController {
	return &ProcessController{svc: svc}
}

func (c *ProcessController) Register(r *mux.Router) {
	r.HandleFunc("/processes", c.Create).Methods(http.MethodPost)
	r.HandleFunc("/processes/{id:[0-9]+}/finalize", c.Finalize).Methods(http.MethodPost)
}

type createProcessRequest struct {
	Type        subprocess.ProcessType `json:"type"`
	Description string                 `json:"description"`
	UnitIDs     []int64                `json:"unitIds"`
	Deadline    *time.Time             `json:"deadline,omitempty"`
}

type processView struct {
	ID          int64                    `json:"id"`
	Description string                   `json:"description"`
	Type        subprocess.ProcessType   `json:"type"`
	Status      subprocess.ProcessStatus `json:"status"`
	Deadline    *time.Time               `json:"deadline,omitempty"`
}

func (c *ProcessController) Create(w http.ResponseWriter, r *http.Request) {
	subject, ok := composables.UseSubject(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := workflow.CreateProcessInput{
		Description: req.Description,
		UnitIDs:     req.UnitIDs,
		Deadline:    req.Deadline,
	}

	var (
		proc *subprocess.Process
		err  error
	)
	actor := middleware.AccessSubject(subject)
	switch req.Type {
	case subprocess.ProcessMapping:
		proc, err = c.svc.CreateForMapping(r.Context(), actor, in)
	case subprocess.ProcessRevision:
		proc, err = c.svc.CreateForRevision(r.Context(), actor, in)
	case subprocess.ProcessDiagnostic:
		proc, err = c.svc.CreateForDiagnostic(r.Context(), actor, in)
	default:
		writeError(w, r, workflow.ErrValidation.WithDetails("tipo de processo desconhecido: %s", req.Type))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, processView{
		ID:          proc.ID,
		Description: proc.Description,
		Type:        proc.Type,
		Status:      proc.Status,
		Deadline:    proc.Deadline,
	})
}

func (c *ProcessController) Finalize(w http.ResponseWriter, r *http.Request) {
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
	proc, err := c.svc.FinalizeProcess(r.Context(), middleware.AccessSubject(subject), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, processView{
		ID:          proc.ID,
		Description: proc.Description,
		Type:        proc.Type,
		Status:      proc.Status,
		Deadline:    proc.Deadline,
	})
}
