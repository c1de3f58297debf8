package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sgc-hq/sgc/modules/competency/domain/notification"
	"github.com/sgc-hq/sgc/pkg/composables"
)

type AlertStore interface {
	UnreadAlerts(ctx context.Context, unitID int64) ([]notification.Alert, error)
	MarkAlertRead(ctx context.Context, id int64) error
}

// AlertController serves the in-app alert tray: unread alerts for the
// subject's active unit, and the read acknowledgement.
type AlertController struct {
	alerts AlertStore
}

func NewAlertController(alerts AlertStore) *AlertController {
	return &AlertController{alerts: alerts}
}

func (c *AlertController) Register(r *mux.Router) {
	r.HandleFunc("/alerts", c.Unread).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id:[0-9]+}/read", c.MarkRead).Methods(http.MethodPost)
}

type alertView struct {
	ID           int64      `json:"id"`
	UnitID       int64      `json:"unitId"`
	SubprocessID int64      `json:"subprocessId"`
	Message      string     `json:"message"`
	CreatedAt    time.Time  `json:"createdAt"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
}

func (c *AlertController) Unread(w http.ResponseWriter, r *http.Request) {
	subject, ok := composables.UseSubject(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	alerts, err := c.alerts.UnreadAlerts(r.Context(), subject.ActiveUnitID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView{
			ID:           a.ID,
			UnitID:       a.UnitID,
			SubprocessID: a.SubprocessID,
			Message:      a.Message,
			CreatedAt:    a.CreatedAt,
			ReadAt:       a.ReadAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (c *AlertController) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := composables.UseSubject(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := c.alerts.MarkAlertRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
