// Package handlers wires outbox deliveries to their side effects.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sgc-hq/sgc/modules/competency/domain/events"
	"github.com/sgc-hq/sgc/modules/competency/domain/notification"
	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/pkg/outbox"
)

type AlertSink interface {
	CreateAlert(ctx context.Context, a *notification.Alert) error
}

type EmailSink interface {
	QueueEmail(ctx context.Context, e *notification.Email) error
}

type HierarchyProvider interface {
	Hierarchy(ctx context.Context) (*org.Hierarchy, error)
}

// NotificationHandler consumes transition events from the outbox relay and
// fans them out as in-app alerts and queued emails. One recipient failing
// does not block the others; the delivery only retries when nothing at all
// could be written.
type NotificationHandler struct {
	alerts AlertSink
	emails EmailSink
	units  HierarchyProvider
	log    *logrus.Logger
}

func NewNotificationHandler(alerts AlertSink, emails EmailSink, units HierarchyProvider, log *logrus.Logger) *NotificationHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NotificationHandler{alerts: alerts, emails: emails, units: units, log: log}
}

func (h *NotificationHandler) Dispatch(ctx context.Context, msg outbox.DispatchedMessage) error {
	if msg.Meta.Topic != events.TopicTransitionV1 {
		return nil
	}

	var evt events.TransitionEventV1
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("transition payload: %w", err)
	}

	kind := transition.Kind(evt.Kind)
	if _, ok := transition.Get(kind); !ok {
		h.log.WithField("kind", evt.Kind).Warn("transition kind unknown, skipping")
		return nil
	}
	if !transition.GeneratesAlert(kind) && !transition.SendsEmail(kind) {
		return nil
	}

	hier, err := h.units.Hierarchy(ctx)
	if err != nil {
		return err
	}
	acronym := hier.Acronym(evt.ActingUnitID)

	recipients := []int64{evt.ActingUnitID}
	if transition.NotifiesAncestors(kind) {
		for _, u := range hier.Ancestors(evt.ActingUnitID) {
			recipients = append(recipients, u.ID)
		}
	}

	delivered := 0
	for _, unitID := range recipients {
		if h.deliver(ctx, unitID, kind, acronym, evt) {
			delivered++
		}
	}
	if delivered == 0 && len(recipients) > 0 {
		return fmt.Errorf("no notification delivered for event %s", evt.EventID)
	}
	return nil
}

func (h *NotificationHandler) deliver(ctx context.Context, unitID int64, kind transition.Kind, acronym string, evt events.TransitionEventV1) bool {
	ok := true
	if transition.GeneratesAlert(kind) {
		err := h.alerts.CreateAlert(ctx, &notification.Alert{
			UnitID:       unitID,
			SubprocessID: evt.SubprocessID,
			Message:      transition.FormatAlert(kind, acronym),
		})
		if err != nil {
			ok = false
			h.log.WithError(err).WithFields(logrus.Fields{
				"unit": unitID, "kind": kind,
			}).Warn("alert delivery failed")
		}
	}
	if transition.SendsEmail(kind) {
		d, _ := transition.Get(kind)
		err := h.emails.QueueEmail(ctx, &notification.Email{
			UnitID:       unitID,
			SubprocessID: evt.SubprocessID,
			Subject:      "SGC: " + d.Description,
			Template:     d.EmailTemplate,
		})
		if err != nil {
			ok = false
			h.log.WithError(err).WithFields(logrus.Fields{
				"unit": unitID, "kind": kind,
			}).Warn("email enqueue failed")
		}
	}
	return ok
}
