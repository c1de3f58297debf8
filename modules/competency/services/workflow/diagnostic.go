package workflow

import (
	"context"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
)

// CompleteSelfAssessment closes a diagnostic subprocess. Diagnostics have a
// single stage, so the stage-one end date is stamped on completion.
func (s *Service) CompleteSelfAssessment(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	return s.transition(ctx, subject, subprocessID, step{
		action:        access.ActionPerformSelfAssessment,
		kind:          transition.SelfAssessmentConcluded,
		from:          []subprocess.Situation{subprocess.SituationSelfAssessmentInProgress},
		to:            subprocess.SituationSelfAssessmentConcluded,
		route:         routeInPlace,
		stampStageOne: true,
	})
}
