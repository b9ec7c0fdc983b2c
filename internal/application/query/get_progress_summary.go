package query

import (
	"context"
	"errors"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/progress"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS SUMMARY QUERY
// Returns the student's raw progress records plus an aggregate derived
// from them. The aggregate's point total is recomputed from the records,
// not read from the student's cumulative counter.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressSummaryQuery contains the summary request parameters.
type GetProgressSummaryQuery struct {
	// Actor is the authenticated caller.
	Actor shared.Actor

	// StudentID whose progress is summarized. Must equal the actor
	// unless the actor is an admin.
	StudentID string

	// CourseID restricts the records to one course when set.
	CourseID string
}

// Validate validates the query.
func (q GetProgressSummaryQuery) Validate() error {
	if !q.Actor.IsValid() {
		return errors.New("get_progress_summary: actor is required")
	}
	if q.StudentID == "" {
		return errors.New("get_progress_summary: student_id is required")
	}
	return nil
}

// ProgressRecordDTO is a progress record with its course title resolved.
type ProgressRecordDTO struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title,omitempty"`
	Level       string `json:"level"`
	UnitID      string `json:"unit_id,omitempty"`
	TopicID     string `json:"topic_id,omitempty"`
	SubtopicID  string `json:"subtopic_id,omitempty"`
	Completed   bool   `json:"completed"`
	Points      int    `json:"points"`
}

// GetProgressSummaryResult contains the records and the derived aggregate.
type GetProgressSummaryResult struct {
	// Records are the student's raw progress records.
	Records []ProgressRecordDTO `json:"records"`

	// Summary is derived entirely from Records.
	Summary progress.Summary `json:"summary"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressSummaryHandler handles the GetProgressSummaryQuery.
type GetProgressSummaryHandler struct {
	progressRepo progress.Repository
	courseRepo   course.Repository
}

// NewGetProgressSummaryHandler creates a new GetProgressSummaryHandler.
func NewGetProgressSummaryHandler(
	progressRepo progress.Repository,
	courseRepo course.Repository,
) *GetProgressSummaryHandler {
	return &GetProgressSummaryHandler{
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
	}
}

// Handle executes the progress summary query.
func (h *GetProgressSummaryHandler) Handle(ctx context.Context, q GetProgressSummaryQuery) (*GetProgressSummaryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !q.Actor.CanActFor(q.StudentID) {
		return nil, shared.ErrAccessDenied
	}

	var (
		records []*progress.Record
		err     error
	)
	if q.CourseID != "" {
		records, err = h.progressRepo.ListByStudentAndCourse(ctx, q.StudentID, q.CourseID)
	} else {
		records, err = h.progressRepo.ListByStudent(ctx, q.StudentID)
	}
	if err != nil {
		return nil, err
	}

	// Resolve each course title once; a missing course leaves the title
	// empty rather than failing the whole summary.
	titles := make(map[string]string)
	dtos := make([]ProgressRecordDTO, len(records))
	for i, r := range records {
		title, seen := titles[r.Key.CourseID]
		if !seen {
			if crs, cerr := h.courseRepo.GetCourse(ctx, r.Key.CourseID); cerr == nil {
				title = crs.Title
			}
			titles[r.Key.CourseID] = title
		}

		dtos[i] = ProgressRecordDTO{
			ID:          r.ID,
			CourseID:    r.Key.CourseID,
			CourseTitle: title,
			Level:       r.Key.Level.String(),
			UnitID:      r.Key.UnitID,
			TopicID:     r.Key.TopicID,
			SubtopicID:  r.Key.SubtopicID,
			Completed:   r.Completed,
			Points:      r.Points,
		}
	}

	return &GetProgressSummaryResult{
		Records: dtos,
		Summary: progress.Summarize(records),
	}, nil
}
