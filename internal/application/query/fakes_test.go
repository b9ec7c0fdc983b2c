package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/progress"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// In-memory fakes shared by the query handler tests in this package.

// ─────────────────────────────────────────────────────────────────────────────
// Actors
// ─────────────────────────────────────────────────────────────────────────────

func actorFor(studentID string) shared.Actor {
	return shared.Actor{StudentID: studentID, Role: shared.RoleStudent}
}

func adminActor() shared.Actor {
	return shared.Actor{StudentID: "admin-1", Role: shared.RoleAdmin}
}

func instructorActor() shared.Actor {
	return shared.Actor{StudentID: "inst-1", Role: shared.RoleInstructor}
}

// ─────────────────────────────────────────────────────────────────────────────
// Student repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[string]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*student.Student)}
}

// seed registers a student with the given points and registration time.
func (r *fakeStudentRepo) seed(id string, points int, createdAt time.Time) *student.Student {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:           id,
		Name:         "Student " + id,
		Email:        shared.Email(id + "@example.com"),
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	})
	if err != nil {
		panic(err)
	}
	s.TotalPoints = points
	s.CreatedAt = createdAt
	r.students[id] = s
	return s
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s, nil
}

func (r *fakeStudentRepo) GetByEmail(_ context.Context, email shared.Email) (*student.Student, error) {
	for _, s := range r.students {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id string) error {
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) GetAll(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStudentRepo) GetByIDs(_ context.Context, ids []string) ([]*student.Student, error) {
	var out []*student.Student
	for _, id := range ids {
		if s, ok := r.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(r.students), nil
}

func (r *fakeStudentRepo) GetTopByPoints(_ context.Context, limit int) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeStudentRepo) AddPoints(_ context.Context, studentID string, delta int) (int, error) {
	s, ok := r.students[studentID]
	if !ok {
		return 0, shared.ErrStudentNotFound
	}
	return s.AddPoints(delta), nil
}

func (r *fakeStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

func (r *fakeStudentRepo) ExistsByEmail(_ context.Context, email shared.Email) (bool, error) {
	for _, s := range r.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Leaderboard cache
// ─────────────────────────────────────────────────────────────────────────────

type fakeLeaderboardCache struct {
	entries []student.LeaderboardEntry
	getErr  error

	gets, sets, invalidations int
}

func (c *fakeLeaderboardCache) GetTop(_ context.Context, limit int) ([]student.LeaderboardEntry, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.entries == nil || len(c.entries) < limit {
		return nil, shared.ErrNotFound
	}
	return c.entries[:limit], nil
}

func (c *fakeLeaderboardCache) SetTop(_ context.Context, entries []student.LeaderboardEntry) error {
	c.sets++
	c.entries = entries
	return nil
}

func (c *fakeLeaderboardCache) Invalidate(_ context.Context) error {
	c.invalidations++
	c.entries = nil
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Course repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeCourseRepo struct {
	courses   map[string]*course.Course
	units     map[string]*course.Unit
	topics    map[string]*course.Topic
	subtopics map[string]*course.Subtopic
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:   make(map[string]*course.Course),
		units:     make(map[string]*course.Unit),
		topics:    make(map[string]*course.Topic),
		subtopics: make(map[string]*course.Subtopic),
	}
}

func (r *fakeCourseRepo) addCourse(c *course.Course) *course.Course {
	r.courses[c.ID] = c
	return c
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, c *course.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) GetCourse(_ context.Context, id string) (*course.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) UpdateCourse(_ context.Context, c *course.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) DeleteCourse(_ context.Context, id string) error {
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) ListCourses(_ context.Context, filter course.ListFilter) ([]*course.Course, error) {
	excluded := make(map[string]bool, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}
	var out []*course.Course
	for _, c := range r.courses {
		if excluded[c.ID] {
			continue
		}
		if filter.PublishedOnly && !c.IsPublished {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && c.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeCourseRepo) ListPopular(_ context.Context, limit int) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range r.courses {
		if c.IsPublished {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnrolledCount != out[j].EnrolledCount {
			return out[i].EnrolledCount > out[j].EnrolledCount
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCourseRepo) AdjustEnrolledCount(_ context.Context, courseID string, delta int) error {
	c, ok := r.courses[courseID]
	if !ok {
		return shared.ErrCourseNotFound
	}
	c.EnrolledCount += delta
	return nil
}

func (r *fakeCourseRepo) SetEnrolledCount(_ context.Context, courseID string, count int) error {
	c, ok := r.courses[courseID]
	if !ok {
		return shared.ErrCourseNotFound
	}
	c.EnrolledCount = count
	return nil
}

func (r *fakeCourseRepo) CreateUnit(_ context.Context, u *course.Unit) error {
	r.units[u.ID] = u
	return nil
}

func (r *fakeCourseRepo) GetUnit(_ context.Context, id string) (*course.Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, shared.ErrUnitNotFound
	}
	return u, nil
}

func (r *fakeCourseRepo) ListUnits(_ context.Context, courseID string) ([]*course.Unit, error) {
	var out []*course.Unit
	for _, u := range r.units {
		if u.CourseID == courseID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) CreateTopic(_ context.Context, t *course.Topic) error {
	r.topics[t.ID] = t
	return nil
}

func (r *fakeCourseRepo) GetTopic(_ context.Context, id string) (*course.Topic, error) {
	t, ok := r.topics[id]
	if !ok {
		return nil, shared.ErrTopicNotFound
	}
	return t, nil
}

func (r *fakeCourseRepo) ListTopicsByCourse(_ context.Context, courseID string) ([]*course.Topic, error) {
	var out []*course.Topic
	for _, t := range r.topics {
		if u, ok := r.units[t.UnitID]; ok && u.CourseID == courseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) CreateSubtopic(_ context.Context, st *course.Subtopic) error {
	r.subtopics[st.ID] = st
	return nil
}

func (r *fakeCourseRepo) GetSubtopic(_ context.Context, id string) (*course.Subtopic, error) {
	st, ok := r.subtopics[id]
	if !ok {
		return nil, shared.ErrSubtopicNotFound
	}
	return st, nil
}

func (r *fakeCourseRepo) ListSubtopicsByCourse(ctx context.Context, courseID string) ([]*course.Subtopic, error) {
	var out []*course.Subtopic
	for _, st := range r.subtopics {
		if t, ok := r.topics[st.TopicID]; ok {
			if u, ok := r.units[t.UnitID]; ok && u.CourseID == courseID {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) CountSubtopicsByCourse(ctx context.Context, courseID string) (int, error) {
	list, _ := r.ListSubtopicsByCourse(ctx, courseID)
	return len(list), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Enrollment repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeEnrollmentRepo struct {
	enrollments map[string]*enrollment.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: make(map[string]*enrollment.Enrollment)}
}

// seed enrolls a student with the given course percent.
func (r *fakeEnrollmentRepo) seed(studentID, courseID string, percent int) *enrollment.Enrollment {
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        studentID + "/" + courseID,
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		panic(err)
	}
	if err := e.SetProgress(percent); err != nil {
		panic(err)
	}
	r.enrollments[e.ID] = e
	return e
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.enrollments[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	e, ok := r.enrollments[id]
	if !ok {
		return nil, shared.ErrEnrollmentNotFound
	}
	return e, nil
}

func (r *fakeEnrollmentRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*enrollment.Enrollment, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *enrollment.Enrollment) error {
	r.enrollments[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	delete(r.enrollments, id)
	return nil
}

func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Exists(_ context.Context, studentID, courseID string) (bool, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int, error) {
	count := 0
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEnrollmentRepo) CountsByCourse(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range r.enrollments {
		counts[e.CourseID]++
	}
	return counts, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	records map[string]*progress.Record
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*progress.Record)}
}

// seed stores a course-level record directly.
func (r *fakeProgressRepo) seed(studentID, courseID string, completed bool, points int) *progress.Record {
	key := progress.Key{StudentID: studentID, CourseID: courseID, Level: progress.LevelCourse}
	rec := &progress.Record{
		ID:        fmt.Sprintf("rec-%d", len(r.records)+1),
		Key:       key,
		Completed: completed,
		Points:    points,
	}
	r.records[rec.ID] = rec
	return rec
}

func (r *fakeProgressRepo) Apply(_ context.Context, params progress.ApplyParams) (progress.ApplyResult, error) {
	rec, err := progress.NewRecord(progress.NewRecordParams{ID: params.NewID, Key: params.Key})
	if err != nil {
		return progress.ApplyResult{}, err
	}
	first := false
	if params.Completed {
		first = rec.MarkCompleted(params.Points, params.At)
	}
	r.records[rec.ID] = rec
	return progress.ApplyResult{Record: rec, FirstCompletion: first}, nil
}

func (r *fakeProgressRepo) GetByKey(_ context.Context, key progress.Key) (*progress.Record, error) {
	for _, rec := range r.records {
		if rec.Key == key {
			return rec, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (r *fakeProgressRepo) ListByStudent(_ context.Context, studentID string) ([]*progress.Record, error) {
	var out []*progress.Record
	for _, rec := range r.records {
		if rec.Key.StudentID == studentID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProgressRepo) ListByStudentAndCourse(_ context.Context, studentID, courseID string) ([]*progress.Record, error) {
	var out []*progress.Record
	for _, rec := range r.records {
		if rec.Key.StudentID == studentID && rec.Key.CourseID == courseID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProgressRepo) CountCompletedByCourse(_ context.Context, studentID, courseID string) (int, error) {
	count := 0
	for _, rec := range r.records {
		if rec.Key.StudentID == studentID && rec.Key.CourseID == courseID && rec.Completed {
			count++
		}
	}
	return count, nil
}

func (r *fakeProgressRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for id, rec := range r.records {
		if rec.Key.StudentID == studentID {
			delete(r.records, id)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Notification repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeNotificationRepo struct {
	notifications []*notification.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) seed(id, studentID string, read bool) *notification.Notification {
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:        id,
		StudentID: studentID,
		Title:     "Notification " + id,
		Type:      notification.TypeSystem,
	})
	if err != nil {
		panic(err)
	}
	n.Read = read
	r.notifications = append(r.notifications, n)
	return n
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) ListByStudent(_ context.Context, studentID string, limit, offset int) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].StudentID == studentID {
			out = append(out, r.notifications[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, studentID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.StudentID == studentID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	for _, n := range r.notifications {
		if n.ID == id {
			n.MarkRead()
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, studentID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.StudentID == studentID && !n.Read {
			n.MarkRead()
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int, error) {
	var kept []*notification.Notification
	deleted := 0
	for _, n := range r.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Explanation generator
// ─────────────────────────────────────────────────────────────────────────────

// stubGenerator returns a fixed explanation or error.
type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) GenerateExplanation(_ context.Context, _, _ string, _ []string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Tutor responder
// ─────────────────────────────────────────────────────────────────────────────

// stubTutor returns a fixed reply or error, recording the prompt.
type stubTutor struct {
	reply string
	err   error

	calls        int
	lastQuestion string
	lastTitle    string
	lastDesc     string
}

func (s *stubTutor) AnswerQuestion(_ context.Context, question, courseTitle, courseDescription string) (string, error) {
	s.calls++
	s.lastQuestion = question
	s.lastTitle = courseTitle
	s.lastDesc = courseDescription
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}
