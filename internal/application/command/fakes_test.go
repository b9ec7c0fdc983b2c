package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/course"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/enrollment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/notification"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/payment"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/progress"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/quiz"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/internal/domain/student"
)

// In-memory fakes shared by the handler tests in this package.

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
// Event publisher
// ─────────────────────────────────────────────────────────────────────────────

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
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

func (r *fakeStudentRepo) add(s *student.Student) *student.Student {
	r.students[s.ID] = s
	return s
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	for _, existing := range r.students {
		if existing.Email == s.Email {
			return shared.ErrEmailTaken
		}
	}
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
	if _, ok := r.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return shared.ErrStudentNotFound
	}
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

// seedStudent registers a student with a plain role and zero points.
func seedStudent(repo *fakeStudentRepo, id string) *student.Student {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:           id,
		Name:         "Student " + id,
		Email:        shared.Email(id + "@example.com"),
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	})
	if err != nil {
		panic(err)
	}
	return repo.add(s)
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

func (r *fakeCourseRepo) addCourse(id string, published bool) *course.Course {
	c := &course.Course{ID: id, Title: "Course " + id, IsPublished: published}
	r.courses[id] = c
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
	if _, ok := r.courses[c.ID]; !ok {
		return shared.ErrCourseNotFound
	}
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
	if _, ok := r.courses[u.CourseID]; !ok {
		return shared.ErrCourseNotFound
	}
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
	if _, ok := r.units[t.UnitID]; !ok {
		return shared.ErrUnitNotFound
	}
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
	if _, ok := r.topics[st.TopicID]; !ok {
		return shared.ErrTopicNotFound
	}
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
// Enrollment repository + ledger
// ─────────────────────────────────────────────────────────────────────────────

type fakeEnrollmentRepo struct {
	enrollments map[string]*enrollment.Enrollment

	// courses, when set, lets the ledger maintain the denormalized
	// enrolled counter the way the SQL ledger does.
	courses *fakeCourseRepo
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: make(map[string]*enrollment.Enrollment)}
}

func pairKey(studentID, courseID string) string {
	return studentID + "/" + courseID
}

func (r *fakeEnrollmentRepo) byPair(studentID, courseID string) *enrollment.Enrollment {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	if r.byPair(e.StudentID, e.CourseID) != nil {
		return shared.ErrDuplicateEnrollment
	}
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
	if e := r.byPair(studentID, courseID); e != nil {
		return e, nil
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *enrollment.Enrollment) error {
	if _, ok := r.enrollments[e.ID]; !ok {
		return shared.ErrEnrollmentNotFound
	}
	r.enrollments[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.enrollments[id]; !ok {
		return shared.ErrEnrollmentNotFound
	}
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
	return r.byPair(studentID, courseID) != nil, nil
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

func (r *fakeEnrollmentRepo) Enroll(ctx context.Context, e *enrollment.Enrollment) error {
	if err := r.Create(ctx, e); err != nil {
		return err
	}
	if r.courses != nil {
		if crs, ok := r.courses.courses[e.CourseID]; ok {
			crs.EnrolledCount++
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) Unenroll(_ context.Context, studentID, courseID string) error {
	e := r.byPair(studentID, courseID)
	if e == nil {
		return shared.ErrEnrollmentNotFound
	}
	delete(r.enrollments, e.ID)
	if r.courses != nil {
		if crs, ok := r.courses.courses[courseID]; ok && crs.EnrolledCount > 0 {
			crs.EnrolledCount--
		}
	}
	return nil
}

// seedEnrollment enrolls a student without going through the handler.
func seedEnrollment(repo *fakeEnrollmentRepo, studentID, courseID string) *enrollment.Enrollment {
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        pairKey(studentID, courseID),
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		panic(err)
	}
	repo.enrollments[e.ID] = e
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	records map[string]*progress.Record

	// students, when set, receives the point award inside Apply, the
	// way the SQL repository updates the student's total in the same
	// transaction as the record.
	students *fakeStudentRepo

	// conflicts makes the next N Apply calls fail with
	// shared.ErrConcurrentModification before touching state.
	conflicts int

	// awardErr fails Apply on a first completion with points, leaving
	// both the record and the student total untouched.
	awardErr error

	applyCalls int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*progress.Record)}
}

func progressKeyOf(k progress.Key) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s", k.StudentID, k.CourseID, k.Level, k.UnitID, k.TopicID, k.SubtopicID)
}

func (r *fakeProgressRepo) Apply(_ context.Context, params progress.ApplyParams) (progress.ApplyResult, error) {
	r.applyCalls++
	if r.conflicts > 0 {
		r.conflicts--
		return progress.ApplyResult{}, shared.ErrProgressConflict
	}

	// Work on a copy so a failed award rolls the whole call back, like
	// the SQL transaction does.
	rec, ok := r.records[progressKeyOf(params.Key)]
	if !ok {
		created, err := progress.NewRecord(progress.NewRecordParams{ID: params.NewID, Key: params.Key})
		if err != nil {
			return progress.ApplyResult{}, err
		}
		rec = created
	} else {
		rec = rec.Clone()
	}

	first := false
	if params.Completed {
		first = rec.MarkCompleted(params.Points, params.At)
	} else {
		rec.Touch(params.At)
	}

	result := progress.ApplyResult{Record: rec, FirstCompletion: first}

	if first && params.Points > 0 {
		if r.awardErr != nil {
			return progress.ApplyResult{}, r.awardErr
		}
		if r.students != nil {
			s, ok := r.students.students[params.Key.StudentID]
			if !ok {
				return progress.ApplyResult{}, shared.ErrStudentNotFound
			}
			result.NewTotalPoints = s.AddPoints(params.Points)
		}
	}

	r.records[progressKeyOf(params.Key)] = rec
	return result, nil
}

func (r *fakeProgressRepo) GetByKey(_ context.Context, key progress.Key) (*progress.Record, error) {
	rec, ok := r.records[progressKeyOf(key)]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	return rec, nil
}

func (r *fakeProgressRepo) ListByStudent(_ context.Context, studentID string) ([]*progress.Record, error) {
	var out []*progress.Record
	for _, rec := range r.records {
		if rec.Key.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) ListByStudentAndCourse(_ context.Context, studentID, courseID string) ([]*progress.Record, error) {
	var out []*progress.Record
	for _, rec := range r.records {
		if rec.Key.StudentID == studentID && rec.Key.CourseID == courseID {
			out = append(out, rec)
		}
	}
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
	for key, rec := range r.records {
		if rec.Key.StudentID == studentID {
			delete(r.records, key)
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
	// Newest first: iterate the append order backwards.
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

func (r *fakeNotificationRepo) forStudent(studentID string) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.StudentID == studentID {
			out = append(out, n)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Payment repository
// ─────────────────────────────────────────────────────────────────────────────

type fakePaymentRepo struct {
	payments []*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrPaymentNotFound
}

func (r *fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	for i, existing := range r.payments {
		if existing.ID == p.ID {
			r.payments[i] = p
			return nil
		}
	}
	return shared.ErrPaymentNotFound
}

func (r *fakePaymentRepo) ListByStudent(_ context.Context, studentID string) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].StudentID == studentID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Quiz repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeQuizRepo struct {
	quizzes map[string]*quiz.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[string]*quiz.Quiz)}
}

func (r *fakeQuizRepo) add(q *quiz.Quiz) *quiz.Quiz {
	r.quizzes[q.ID] = q
	return q
}

func (r *fakeQuizRepo) Create(_ context.Context, q *quiz.Quiz) error {
	r.quizzes[q.ID] = q
	return nil
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id string) (*quiz.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return nil, shared.ErrQuizNotFound
	}
	return q, nil
}

func (r *fakeQuizRepo) ListByCourse(_ context.Context, courseID string) ([]*quiz.Quiz, error) {
	var out []*quiz.Quiz
	for _, q := range r.quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) Update(_ context.Context, q *quiz.Quiz) error {
	if _, ok := r.quizzes[q.ID]; !ok {
		return shared.ErrQuizNotFound
	}
	r.quizzes[q.ID] = q
	return nil
}

func (r *fakeQuizRepo) Delete(_ context.Context, id string) error {
	delete(r.quizzes, id)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Answer evaluator
// ─────────────────────────────────────────────────────────────────────────────

// stubEvaluator returns a fixed score or error.
type stubEvaluator struct {
	points   int
	feedback string
	err      error
	calls    int
}

func (e *stubEvaluator) EvaluateAnswer(_ context.Context, _, _ string, _ int) (int, string, error) {
	e.calls++
	if e.err != nil {
		return 0, "", e.err
	}
	return e.points, e.feedback, nil
}
