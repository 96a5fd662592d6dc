package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type fakeQuizStore struct {
	quizzes map[uuid.UUID]*model.Quiz
}

func newFakeQuizStore(quizzes ...*model.Quiz) *fakeQuizStore {
	s := &fakeQuizStore{quizzes: make(map[uuid.UUID]*model.Quiz)}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *fakeQuizStore) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, ok := s.quizzes[id]
	if !ok || q.IsDeleted {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (s *fakeQuizStore) ListByTeacher(_ context.Context, teacherID int) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.TeacherID == teacherID && !q.IsDeleted {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *fakeQuizStore) ListScheduledForGrade(_ context.Context, grade string) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.IsDeleted || (q.Status != model.QuizStatusScheduled && q.Status != model.QuizStatusActive) {
			continue
		}
		for _, g := range q.GradeLevels {
			if g == grade {
				out = append(out, *q)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeQuizStore) Create(_ context.Context, q *model.Quiz) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	s.quizzes[q.ID] = q
	return nil
}

func (s *fakeQuizStore) Update(_ context.Context, q *model.Quiz) error {
	s.quizzes[q.ID] = q
	return nil
}

func (s *fakeQuizStore) SetSchedule(_ context.Context, id uuid.UUID, d time.Time, start, end string) error {
	q := s.quizzes[id]
	q.IsScheduled = true
	q.ScheduleDate = &d
	q.StartTime = &start
	q.EndTime = &end
	q.Status = model.QuizStatusScheduled
	return nil
}

func (s *fakeQuizStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.QuizStatus) error {
	s.quizzes[id].Status = status
	return nil
}

func (s *fakeQuizStore) SoftDelete(_ context.Context, id uuid.UUID, teacherID int) (int64, error) {
	q, ok := s.quizzes[id]
	if !ok || q.TeacherID != teacherID || q.IsDeleted {
		return 0, nil
	}
	q.IsDeleted = true
	return 1, nil
}

type fakeSubmissionStore struct {
	created []*model.Submission
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *model.Submission) error {
	sub.ID = uuid.New()
	s.created = append(s.created, sub)
	return nil
}

func (s *fakeSubmissionStore) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]model.Submission, error) {
	var out []model.Submission
	for _, sub := range s.created {
		if sub.QuizID == quizID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *fakeSubmissionStore) ListByStudentAndQuiz(_ context.Context, studentID int, quizID uuid.UUID) ([]model.Submission, error) {
	var out []model.Submission
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].StudentID == studentID && s.created[i].QuizID == quizID {
			out = append(out, *s.created[i])
		}
	}
	return out, nil
}

type fakeDirectory struct {
	students []model.Student
}

func (d *fakeDirectory) GetStudentByID(_ context.Context, id int) (*model.Student, error) {
	for i := range d.students {
		if d.students[i].ID == id {
			return &d.students[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (d *fakeDirectory) ListStudentsByGradeLevels(_ context.Context, grades []string) ([]model.Student, error) {
	var out []model.Student
	for _, s := range d.students {
		for _, g := range grades {
			if s.GradeLevel == g {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

type fakeNotifier struct {
	fanOuts int
	graded  []int
}

func (n *fakeNotifier) FanOutAssigned(_ context.Context, _ *model.Quiz, recipients []model.Student) (int, error) {
	n.fanOuts++
	return len(recipients), nil
}

func (n *fakeNotifier) RecordGraded(_ context.Context, _ *model.Student, _ *model.Quiz, score int) (bool, error) {
	n.graded = append(n.graded, score)
	return true, nil
}

func questions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Text:          "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i % 4,
		}
	}
	return qs
}

func newTestQuizService(store *fakeQuizStore, subs *fakeSubmissionStore, dir *fakeDirectory, notifier *fakeNotifier, now time.Time) *QuizService {
	return NewQuizService(store, subs, dir, notifier, nil, 0, schedule.FixedClock{At: now}, zerolog.Nop())
}

func TestAggregateStatsBucketsSumToTotal(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	s09, s11, s14, s16 := "09:00", "11:00", "14:00", "16:00"

	quizzes := []model.Quiz{
		// window open right now
		{Status: model.QuizStatusScheduled, IsScheduled: true, ScheduleDate: &d, StartTime: &s11, EndTime: &s14},
		// pending window later today
		{Status: model.QuizStatusScheduled, IsScheduled: true, ScheduleDate: &d, StartTime: &s14, EndTime: &s16},
		// plain draft
		{Status: model.QuizStatusDraft},
		// window expired this morning
		{Status: model.QuizStatusScheduled, IsScheduled: true, ScheduleDate: &d, StartTime: &s09, EndTime: &s11},
		// expired days ago
		{Status: model.QuizStatusScheduled, IsScheduled: true, ScheduleDate: &past, StartTime: &s09, EndTime: &s11},
		// closed by the teacher
		{Status: model.QuizStatusClosed},
		// inconsistent row: claims a schedule but fields wiped
		{Status: model.QuizStatusScheduled, IsScheduled: true},
		// closed but its window is open now: active wins
		{Status: model.QuizStatusClosed, IsScheduled: true, ScheduleDate: &d, StartTime: &s11, EndTime: &s14},
	}

	stats := aggregateStats(quizzes, now)

	if got := stats.Drafts + stats.Scheduled + stats.Active + stats.Closed; got != stats.Total {
		t.Fatalf("buckets sum to %d, total is %d", got, stats.Total)
	}
	if stats.Total != len(quizzes) {
		t.Fatalf("Total = %d, want %d", stats.Total, len(quizzes))
	}
	if stats.Active != 2 {
		t.Errorf("Active = %d, want 2", stats.Active)
	}
	if stats.Scheduled != 1 {
		t.Errorf("Scheduled = %d, want 1", stats.Scheduled)
	}
	if stats.Drafts != 2 {
		t.Errorf("Drafts = %d, want 2 (one plain, one inconsistent)", stats.Drafts)
	}
	if stats.Closed != 3 {
		t.Errorf("Closed = %d, want 3", stats.Closed)
	}
}

func TestAggregateStatsEmpty(t *testing.T) {
	stats := aggregateStats(nil, time.Now())
	if stats.Total != 0 || stats.Drafts+stats.Scheduled+stats.Active+stats.Closed != 0 {
		t.Fatalf("empty input produced %+v", stats)
	}
}

func TestGradeScoring(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		correct   int
		wantScore int
	}{
		{"all correct", 4, 4, 100},
		{"none correct", 4, 0, 0},
		{"one of three rounds up", 3, 1, 33},
		{"two of three rounds up", 3, 2, 67},
		{"five of six", 6, 5, 83},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qs := questions(tc.total)
			answers := make([]int, tc.total)
			for i := range answers {
				if i < tc.correct {
					answers[i] = qs[i].CorrectOption
				} else {
					answers[i] = (qs[i].CorrectOption + 1) % len(qs[i].Options)
				}
			}

			result := grade(qs, answers)
			if result.Score != tc.wantScore {
				t.Errorf("Score = %d, want %d", result.Score, tc.wantScore)
			}
			if result.CorrectAnswers != tc.correct {
				t.Errorf("CorrectAnswers = %d, want %d", result.CorrectAnswers, tc.correct)
			}
			if len(result.Answers) != tc.total {
				t.Errorf("len(Answers) = %d, want %d", len(result.Answers), tc.total)
			}
		})
	}
}

func TestSubmitRejectsOutsideWindow(t *testing.T) {
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	start, end := "10:00", "12:00"

	quiz := &model.Quiz{
		ID:           uuid.New(),
		TeacherID:    1,
		Title:        "Algebra basics",
		GradeLevels:  []string{"8"},
		Questions:    questions(3),
		IsScheduled:  true,
		ScheduleDate: &d,
		StartTime:    &start,
		EndTime:      &end,
		Status:       model.QuizStatusScheduled,
	}

	cases := []struct {
		name string
		now  time.Time
		want schedule.Status
	}{
		{"before window", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC), schedule.StatusUpcoming},
		{"after window", time.Date(2024, time.March, 10, 13, 0, 0, 0, time.UTC), schedule.StatusExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs := &fakeSubmissionStore{}
			svc := newTestQuizService(newFakeQuizStore(quiz), subs, &fakeDirectory{}, &fakeNotifier{}, tc.now)

			_, err := svc.Submit(context.Background(), quiz.ID, 7, &model.SubmitQuizRequest{Answers: []int{0, 0, 0}})

			var winErr *WindowError
			if !errors.As(err, &winErr) {
				t.Fatalf("Submit() error = %v, want WindowError", err)
			}
			if winErr.Status != tc.want {
				t.Errorf("WindowError.Status = %q, want %q", winErr.Status, tc.want)
			}
			if len(subs.created) != 0 {
				t.Errorf("submission persisted despite closed window")
			}
		})
	}
}

func TestSubmitGradesAndNotifies(t *testing.T) {
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	start, end := "10:00", "12:00"
	now := time.Date(2024, time.March, 10, 11, 0, 0, 0, time.UTC)

	qs := questions(4)
	quiz := &model.Quiz{
		ID:           uuid.New(),
		TeacherID:    1,
		Title:        "Algebra basics",
		GradeLevels:  []string{"8"},
		Questions:    qs,
		IsScheduled:  true,
		ScheduleDate: &d,
		StartTime:    &start,
		EndTime:      &end,
		Status:       model.QuizStatusScheduled,
	}

	subs := &fakeSubmissionStore{}
	notifier := &fakeNotifier{}
	dir := &fakeDirectory{students: []model.Student{{ID: 7, Name: "Ana", GradeLevel: "8"}}}
	svc := newTestQuizService(newFakeQuizStore(quiz), subs, dir, notifier, now)

	answers := []int{qs[0].CorrectOption, qs[1].CorrectOption, qs[2].CorrectOption,
		(qs[3].CorrectOption + 1) % 4}
	result, err := svc.Submit(context.Background(), quiz.ID, 7, &model.SubmitQuizRequest{Answers: answers})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Score != 75 {
		t.Errorf("Score = %d, want 75", result.Score)
	}
	if len(subs.created) != 1 {
		t.Fatalf("persisted %d submissions, want 1", len(subs.created))
	}
	if len(notifier.graded) != 1 || notifier.graded[0] != 75 {
		t.Errorf("graded notifications = %v, want [75]", notifier.graded)
	}
}

func TestSubmitAnswerCountMismatch(t *testing.T) {
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	start, end := "10:00", "12:00"
	now := time.Date(2024, time.March, 10, 11, 0, 0, 0, time.UTC)

	quiz := &model.Quiz{
		ID:           uuid.New(),
		TeacherID:    1,
		Questions:    questions(3),
		IsScheduled:  true,
		ScheduleDate: &d,
		StartTime:    &start,
		EndTime:      &end,
		Status:       model.QuizStatusScheduled,
	}
	svc := newTestQuizService(newFakeQuizStore(quiz), &fakeSubmissionStore{}, &fakeDirectory{}, &fakeNotifier{}, now)

	_, err := svc.Submit(context.Background(), quiz.ID, 7, &model.SubmitQuizRequest{Answers: []int{0}})
	if !errors.Is(err, ErrAnswerCountMismatch) {
		t.Fatalf("Submit() error = %v, want ErrAnswerCountMismatch", err)
	}
}

func TestScheduleFansOutToMatchingGrades(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	quiz := &model.Quiz{
		ID:          uuid.New(),
		TeacherID:   1,
		Title:       "Fractions",
		GradeLevels: []string{"7", "8"},
		Questions:   questions(2),
		Status:      model.QuizStatusDraft,
	}
	dir := &fakeDirectory{students: []model.Student{
		{ID: 1, GradeLevel: "7"},
		{ID: 2, GradeLevel: "8"},
		{ID: 3, GradeLevel: "9"},
	}}
	notifier := &fakeNotifier{}
	store := newFakeQuizStore(quiz)
	svc := newTestQuizService(store, &fakeSubmissionStore{}, dir, notifier, now)

	updated, created, err := svc.Schedule(context.Background(), quiz.ID, 1, &model.ScheduleQuizRequest{
		ScheduleDate: "2024-03-10",
		StartTime:    "10:00",
		EndTime:      "12:00",
	})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2 (grade 9 excluded)", created)
	}
	if updated.Status != model.QuizStatusScheduled || !updated.IsScheduled {
		t.Errorf("quiz not flipped to scheduled: %+v", updated)
	}
	if notifier.fanOuts != 1 {
		t.Errorf("fanOuts = %d, want 1", notifier.fanOuts)
	}
}

func TestScheduleRejectsNonOwner(t *testing.T) {
	quiz := &model.Quiz{ID: uuid.New(), TeacherID: 1, Questions: questions(1)}
	svc := newTestQuizService(newFakeQuizStore(quiz), &fakeSubmissionStore{}, &fakeDirectory{}, &fakeNotifier{}, time.Now())

	_, _, err := svc.Schedule(context.Background(), quiz.ID, 2, &model.ScheduleQuizRequest{
		ScheduleDate: "2024-03-10", StartTime: "10:00", EndTime: "12:00",
	})
	if !errors.Is(err, ErrNotQuizOwner) {
		t.Fatalf("Schedule() error = %v, want ErrNotQuizOwner", err)
	}
}

func TestCreateRejectsInvalidCorrectOption(t *testing.T) {
	svc := newTestQuizService(newFakeQuizStore(), &fakeSubmissionStore{}, &fakeDirectory{}, &fakeNotifier{}, time.Now())

	cases := []struct {
		name string
		q    model.Question
	}{
		{"index past options", model.Question{Options: []string{"a", "b"}, CorrectOption: 2}},
		{"negative index", model.Question{Options: []string{"a", "b"}, CorrectOption: -1}},
		{"single option", model.Question{Options: []string{"a"}, CorrectOption: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, &model.CreateQuizRequest{
				Title:       "Broken quiz",
				GradeLevels: []string{"8"},
				Questions:   []model.Question{tc.q},
			})
			if !errors.Is(err, ErrInvalidQuestion) {
				t.Fatalf("Create() error = %v, want ErrInvalidQuestion", err)
			}
		})
	}
}

func TestListForStudentFiltersExpiredAndStripsAnswers(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	s09, s11, s14, s16 := "09:00", "11:00", "14:00", "16:00"

	active := &model.Quiz{ID: uuid.New(), TeacherID: 1, Title: "Active", GradeLevels: []string{"8"},
		Questions: questions(2), IsScheduled: true, ScheduleDate: &d, StartTime: &s11, EndTime: &s14,
		Status: model.QuizStatusScheduled}
	upcoming := &model.Quiz{ID: uuid.New(), TeacherID: 1, Title: "Upcoming", GradeLevels: []string{"8"},
		Questions: questions(2), IsScheduled: true, ScheduleDate: &d, StartTime: &s14, EndTime: &s16,
		Status: model.QuizStatusScheduled}
	expired := &model.Quiz{ID: uuid.New(), TeacherID: 1, Title: "Expired", GradeLevels: []string{"8"},
		Questions: questions(2), IsScheduled: true, ScheduleDate: &d, StartTime: &s09, EndTime: &s11,
		Status: model.QuizStatusScheduled}

	svc := newTestQuizService(newFakeQuizStore(active, upcoming, expired), &fakeSubmissionStore{}, &fakeDirectory{}, &fakeNotifier{}, now)

	visible, err := svc.ListForStudent(context.Background(), &model.Student{ID: 7, GradeLevel: "8"})
	if err != nil {
		t.Fatalf("ListForStudent() error = %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("got %d quizzes, want 2 (expired hidden)", len(visible))
	}
	for _, sq := range visible {
		if sq.Title == "Expired" {
			t.Errorf("expired quiz leaked into student listing")
		}
		for _, q := range sq.Questions {
			if len(q.Options) == 0 {
				t.Errorf("question options missing")
			}
		}
	}
}

func TestDeleteUnknownQuiz(t *testing.T) {
	svc := newTestQuizService(newFakeQuizStore(), &fakeSubmissionStore{}, &fakeDirectory{}, &fakeNotifier{}, time.Now())
	err := svc.Delete(context.Background(), uuid.New(), 1)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("Delete() error = %v, want ErrQuizNotFound", err)
	}
}
