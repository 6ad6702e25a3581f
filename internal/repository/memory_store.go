package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"employee-review/internal/domain"
)

// MemoryStore implementa todos los repositorios en memoria. Lo usan los tests y
// el harness offline; los "no encontrado" se reportan con pgx.ErrNoRows igual que en Postgres.
type MemoryStore struct {
	mu               sync.Mutex
	employees        map[int64]domain.Employee
	reviewers        map[int64]domain.Reviewer
	aspects          []domain.Aspect
	feedback         []domain.Feedback
	aspectSummaries  []domain.AspectSummary
	generalSummaries []domain.GeneralSummary
	seq              int64
	runs             int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[int64]domain.Employee),
		reviewers: make(map[int64]domain.Reviewer),
	}
}

func (s *MemoryStore) Employees() EmployeeRepository { return memoryEmployees{s} }
func (s *MemoryStore) Reviewers() ReviewerRepository { return memoryReviewers{s} }
func (s *MemoryStore) Aspects() AspectRepository     { return memoryAspects{s} }
func (s *MemoryStore) Feedback() FeedbackRepository  { return memoryFeedback{s} }
func (s *MemoryStore) Summaries() SummaryRepository  { return memorySummaries{s} }

// SavedRuns cuenta las ejecuciones persistidas con SaveRun.
func (s *MemoryStore) SavedRuns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *MemoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

type memoryEmployees struct{ s *MemoryStore }

func (m memoryEmployees) EnsureExists(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.employees[id]; !ok {
		m.s.employees[id] = domain.Employee{ID: id, CreatedAt: time.Now().UTC()}
	}
	return nil
}

func (m memoryEmployees) GetByID(_ context.Context, id int64) (domain.Employee, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.employees[id]
	if !ok {
		return domain.Employee{}, pgx.ErrNoRows
	}
	return e, nil
}

func (m memoryEmployees) ListWithFeedbackCount(_ context.Context) ([]domain.EmployeeFeedbackCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[int64]int)
	for _, fb := range m.s.feedback {
		counts[fb.EmployeeID]++
	}
	out := make([]domain.EmployeeFeedbackCount, 0, len(m.s.employees))
	for _, e := range m.s.employees {
		out = append(out, domain.EmployeeFeedbackCount{Employee: e, FeedbackCount: counts[e.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memoryEmployees) UpdatePsychotype(_ context.Context, p domain.Psychotype) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.updatePsychotypeLocked(p)
}

func (s *MemoryStore) updatePsychotypeLocked(p domain.Psychotype) error {
	e, ok := s.employees[p.EmployeeID]
	if !ok {
		return pgx.ErrNoRows
	}
	label, description := p.Label, p.Description
	e.Psychotype = &label
	e.PsychotypeDescription = &description
	s.employees[p.EmployeeID] = e
	return nil
}

type memoryReviewers struct{ s *MemoryStore }

func (m memoryReviewers) EnsureExists(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.reviewers[id]; !ok {
		m.s.reviewers[id] = domain.Reviewer{ID: id, CreatedAt: time.Now().UTC()}
	}
	return nil
}

type memoryAspects struct{ s *MemoryStore }

func (m memoryAspects) List(_ context.Context) ([]domain.Aspect, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]domain.Aspect(nil), m.s.aspects...), nil
}

func (m memoryAspects) GetByID(_ context.Context, id int64) (domain.Aspect, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.aspects {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Aspect{}, pgx.ErrNoRows
}

func (m memoryAspects) Create(_ context.Context, text string) (domain.Aspect, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a := domain.Aspect{ID: m.s.nextID(), Text: text}
	m.s.aspects = append(m.s.aspects, a)
	return a, nil
}

func (m memoryAspects) Update(_ context.Context, aspect domain.Aspect) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.aspects {
		if m.s.aspects[i].ID == aspect.ID {
			m.s.aspects[i] = aspect
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m memoryAspects) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.aspects {
		if m.s.aspects[i].ID == id {
			m.s.aspects = append(m.s.aspects[:i], m.s.aspects[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memoryFeedback struct{ s *MemoryStore }

func (m memoryFeedback) Create(_ context.Context, fb domain.Feedback) (domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	fb.ID = m.s.nextID()
	m.s.feedback = append(m.s.feedback, fb)
	return fb, nil
}

func (m memoryFeedback) FindDuplicate(_ context.Context, employeeID, reviewerID int64, text string) (domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, fb := range m.s.feedback {
		if fb.EmployeeID == employeeID && fb.ReviewerID == reviewerID && fb.Text == text {
			return fb, nil
		}
	}
	return domain.Feedback{}, pgx.ErrNoRows
}

func (m memoryFeedback) ListByEmployee(_ context.Context, employeeID int64) ([]domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range m.s.feedback {
		if fb.EmployeeID == employeeID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m memoryFeedback) ListAll(_ context.Context) ([]domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]domain.Feedback(nil), m.s.feedback...), nil
}

type memorySummaries struct{ s *MemoryStore }

func (m memorySummaries) SaveRun(_ context.Context, run domain.SummaryRun) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.employees[run.EmployeeID]; !ok {
		return pgx.ErrNoRows
	}
	for _, a := range run.Aspects {
		a.ID = m.s.nextID()
		a.EmployeeID = run.EmployeeID
		a.RunID = run.RunID
		m.s.aspectSummaries = append(m.s.aspectSummaries, a)
	}
	general := run.General
	general.ID = m.s.nextID()
	general.EmployeeID = run.EmployeeID
	general.RunID = run.RunID
	m.s.generalSummaries = append(m.s.generalSummaries, general)
	m.s.runs++
	return m.s.updatePsychotypeLocked(run.Psychotype)
}

func (m memorySummaries) ListAspectSummaries(_ context.Context, employeeID int64) ([]domain.AspectSummary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.AspectSummary
	for _, a := range m.s.aspectSummaries {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memorySummaries) ListGeneralSummaries(_ context.Context, employeeID int64) ([]domain.GeneralSummary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.GeneralSummary
	for _, g := range m.s.generalSummaries {
		if g.EmployeeID == employeeID {
			out = append(out, g)
		}
	}
	return out, nil
}
