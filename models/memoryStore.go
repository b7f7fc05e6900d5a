package models

import (
	"context"
	"sort"
	"sync"

	"github.com/jadygoy/cafe_backend/utils"
)

// MemoryStore is an in-process ReportStore and UserStore used for local
// demo runs (STORE_DRIVER=memory) and tests. Every method holds the mutex
// for its whole body, so each call is atomic.
type MemoryStore struct {
	mu sync.RWMutex

	seq       uint64
	reports   map[string]*DailyReport
	reportSeq map[string]uint64

	users     map[string]*User
	userOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:   make(map[string]*DailyReport),
		reportSeq: make(map[string]uint64),
		users:     make(map[string]*User),
	}
}

func (s *MemoryStore) CreateReport(_ context.Context, report *DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.Date]; exists {
		return utils.ErrorDuplicateReportDate
	}
	s.seq++
	s.reports[report.Date] = report.clone()
	s.reportSeq[report.Date] = s.seq
	return nil
}

func (s *MemoryStore) ListReports(_ context.Context) ([]*DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*DailyReport, 0, len(s.reports))
	for _, r := range s.reports {
		results = append(results, r.clone())
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Date != results[j].Date {
			return results[i].Date > results[j].Date
		}
		return s.reportSeq[results[i].Date] < s.reportSeq[results[j].Date]
	})
	return results, nil
}

func (s *MemoryStore) FindReportByDate(_ context.Context, date string) (*DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[date]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return r.clone(), nil
}

func (s *MemoryStore) ReplaceReport(_ context.Context, date string, report *DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reports[date]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	report.ID = existing.ID
	report.CreatedAt = existing.CreatedAt
	s.reports[date] = report.clone()
	return nil
}

func (s *MemoryStore) DeleteReport(_ context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[date]; !ok {
		return utils.ErrorRecordNotFound
	}
	delete(s.reports, date)
	delete(s.reportSeq, date)
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return utils.ErrorDuplicateUsername
	}
	s.users[user.Username] = user.clone()
	s.userOrder = append(s.userOrder, user.Username)
	return nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return u.clone(), nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*User, 0, len(s.userOrder))
	for _, username := range s.userOrder {
		results = append(results, s.users[username].clone())
	}
	return results, nil
}
