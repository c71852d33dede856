package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
)

// Memory is an in-process record store with the same constraints as the
// database schema. It backs tests and local demos.
type Memory struct {
	mu         sync.RWMutex
	branches   map[string]model.Branch
	profiles   map[string]model.Profile
	attendance map[string]model.AttendanceRecord
	movements  []model.MovementLog
	vehicles   map[string]model.Vehicle
	expenses   []model.Expense
	failures   map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		branches:   make(map[string]model.Branch),
		profiles:   make(map[string]model.Profile),
		attendance: make(map[string]model.AttendanceRecord),
		vehicles:   make(map[string]model.Vehicle),
		failures:   make(map[string]error),
	}
}

// Fail makes the named operation (e.g. "attendance.insert") return err until cleared with nil.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Memory) failure(op string) error {
	return m.failures[op]
}

func (m *Memory) PutBranch(b model.Branch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[b.ID] = b
}

func (m *Memory) PutProfile(p model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *Memory) PutVehicle(v model.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
}

// Movements returns every stored sample in insertion order.
func (m *Memory) Movements() []model.MovementLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.MovementLog, len(m.movements))
	copy(out, m.movements)
	return out
}

func (m *Memory) AttendanceRecords() []model.AttendanceRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.AttendanceRecord, 0, len(m.attendance))
	for _, r := range m.attendance {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) Attendance() *MemoryAttendance { return &MemoryAttendance{m} }
func (m *Memory) Locations() *MemoryLocations { return &MemoryLocations{m} }
func (m *Memory) Profiles() *MemoryProfiles { return &MemoryProfiles{m} }
func (m *Memory) Branches() *MemoryBranches { return &MemoryBranches{m} }
func (m *Memory) Vehicles() *MemoryVehicles { return &MemoryVehicles{m} }
func (m *Memory) Expenses() *MemoryExpenses { return &MemoryExpenses{m} }

type MemoryAttendance struct{ m *Memory }

func (s *MemoryAttendance) FindByUserDate(ctx context.Context, userID, date string) (*model.AttendanceRecord, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if err := s.m.failure("attendance.find"); err != nil {
		return nil, err
	}
	for _, r := range s.m.attendance {
		if r.UserID == userID && r.Date == date {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *MemoryAttendance) Insert(ctx context.Context, rec *model.AttendanceRecord) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("attendance.insert"); err != nil {
		return err
	}
	for _, r := range s.m.attendance {
		if r.UserID == rec.UserID && r.Date == rec.Date {
			return fmt.Errorf("attendance %s/%s: %w", rec.UserID, rec.Date, core.ErrDuplicateKey)
		}
	}
	if _, ok := s.m.attendance[rec.ID]; ok {
		return fmt.Errorf("attendance %s: %w", rec.ID, core.ErrDuplicateKey)
	}
	stored := *rec
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.m.attendance[rec.ID] = stored
	return nil
}

func (s *MemoryAttendance) CompleteCheckOut(ctx context.Context, id string, at time.Time, status model.AttendanceStatus) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("attendance.update"); err != nil {
		return false, err
	}
	r, ok := s.m.attendance[id]
	if !ok || r.CheckOut != nil {
		return false, nil
	}
	r.CheckOut = &at
	r.Status = status
	r.UpdatedAt = time.Now()
	s.m.attendance[id] = r
	return true, nil
}

func (s *MemoryAttendance) UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("attendance.update"); err != nil {
		return false, err
	}
	r, ok := s.m.attendance[id]
	if !ok || r.CheckOut != nil {
		return false, nil
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	s.m.attendance[id] = r
	return true, nil
}

func (s *MemoryAttendance) ListBetween(ctx context.Context, from, to string) ([]model.AttendanceRecord, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if err := s.m.failure("attendance.list"); err != nil {
		return nil, err
	}
	var out []model.AttendanceRecord
	for _, r := range s.m.attendance {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type MemoryLocations struct{ m *Memory }

func (s *MemoryLocations) Append(ctx context.Context, entry *model.MovementLog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("movement.append"); err != nil {
		return err
	}
	s.m.movements = append(s.m.movements, *entry)
	return nil
}

func (s *MemoryLocations) ListSince(ctx context.Context, since time.Time) ([]model.MovementLog, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if err := s.m.failure("movement.list"); err != nil {
		return nil, err
	}
	out := utils.Filter(s.m.movements, func(l model.MovementLog) bool { return !l.Timestamp.Before(since) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

type MemoryProfiles struct{ m *Memory }

func (s *MemoryProfiles) Find(ctx context.Context, id string) (*model.Profile, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if err := s.m.failure("profile.find"); err != nil {
		return nil, err
	}
	p, ok := s.m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryProfiles) List(ctx context.Context) ([]model.Profile, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if err := s.m.failure("profile.list"); err != nil {
		return nil, err
	}
	out := make([]model.Profile, 0, len(s.m.profiles))
	for _, p := range s.m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryProfiles) Delete(ctx context.Context, id string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("profile.delete"); err != nil {
		return false, err
	}
	if _, ok := s.m.profiles[id]; !ok {
		return false, nil
	}
	s.m.movements = utils.Filter(s.m.movements, func(l model.MovementLog) bool { return l.UserID != id })
	for key, r := range s.m.attendance {
		if r.UserID == id {
			delete(s.m.attendance, key)
		}
	}
	delete(s.m.profiles, id)
	return true, nil
}

type MemoryBranches struct{ m *Memory }

func (s *MemoryBranches) Find(ctx context.Context, id string) (*model.Branch, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	b, ok := s.m.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemoryBranches) List(ctx context.Context) ([]model.Branch, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]model.Branch, 0, len(s.m.branches))
	for _, b := range s.m.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type MemoryVehicles struct{ m *Memory }

func (s *MemoryVehicles) List(ctx context.Context) ([]model.Vehicle, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]model.Vehicle, 0, len(s.m.vehicles))
	for _, v := range s.m.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type MemoryExpenses struct{ m *Memory }

func (s *MemoryExpenses) Insert(ctx context.Context, e *model.Expense) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failure("expense.insert"); err != nil {
		return err
	}
	stored := *e
	stored.CreatedAt = time.Now()
	s.m.expenses = append(s.m.expenses, stored)
	return nil
}

func (s *MemoryExpenses) List(ctx context.Context, month string, userID string) ([]model.Expense, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := utils.Filter(s.m.expenses, func(e model.Expense) bool {
		return utils.InMonth(e.Date, month) && (userID == "" || e.UserID == userID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
