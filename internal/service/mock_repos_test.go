package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/admVeloHub/front-console-sub000/internal/analytics"
	"github.com/admVeloHub/front-console-sub000/internal/model"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("uid-%03d", m.seq)
	}
	user.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePermissions(_ context.Context, id string, permissions []string, _ string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Permissions = model.StringArray(permissions)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock CapacityParameterRepository ──

type mockCapacityParamRepo struct {
	rows    map[string]*model.CapacityParameters
	upserts int
	err     error
}

func newMockCapacityParamRepo() *mockCapacityParamRepo {
	return &mockCapacityParamRepo{rows: make(map[string]*model.CapacityParameters)}
}

func (m *mockCapacityParamRepo) GetByOwner(_ context.Context, ownerID string) (*model.CapacityParameters, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.rows[ownerID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCapacityParamRepo) Upsert(_ context.Context, params *model.CapacityParameters) error {
	if m.err != nil {
		return m.err
	}
	cp := *params
	m.rows[params.OwnerID] = &cp
	m.upserts++
	return nil
}

// ── Mock ActivityLogRepository ──

type mockActivityRepo struct {
	logs  []analytics.ActivityLog
	calls int
	err   error
}

func (m *mockActivityRepo) FetchActivity(_ context.Context, _, _ time.Time) ([]analytics.ActivityLog, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.logs, nil
}

// ── Mock AnalysisSnapshotRepository ──

type mockSnapshotRepo struct {
	snapshots []*model.AnalysisSnapshot
	err       error
}

func (m *mockSnapshotRepo) Insert(_ context.Context, snap *model.AnalysisSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockSnapshotRepo) Latest(_ context.Context) (*model.AnalysisSnapshot, error) {
	if len(m.snapshots) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// ── Mock LastRunStore ──

type mockLastRun struct {
	at  time.Time
	set bool
}

func (m *mockLastRun) SetLastRun(_ context.Context, at time.Time) error {
	m.at, m.set = at, true
	return nil
}

func (m *mockLastRun) GetLastRun(_ context.Context) (time.Time, bool, error) {
	return m.at, m.set, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	user     *mockUserRepo
	params   *mockCapacityParamRepo
	activity *mockActivityRepo
	snaps    *mockSnapshotRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:     newMockUserRepo(),
		params:   newMockCapacityParamRepo(),
		activity: &mockActivityRepo{},
		snaps:    &mockSnapshotRepo{},
	}
	return &repository.Repository{
		User:             m.user,
		CapacityParams:   m.params,
		ActivityLog:      m.activity,
		AnalysisSnapshot: m.snaps,
	}, m
}
