package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/risk"
	pkgerrors "github.com/krunal16-c/saskhack/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // user_id → user
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.UserID == "" {
		m.seq++
		u.UserID = fmt.Sprintf("uid-%03d", m.seq)
	}
	if u.Version == 0 {
		u.Version = 1
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) CreateIfAbsent(_ context.Context, user *model.User) (bool, error) {
	for _, u := range m.users {
		if u.ExternalID == user.ExternalID {
			return false, nil
		}
	}
	m.add(user)
	return true, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByExternalID(_ context.Context, externalID string) (*model.User, error) {
	for _, u := range m.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
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

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams   map[string]*model.Team
	members map[string][]string // team_id → user_ids
	users   *mockUserRepo
	seq     int
}

func newMockTeamRepo(users *mockUserRepo) *mockTeamRepo {
	return &mockTeamRepo{
		teams:   make(map[string]*model.Team),
		members: make(map[string][]string),
		users:   users,
	}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		m.seq++
		team.TeamID = fmt.Sprintf("team-%03d", m.seq)
	}
	cp := *team
	m.teams[team.TeamID] = &cp
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	cp.Members = nil
	for _, uid := range m.members[id] {
		tm := model.TeamMember{TeamID: id, UserID: uid}
		if u, ok := m.users.users[uid]; ok {
			uc := *u
			tm.User = &uc
		}
		cp.Members = append(cp.Members, tm)
	}
	return &cp, nil
}

func (m *mockTeamRepo) List(_ context.Context) ([]repository.TeamWithCount, error) {
	var out []repository.TeamWithCount
	for id, t := range m.teams {
		out = append(out, repository.TeamWithCount{Team: *t, MemberCount: int64(len(m.members[id]))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	if _, ok := m.teams[team.TeamID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *team
	m.teams[team.TeamID] = &cp
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teams, id)
	delete(m.members, id)
	return nil
}

func (m *mockTeamRepo) AddMember(_ context.Context, teamID, userID string) (bool, error) {
	for _, uid := range m.members[teamID] {
		if uid == userID {
			return false, nil
		}
	}
	m.members[teamID] = append(m.members[teamID], userID)
	return true, nil
}

func (m *mockTeamRepo) RemoveMember(_ context.Context, teamID, userID string) (bool, error) {
	ids := m.members[teamID]
	for i, uid := range ids {
		if uid == userID {
			m.members[teamID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeamRepo) ListMembers(_ context.Context, teamID string) ([]model.User, error) {
	return m.users.GetByIDs(context.Background(), m.members[teamID])
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs      []*model.DailySubmission
	seq       int
	upsertErr error
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{}
}

// Upsert 与数据库行为一致：同 (user_id, date) 覆盖，保留 ID 与首次提交时间
func (m *mockSubmissionRepo) Upsert(_ context.Context, sub *model.DailySubmission) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for i, s := range m.subs {
		if s.UserID == sub.UserID && risk.DayDiff(s.Date, sub.Date) == 0 {
			cp := *sub
			cp.SubmissionID = s.SubmissionID
			cp.SubmittedAt = s.SubmittedAt
			cp.CreatedAt = s.CreatedAt
			m.subs[i] = &cp
			return nil
		}
	}
	m.seq++
	cp := *sub
	cp.SubmissionID = fmt.Sprintf("sub-%03d", m.seq)
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *mockSubmissionRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*model.DailySubmission, error) {
	for _, s := range m.subs {
		if s.UserID == userID && risk.DayDiff(s.Date, date) == 0 {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListByUser(_ context.Context, userID string, since time.Time, limit int) ([]model.DailySubmission, error) {
	out := m.filter(func(s *model.DailySubmission) bool {
		return s.UserID == userID && risk.DayDiff(s.Date, since) >= 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSubmissionRepo) ListByUsers(_ context.Context, userIDs []string, since time.Time) ([]model.DailySubmission, error) {
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	return m.filter(func(s *model.DailySubmission) bool {
		return set[s.UserID] && risk.DayDiff(s.Date, since) >= 0
	}), nil
}

func (m *mockSubmissionRepo) filter(keep func(*model.DailySubmission) bool) []model.DailySubmission {
	var out []model.DailySubmission
	for _, s := range m.subs {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// ── Mock NotificationLogRepository ──

type mockNotificationLogRepo struct {
	logs []model.NotificationLog
}

func newMockNotificationLogRepo() *mockNotificationLogRepo {
	return &mockNotificationLogRepo{}
}

func (m *mockNotificationLogRepo) Create(_ context.Context, log *model.NotificationLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockNotificationLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.NotificationLog, error) {
	var out []model.NotificationLog
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNotificationLogRepo) countByStatus(status string) int {
	n := 0
	for _, l := range m.logs {
		if l.Status == status {
			n++
		}
	}
	return n
}

// ── 聚合 ──

type mockRepos struct {
	user         *mockUserRepo
	team         *mockTeamRepo
	submission   *mockSubmissionRepo
	notification *mockNotificationLogRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	m := &mockRepos{
		user:         users,
		team:         newMockTeamRepo(users),
		submission:   newMockSubmissionRepo(),
		notification: newMockNotificationLogRepo(),
	}
	repo := &repository.Repository{
		User:            m.user,
		Team:            m.team,
		Submission:      m.submission,
		NotificationLog: m.notification,
	}
	return repo, m
}

// ── Mock 外部依赖 ──

// fixedClock 测试时钟：2026-10-15 08:00 UTC
func fixedClock() clock {
	return newClock(func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }, time.UTC)
}

type stubScorer struct {
	score int
	err   error
	calls int
	last  risk.FeatureVector
}

func (s *stubScorer) Score(_ context.Context, fv risk.FeatureVector) (int, error) {
	s.calls++
	s.last = fv
	return s.score, s.err
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	p.events = append(p.events, publishedEvent{subject: subject, data: data})
	return p.err
}

func (p *stubPublisher) subjects() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	sent   []sentMail
	failTo map[string]bool
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failTo[to] {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type memoryGuard struct {
	keys     map[string]bool
	unmarked []string
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{keys: make(map[string]bool)}
}

func (g *memoryGuard) MarkOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memoryGuard) Unmark(_ context.Context, key string) error {
	delete(g.keys, key)
	g.unmarked = append(g.unmarked, key)
	return nil
}
