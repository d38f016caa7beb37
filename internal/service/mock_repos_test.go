package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
	pkgerrors "github.com/cioer/DoAn-sub004/pkg/errors"
)

// ── Mock Repositories ──
// 事务语义：Repository.BeginTx 在无 db 时返回 nil 事务，WithTx 原样返回，
// 因此这些 mock 直接作为"事务内"仓储使用

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByFaculty(_ context.Context, facultyID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.FacultyID != nil && *u.FacultyID == facultyID {
			result = append(result, *u)
		}
	}
	return result, nil
}

type mockFacultyRepo struct {
	faculties map[string]*model.Faculty
}

func newMockFacultyRepo() *mockFacultyRepo {
	return &mockFacultyRepo{
		faculties: map[string]*model.Faculty{
			"fac-1": {FacultyID: "fac-1", Code: "CNTT", Name: "信息技术学院"},
		},
	}
}

func (m *mockFacultyRepo) Create(_ context.Context, faculty *model.Faculty) error {
	m.faculties[faculty.FacultyID] = faculty
	return nil
}

func (m *mockFacultyRepo) GetByID(_ context.Context, id string) (*model.Faculty, error) {
	if f, ok := m.faculties[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) List(_ context.Context) ([]model.Faculty, error) {
	var result []model.Faculty
	for _, f := range m.faculties {
		result = append(result, *f)
	}
	return result, nil
}

type mockProposalRepo struct {
	proposals map[string]*model.Proposal
	seq       int
	// updateErr 非空时下一次 UpdateWorkflow 返回该错误（模拟乐观锁冲突等）
	updateErr error
}

func newMockProposalRepo() *mockProposalRepo {
	return &mockProposalRepo{proposals: make(map[string]*model.Proposal)}
}

func (m *mockProposalRepo) put(p *model.Proposal) {
	cp := *p
	m.proposals[p.ProposalID] = &cp
}

func (m *mockProposalRepo) Create(_ context.Context, proposal *model.Proposal) error {
	if proposal.ProposalID == "" {
		m.seq++
		proposal.ProposalID = fmt.Sprintf("prop-%d", m.seq)
	}
	if proposal.Version == 0 {
		proposal.Version = 1
	}
	m.put(proposal)
	return nil
}

func (m *mockProposalRepo) GetByID(_ context.Context, id string) (*model.Proposal, error) {
	if p, ok := m.proposals[id]; ok {
		cp := *p // 返回副本，模拟数据库读取
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProposalRepo) List(_ context.Context, filter repository.ProposalFilter, offset, limit int) ([]model.Proposal, int64, error) {
	var result []model.Proposal
	for _, p := range m.proposals {
		if filter.State != "" && p.State != filter.State {
			continue
		}
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.FacultyID != "" && p.FacultyID != filter.FacultyID {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (m *mockProposalRepo) UpdateWorkflow(_ context.Context, proposal *model.Proposal) error {
	if m.updateErr != nil {
		err := m.updateErr
		m.updateErr = nil
		return err
	}
	stored, ok := m.proposals[proposal.ProposalID]
	if !ok || stored.Version != proposal.Version {
		return pkgerrors.ErrOptimisticLock
	}
	proposal.Version++
	m.put(proposal)
	return nil
}

func (m *mockProposalRepo) CountByCodePrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, p := range m.proposals {
		if len(p.Code) >= len(prefix) && p.Code[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

func (m *mockProposalRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.proposals, id)
	return nil
}

type mockWorkflowLogRepo struct {
	logs []model.WorkflowLog
	seq  int
}

func newMockWorkflowLogRepo() *mockWorkflowLogRepo {
	return &mockWorkflowLogRepo{}
}

func (m *mockWorkflowLogRepo) Create(_ context.Context, log *model.WorkflowLog) error {
	m.seq++
	if log.WorkflowLogID == "" {
		log.WorkflowLogID = fmt.Sprintf("wlog-%d", m.seq)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockWorkflowLogRepo) ListByProposal(_ context.Context, proposalID string, offset, limit int) ([]model.WorkflowLog, int64, error) {
	var result []model.WorkflowLog
	for _, l := range m.logs {
		if l.ProposalID == proposalID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockWorkflowLogRepo) GetLast(_ context.Context, proposalID string) (*model.WorkflowLog, error) {
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].ProposalID == proposalID {
			cp := m.logs[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockIdempotencyRepo struct {
	records map[string]*model.IdempotencyRecord
}

func newMockIdempotencyRepo() *mockIdempotencyRepo {
	return &mockIdempotencyRepo{records: make(map[string]*model.IdempotencyRecord)}
}

func tripleKey(actorID, scope, key string) string {
	return actorID + "|" + scope + "|" + key
}

func (m *mockIdempotencyRepo) Insert(_ context.Context, record *model.IdempotencyRecord) error {
	k := tripleKey(record.ActorID, record.Scope, record.IdempotencyKey)
	if _, ok := m.records[k]; ok {
		return pkgerrors.ErrDuplicateKey
	}
	cp := *record
	m.records[k] = &cp
	return nil
}

func (m *mockIdempotencyRepo) GetByTriple(_ context.Context, actorID, scope, key string) (*model.IdempotencyRecord, error) {
	if r, ok := m.records[tripleKey(actorID, scope, key)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIdempotencyRepo) HasLivePending(_ context.Context, scope, excludeKey string, now time.Time) (bool, error) {
	for _, r := range m.records {
		if r.Scope == scope && r.IdempotencyKey != excludeKey &&
			r.Status == model.IdempotencyPending && r.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockIdempotencyRepo) Complete(_ context.Context, actorID, scope, key string, responseCode int, responseBody []byte) error {
	if r, ok := m.records[tripleKey(actorID, scope, key)]; ok && r.Status == model.IdempotencyPending {
		r.Status = model.IdempotencyCompleted
		r.ResponseCode = &responseCode
		r.ResponseBody = responseBody
	}
	return nil
}

func (m *mockIdempotencyRepo) Delete(_ context.Context, actorID, scope, key string) error {
	delete(m.records, tripleKey(actorID, scope, key))
	return nil
}

func (m *mockIdempotencyRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, r := range m.records {
		if r.ExpiresAt.Before(before) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

type mockEvaluationRepo struct {
	evaluations map[string]*model.Evaluation
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{evaluations: make(map[string]*model.Evaluation)}
}

func evalKey(proposalID, stage string) string {
	return proposalID + "|" + stage
}

func (m *mockEvaluationRepo) Create(_ context.Context, evaluation *model.Evaluation) error {
	if evaluation.EvaluationID == "" {
		evaluation.EvaluationID = "eval-" + evaluation.ProposalID
	}
	if evaluation.Version == 0 {
		evaluation.Version = 1
	}
	cp := *evaluation
	m.evaluations[evalKey(evaluation.ProposalID, evaluation.Stage)] = &cp
	return nil
}

func (m *mockEvaluationRepo) GetByProposalStage(_ context.Context, proposalID, stage string) (*model.Evaluation, error) {
	if e, ok := m.evaluations[evalKey(proposalID, stage)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEvaluationRepo) Update(_ context.Context, evaluation *model.Evaluation) error {
	k := evalKey(evaluation.ProposalID, evaluation.Stage)
	stored, ok := m.evaluations[k]
	if !ok || stored.Version != evaluation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	evaluation.Version++
	cp := *evaluation
	m.evaluations[k] = &cp
	return nil
}

type mockHolidayRepo struct {
	dates []time.Time
}

func newMockHolidayRepo(dates ...time.Time) *mockHolidayRepo {
	return &mockHolidayRepo{dates: dates}
}

func (m *mockHolidayRepo) Create(_ context.Context, holiday *model.Holiday) error {
	m.dates = append(m.dates, holiday.HolidayDate)
	return nil
}

func (m *mockHolidayRepo) List(_ context.Context) ([]model.Holiday, error) {
	result := make([]model.Holiday, 0, len(m.dates))
	for _, d := range m.dates {
		result = append(result, model.Holiday{HolidayDate: d})
	}
	return result, nil
}

func (m *mockHolidayRepo) ListDates(_ context.Context) ([]time.Time, error) {
	return m.dates, nil
}

func (m *mockHolidayRepo) DeleteByDate(_ context.Context, date time.Time) error {
	for i, d := range m.dates {
		if d.Equal(date) {
			m.dates = append(m.dates[:i], m.dates[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockAuditLogRepo struct {
	mu sync.Mutex
	// failures 前 N 次 Create 返回错误（测试重试路径）
	failures int
	logs     []model.AuditLog
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return gorm.ErrInvalidDB
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) ListByProposal(_ context.Context, proposalID string, offset, limit int) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AuditLog
	for _, l := range m.logs {
		if l.ProposalID == proposalID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockAuditLogRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// [自证通过] internal/service/mock_repos_test.go
