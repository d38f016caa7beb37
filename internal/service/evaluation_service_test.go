package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
)

type evaluationTestEnv struct {
	svc       EvaluationService
	users     *mockUserRepo
	proposals *mockProposalRepo
	evals     *mockEvaluationRepo
}

func setupTestEvaluationService(t *testing.T) *evaluationTestEnv {
	t.Helper()
	users := newMockUserRepo()
	proposals := newMockProposalRepo()
	evals := newMockEvaluationRepo()
	repo := &repository.Repository{
		User:       users,
		Proposal:   proposals,
		Evaluation: evals,
	}
	return &evaluationTestEnv{
		svc:       NewEvaluationService(repo, zap.NewNop()),
		users:     users,
		proposals: proposals,
		evals:     evals,
	}
}

func (env *evaluationTestEnv) seedSecretary(id string) {
	env.users.Create(context.Background(), &model.User{
		UserID: id, Username: id, DisplayName: "秘书" + id, Role: model.RoleCouncilSecretary,
	})
}

func (env *evaluationTestEnv) seedCouncilProposal() {
	env.proposals.put(&model.Proposal{
		ProposalID: "prop-1", Code: "DA-2026-001", Title: "课题",
		OwnerID: "user-owner", FacultyID: "fac-1", State: "OUTLINE_COUNCIL_REVIEW",
		VersionedModel: model.VersionedModel{Version: 1},
	})
}

func TestEvaluationGet_InvalidStage(t *testing.T) {
	env := setupTestEvaluationService(t)

	_, err := env.svc.Get(context.Background(), "prop-1", "NOT_A_STAGE")
	if !errors.Is(err, ErrEvaluationStageInvalid) {
		t.Errorf("期望 ErrEvaluationStageInvalid，实际 %v", err)
	}
}

func TestEvaluationSaveDraft(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.evals.Create(context.Background(), &model.Evaluation{
		ProposalID: "prop-1", Stage: "OUTLINE_COUNCIL_REVIEW", SecretaryID: "user-secr",
	})

	resp, err := env.svc.SaveDraft(context.Background(), "prop-1", "OUTLINE_COUNCIL_REVIEW",
		&dto.SaveEvaluationRequest{Conclusion: "初步同意开题"}, "user-secr")
	if err != nil {
		t.Fatalf("SaveDraft 应成功，但返回错误: %v", err)
	}
	if resp.Conclusion == nil || *resp.Conclusion != "初步同意开题" {
		t.Errorf("结论未保存，实际 %v", resp.Conclusion)
	}
	if resp.Finalized {
		t.Error("保存草稿不应定稿")
	}
}

func TestEvaluationSaveDraft_OnlyAssignedSecretary(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.evals.Create(context.Background(), &model.Evaluation{
		ProposalID: "prop-1", Stage: "OUTLINE_COUNCIL_REVIEW", SecretaryID: "user-secr",
	})

	_, err := env.svc.SaveDraft(context.Background(), "prop-1", "OUTLINE_COUNCIL_REVIEW",
		&dto.SaveEvaluationRequest{Conclusion: "抢填"}, "user-other")
	if !errors.Is(err, ErrNotAssignedSecretary) {
		t.Errorf("期望 ErrNotAssignedSecretary，实际 %v", err)
	}
}

func TestEvaluationSaveDraft_FinalizedIsImmutable(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.evals.Create(context.Background(), &model.Evaluation{
		ProposalID: "prop-1", Stage: "OUTLINE_COUNCIL_REVIEW", SecretaryID: "user-secr",
		Finalized: true,
	})

	_, err := env.svc.SaveDraft(context.Background(), "prop-1", "OUTLINE_COUNCIL_REVIEW",
		&dto.SaveEvaluationRequest{Conclusion: "改结论"}, "user-secr")
	if !errors.Is(err, ErrEvaluationFinalized) {
		t.Errorf("期望 ErrEvaluationFinalized，实际 %v", err)
	}
}

func TestEvaluationAssignSecretary_CreatesAndSyncsHolder(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.seedSecretary("user-secr")
	env.seedCouncilProposal()

	resp, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-secr"}, "user-sci")
	if err != nil {
		t.Fatalf("AssignSecretary 应成功，但返回错误: %v", err)
	}
	if resp.SecretaryID != "user-secr" {
		t.Errorf("期望秘书 user-secr，实际 %s", resp.SecretaryID)
	}

	p, err := env.proposals.GetByID(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("查询提案失败: %v", err)
	}
	if p.HolderUser == nil || *p.HolderUser != "user-secr" {
		t.Errorf("指派后提案持有人应同步为秘书，实际 %v", p.HolderUser)
	}
}

func TestEvaluationAssignSecretary_Reassign(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.seedSecretary("user-secr")
	env.seedSecretary("user-secr2")
	env.seedCouncilProposal()

	if _, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-secr"}, "user-sci"); err != nil {
		t.Fatalf("首次指派失败: %v", err)
	}
	resp, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-secr2"}, "user-sci")
	if err != nil {
		t.Fatalf("改派应成功，但返回错误: %v", err)
	}
	if resp.SecretaryID != "user-secr2" {
		t.Errorf("改派后秘书应为 user-secr2，实际 %s", resp.SecretaryID)
	}
}

func TestEvaluationAssignSecretary_RejectsWrongRole(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.users.Create(context.Background(), &model.User{
		UserID: "user-prof", Username: "prof", DisplayName: "普通教师", Role: "proposer",
	})
	env.seedCouncilProposal()

	_, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-prof"}, "user-sci")
	if !errors.Is(err, ErrSecretaryRoleInvalid) {
		t.Errorf("期望 ErrSecretaryRoleInvalid，实际 %v", err)
	}
}

func TestEvaluationAssignSecretary_RequiresCouncilStage(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.seedSecretary("user-secr")
	env.proposals.put(&model.Proposal{
		ProposalID: "prop-1", Code: "DA-2026-001", Title: "课题",
		OwnerID: "user-owner", FacultyID: "fac-1", State: "FACULTY_REVIEW",
		VersionedModel: model.VersionedModel{Version: 1},
	})

	_, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-secr"}, "user-sci")
	if !errors.Is(err, ErrProposalNotInCouncil) {
		t.Errorf("期望 ErrProposalNotInCouncil，实际 %v", err)
	}
}

func TestEvaluationAssignSecretary_FinalizedLocked(t *testing.T) {
	env := setupTestEvaluationService(t)
	env.seedSecretary("user-secr")
	env.seedSecretary("user-secr2")
	env.seedCouncilProposal()
	env.evals.Create(context.Background(), &model.Evaluation{
		ProposalID: "prop-1", Stage: "OUTLINE_COUNCIL_REVIEW", SecretaryID: "user-secr",
		Finalized: true,
	})

	_, err := env.svc.AssignSecretary(context.Background(), "prop-1",
		&dto.AssignSecretaryRequest{SecretaryID: "user-secr2"}, "user-sci")
	if !errors.Is(err, ErrEvaluationFinalized) {
		t.Errorf("定稿后改派应被拒绝，期望 ErrEvaluationFinalized，实际 %v", err)
	}
}

// [自证通过] internal/service/evaluation_service_test.go
