package workflow

import (
	"testing"

	"github.com/cioer/DoAn-sub004/config"
)

func testRules() Rules {
	return NewRules(&config.WorkflowConfig{
		SLADays: map[string]int{
			"FACULTY_REVIEW":          5,
			"SCHOOL_SELECTION_REVIEW": 7,
			"OUTLINE_COUNCIL_REVIEW":  10,
		},
		PausableStates: []string{
			"FACULTY_REVIEW",
			"SCHOOL_SELECTION_REVIEW",
			"OUTLINE_COUNCIL_REVIEW",
			"IN_PROGRESS",
		},
		ScienceOfficeUnitID: "unit-science-office",
	})
}

func newTestValidator() *Validator {
	return NewValidator(testRules())
}

// ── 正常路径 ──

func TestValidate_SubmitDraft(t *testing.T) {
	v := newTestValidator()

	d := v.Validate(
		ProposalView{State: StateDraft, OwnerID: "u1"},
		ActionSubmit,
		Actor{ID: "u1", Role: "proposer"},
		Payload{},
		EvaluationView{},
	)

	if !d.Allowed() {
		t.Fatalf("草稿提交应放行，实际拒绝: %+v", d.Denial)
	}
	if d.Target != StateFacultyReview {
		t.Errorf("期望目标 FACULTY_REVIEW，实际 %s", d.Target)
	}
}

func TestValidate_AcceptCompleteFlag(t *testing.T) {
	v := newTestValidator()
	p := ProposalView{State: StateSchoolAcceptanceReview, OwnerID: "u1"}
	actor := Actor{ID: "sci-1", Role: "science_office"}

	d := v.Validate(p, ActionAccept, actor, Payload{}, EvaluationView{})
	if !d.Allowed() || d.Target != StateHandover {
		t.Errorf("默认期望 HANDOVER，实际 %+v", d)
	}

	d = v.Validate(p, ActionAccept, actor, Payload{Complete: true}, EvaluationView{})
	if !d.Allowed() || d.Target != StateCompleted {
		t.Errorf("Complete=true 期望 COMPLETED，实际 %+v", d)
	}
}

// ── 确定性 ──

func TestValidate_Deterministic(t *testing.T) {
	v := newTestValidator()
	p := ProposalView{State: StateFacultyReview, OwnerID: "u1"}
	actor := Actor{ID: "mgr-1", Role: "faculty_manager"}
	payload := Payload{ReasonCode: "R01"}

	first := v.Validate(p, ActionReturn, actor, payload, EvaluationView{})
	for i := 0; i < 10; i++ {
		again := v.Validate(p, ActionReturn, actor, payload, EvaluationView{})
		if first.Allowed() != again.Allowed() {
			t.Fatal("同样输入的校验结果不一致")
		}
		if !first.Allowed() && first.Denial.Code != again.Denial.Code {
			t.Fatalf("同样输入的拒绝码不一致: %s vs %s", first.Denial.Code, again.Denial.Code)
		}
	}
}

// ── 拒绝优先级 ──

func TestValidate_DenialPriority(t *testing.T) {
	v := newTestValidator()

	// 状态不匹配时，即使角色也不对，仍返回 INVALID_STATE
	d := v.Validate(
		ProposalView{State: StateRejected, OwnerID: "u1"},
		ActionApprove,
		Actor{ID: "u9", Role: "proposer"},
		Payload{},
		EvaluationView{},
	)
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("终态期望 INVALID_STATE，实际 %+v", d)
	}

	// 状态匹配、角色不对、载荷也缺失：角色优先
	d = v.Validate(
		ProposalView{State: StateFacultyReview, OwnerID: "u1"},
		ActionReturn,
		Actor{ID: "u1", Role: "proposer"},
		Payload{},
		EvaluationView{},
	)
	if d.Allowed() || d.Denial.Code != CodeForbidden {
		t.Errorf("角色不符期望 FORBIDDEN，实际 %+v", d)
	}

	// 角色对、非本人：归属优先于载荷
	d = v.Validate(
		ProposalView{State: StateDraft, OwnerID: "u1"},
		ActionSubmit,
		Actor{ID: "u2", Role: "proposer"},
		Payload{},
		EvaluationView{},
	)
	if d.Allowed() || d.Denial.Code != CodeNotOwner {
		t.Errorf("非本人期望 NOT_OWNER，实际 %+v", d)
	}
}

func TestValidate_ReturnPayloadChecks(t *testing.T) {
	v := newTestValidator()
	p := ProposalView{State: StateFacultyReview, OwnerID: "u1"}
	actor := Actor{ID: "mgr-1", Role: "faculty_manager"}

	d := v.Validate(p, ActionReturn, actor, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeMissingReason {
		t.Errorf("缺原因代码期望 MISSING_REASON，实际 %+v", d)
	}

	d = v.Validate(p, ActionReturn, actor, Payload{ReasonCode: "R01"}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeIncompleteForm {
		t.Errorf("未标记章节期望 INCOMPLETE_FORM，实际 %+v", d)
	}

	d = v.Validate(p, ActionReturn, actor, Payload{ReasonCode: "R01", FlaggedSections: []string{"预算"}}, EvaluationView{})
	if !d.Allowed() || d.Target != StateChangesRequested {
		t.Errorf("完整载荷应放行到 CHANGES_REQUESTED，实际 %+v", d)
	}
}

// ── 开题评议 ──

func TestValidate_SubmitEvaluation(t *testing.T) {
	v := newTestValidator()
	p := ProposalView{State: StateOutlineCouncilReview, OwnerID: "u1", HolderUser: "sec-1"}
	secretary := Actor{ID: "sec-1", Role: "council_secretary"}

	// 非被指派秘书
	d := v.Validate(p, ActionSubmitEvaluation, Actor{ID: "sec-2", Role: "council_secretary"}, Payload{},
		EvaluationView{Exists: true, SecretaryID: "sec-1", ConclusionFilled: true})
	if d.Allowed() || d.Denial.Code != CodeNotAssignedEvaluator {
		t.Errorf("期望 NOT_ASSIGNED_EVALUATOR，实际 %+v", d)
	}

	// 已定稿：优先于表单完整性
	d = v.Validate(p, ActionSubmitEvaluation, secretary, Payload{},
		EvaluationView{Exists: true, SecretaryID: "sec-1", Finalized: true})
	if d.Allowed() || d.Denial.Code != CodeEvaluationAlreadyFinalized {
		t.Errorf("期望 EVALUATION_ALREADY_FINALIZED，实际 %+v", d)
	}

	// 结论未填写
	d = v.Validate(p, ActionSubmitEvaluation, secretary, Payload{},
		EvaluationView{Exists: true, SecretaryID: "sec-1"})
	if d.Allowed() || d.Denial.Code != CodeIncompleteForm {
		t.Errorf("期望 INCOMPLETE_FORM，实际 %+v", d)
	}

	// 正常提交：自环
	d = v.Validate(p, ActionSubmitEvaluation, secretary, Payload{},
		EvaluationView{Exists: true, SecretaryID: "sec-1", ConclusionFilled: true})
	if !d.Allowed() || d.Target != StateOutlineCouncilReview {
		t.Errorf("定稿应放行且状态不变，实际 %+v", d)
	}
}

func TestValidate_ApproveRequiresFinalizedEvaluation(t *testing.T) {
	v := newTestValidator()
	p := ProposalView{State: StateOutlineCouncilReview, OwnerID: "u1"}
	leader := Actor{ID: "lead-1", Role: "leadership"}

	d := v.Validate(p, ActionApprove, leader, Payload{}, EvaluationView{Exists: true, ConclusionFilled: true})
	if d.Allowed() || d.Denial.Code != CodeIncompleteForm {
		t.Errorf("结论未定稿期望 INCOMPLETE_FORM，实际 %+v", d)
	}

	d = v.Validate(p, ActionApprove, leader, Payload{}, EvaluationView{Exists: true, Finalized: true})
	if !d.Allowed() || d.Target != StateApproved {
		t.Errorf("定稿后批准应放行，实际 %+v", d)
	}
}

// ── 撤回 / 取消 ──

func TestValidate_Withdraw(t *testing.T) {
	v := newTestValidator()
	owner := Actor{ID: "u1", Role: "proposer"}

	for _, state := range []State{StateFacultyReview, StateSchoolSelectionReview, StateOutlineCouncilReview, StateChangesRequested} {
		d := v.Validate(ProposalView{State: state, OwnerID: "u1"}, ActionWithdraw, owner, Payload{}, EvaluationView{})
		if !d.Allowed() || d.Target != StateWithdrawn {
			t.Errorf("%s 撤回应放行，实际 %+v", state, d)
		}
	}

	// 批准后不可撤回
	d := v.Validate(ProposalView{State: StateInProgress, OwnerID: "u1"}, ActionWithdraw, owner, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("执行中撤回期望 INVALID_STATE，实际 %+v", d)
	}

	// 非本人
	d = v.Validate(ProposalView{State: StateFacultyReview, OwnerID: "u1"}, ActionWithdraw, Actor{ID: "u2", Role: "proposer"}, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeNotOwner {
		t.Errorf("非本人撤回期望 NOT_OWNER，实际 %+v", d)
	}
}

// ── 暂停 / 恢复 ──

func TestValidate_PauseResume(t *testing.T) {
	v := newTestValidator()
	sci := Actor{ID: "sci-1", Role: "science_office"}

	d := v.Validate(ProposalView{State: StateFacultyReview, OwnerID: "u1"}, ActionPause, sci, Payload{}, EvaluationView{})
	if !d.Allowed() || d.Target != StatePaused {
		t.Errorf("可暂停状态应放行，实际 %+v", d)
	}

	// 草稿不可暂停
	d = v.Validate(ProposalView{State: StateDraft, OwnerID: "u1"}, ActionPause, sci, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("草稿暂停期望 INVALID_STATE，实际 %+v", d)
	}

	// 配置外的状态不可暂停
	d = v.Validate(ProposalView{State: StateApproved, OwnerID: "u1"}, ActionPause, sci, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("配置外状态暂停期望 INVALID_STATE，实际 %+v", d)
	}

	// 角色不允许
	d = v.Validate(ProposalView{State: StateFacultyReview, OwnerID: "u1"}, ActionPause, Actor{ID: "u1", Role: "proposer"}, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeForbidden {
		t.Errorf("申请人暂停期望 FORBIDDEN，实际 %+v", d)
	}

	// 恢复回到暂停前状态
	d = v.Validate(ProposalView{State: StatePaused, OwnerID: "u1", PrePauseState: StateOutlineCouncilReview}, ActionResume, sci, Payload{}, EvaluationView{})
	if !d.Allowed() || d.Target != StateOutlineCouncilReview {
		t.Errorf("恢复应回到暂停前状态，实际 %+v", d)
	}

	// 非暂停状态不可恢复
	d = v.Validate(ProposalView{State: StateFacultyReview, OwnerID: "u1"}, ActionResume, sci, Payload{}, EvaluationView{})
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("非暂停恢复期望 INVALID_STATE，实际 %+v", d)
	}
}

// ── 重新提交 ──

func TestValidate_Resubmit(t *testing.T) {
	v := newTestValidator()
	owner := Actor{ID: "u1", Role: "proposer"}

	// 回到发出退回的那个状态
	d := v.Validate(
		ProposalView{State: StateChangesRequested, OwnerID: "u1", ReturnedFrom: StateSchoolSelectionReview},
		ActionResubmit, owner, Payload{}, EvaluationView{},
	)
	if !d.Allowed() || d.Target != StateSchoolSelectionReview {
		t.Errorf("重新提交应回到 SCHOOL_SELECTION_REVIEW，实际 %+v", d)
	}

	d = v.Validate(
		ProposalView{State: StateChangesRequested, OwnerID: "u1", ReturnedFrom: StateSchoolSelectionReview},
		ActionResubmit, Actor{ID: "u2", Role: "proposer"}, Payload{}, EvaluationView{},
	)
	if d.Allowed() || d.Denial.Code != CodeNotOwner {
		t.Errorf("非本人重新提交期望 NOT_OWNER，实际 %+v", d)
	}

	d = v.Validate(
		ProposalView{State: StateFacultyReview, OwnerID: "u1"},
		ActionResubmit, owner, Payload{}, EvaluationView{},
	)
	if d.Allowed() || d.Denial.Code != CodeInvalidState {
		t.Errorf("非退回状态重新提交期望 INVALID_STATE，实际 %+v", d)
	}
}

// ── 终态封闭 ──

func TestValidate_TerminalStatesClosed(t *testing.T) {
	v := newTestValidator()
	admin := Actor{ID: "a1", Role: "admin"}

	terminals := []State{StateHandover, StateCompleted, StateRejected, StateWithdrawn, StateCancelled}
	actions := []Action{ActionSubmit, ActionApprove, ActionReturn, ActionReject, ActionPause, ActionResume, ActionAccept, ActionStart, ActionResubmit}

	for _, state := range terminals {
		for _, action := range actions {
			d := v.Validate(ProposalView{State: state, OwnerID: "u1"}, action, admin, Payload{ReasonCode: "R01"}, EvaluationView{})
			if d.Allowed() {
				t.Errorf("终态 %s 不应允许动作 %s", state, action)
			}
		}
	}
}

// [自证通过] internal/workflow/validator_test.go
