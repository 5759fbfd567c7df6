package types

import "time"

type ChangeAction string

const (
	ChangeActionNone   ChangeAction = "None"
	ChangeActionCreate ChangeAction = "Create"
	ChangeActionUpdate ChangeAction = "Update"
	ChangeActionFailed ChangeAction = "Failed"
)

func (changeAction ChangeAction) IsValidChangeAction() bool {
	switch changeAction {
	case ChangeActionNone,
		ChangeActionCreate,
		ChangeActionUpdate,
		ChangeActionFailed:
		return true
	default:
		return false
	}
}

// GroupChange records what happened to one security group during a run.
// Added and Removed are CIDR strings relative to the group's membership
// before the run.
type GroupChange struct {
	Dimension string       `json:"dimension"`
	Key       string       `json:"key"`
	GroupName string       `json:"group_name"`
	Action    ChangeAction `json:"action"`
	Added     []string     `json:"added,omitempty"`
	Removed   []string     `json:"removed,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type RunSummary struct {
	GeneratedAt time.Time     `json:"generated_at"`
	NetboxHost  string        `json:"netbox_host"`
	NsxHost     string        `json:"nsx_host"`
	Apply       bool          `json:"apply"`
	Changes     []GroupChange `json:"changes"`
}
