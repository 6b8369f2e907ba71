package enum

// ConditionRole buy, sell, ignored
type ConditionRole uint8

const (
	ConditionRoleIgnored ConditionRole = iota
	ConditionRoleBuy
	ConditionRoleSell
)
