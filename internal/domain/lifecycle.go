package domain

import "time"

// Lifecycle - логическое состояние удаляемой сущности
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleDeleted Lifecycle = "deleted"
)

func LifecycleOf(deletedAt *time.Time) Lifecycle {
	if deletedAt != nil {
		return LifecycleDeleted
	}
	return LifecycleActive
}

func (l Lifecycle) IsActive() bool {
	return l == LifecycleActive
}
