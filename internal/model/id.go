package model

import (
	"strings"

	"github.com/google/uuid"
)

// ID identifies tasks, subtasks and notes. It is an opaque string compared
// by value only; the prefix exists for log readability.
type ID string

// NewID returns a fresh identifier such as "task_9f1c...".
func NewID(prefix string) ID {
	return ID(prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (id ID) String() string {
	return string(id)
}
