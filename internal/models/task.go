package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the accepted values in the order a picker offers them.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, bool) {
	p := Priority(s)
	return p, p.Valid()
}

type Task struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// TaskUpdate enumerates the mutable fields of a Task. A nil field is left as is.
type TaskUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// Apply returns t with the supplied fields of u merged over it. The ID never changes.
func (u TaskUpdate) Apply(t Task) Task {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	return t
}

// StorageEntry is one row of the sqlite key-value table.
type StorageEntry struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}
