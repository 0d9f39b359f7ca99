package model

import (
	"encoding/json"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPatch carries a partial update. Nil fields are left untouched by the
// store. The due date is tri-state: absent, set to a value, or set to null
// (clearing it), so its presence is tracked separately from its value.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`

	dueDate    *time.Time
	hasDueDate bool
}

// SetDueDate marks the due date as part of the patch; nil clears it.
func (p *TaskPatch) SetDueDate(t *time.Time) {
	p.dueDate = t
	p.hasDueDate = true
}

// DueDate reports whether the patch touches the due date and its new value;
// a nil value with ok=true means the due date is being cleared.
func (p TaskPatch) DueDate() (*time.Time, bool) {
	return p.dueDate, p.hasDueDate
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type patchAlias struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Priority    *string    `json:"priority"`
		Status      *string    `json:"status"`
		DueDate     *time.Time `json:"due_date"`
		Category    *string    `json:"category"`
	}

	var a patchAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	// A null due date decodes to the same nil pointer as an absent one, so
	// key presence has to be checked against the raw object.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	p.Title = a.Title
	p.Description = a.Description
	p.Priority = a.Priority
	p.Status = a.Status
	p.Category = a.Category
	if _, ok := keys["due_date"]; ok {
		p.SetDueDate(a.DueDate)
	}
	return nil
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.Category == nil && !p.hasDueDate
}

// TaskPage is one page of an owner's tasks, newest first. NextCursor is empty
// on the last page; otherwise it is fed back verbatim to fetch the next page.
type TaskPage struct {
	Items      []Task `json:"tasks"`
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}
