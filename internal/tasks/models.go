package tasks

// Priority is a free-form string at the storage layer. The three known
// values below are what clients offer.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Category  string   `json:"category"`
	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`
}

// NewTask is what the store needs to create a record; id and completed are
// always assigned by the store.
type NewTask struct {
	Text     string
	Category string
	Priority Priority
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Completed *bool
}

func (p Patch) Empty() bool {
	return p.Completed == nil
}
