package models

// FilterAll matches every value of a filter dimension.
const FilterAll = "all"

// TaskFilter is the current filter selection. Zero values mean "all".
type TaskFilter struct {
	Priority string `json:"priority" yaml:"priority"`
	Status   string `json:"status" yaml:"status"`
	Category string `json:"category" yaml:"category"`
	Search   string `json:"search" yaml:"search"`
}

func (f TaskFilter) normalized(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

func (f TaskFilter) WantPriority() string { return f.normalized(f.Priority) }
func (f TaskFilter) WantStatus() string   { return f.normalized(f.Status) }
func (f TaskFilter) WantCategory() string { return f.normalized(f.Category) }

type SortField string

const (
	SortByDueDate  SortField = "due_date"
	SortByPriority SortField = "priority"
	SortByCreated  SortField = "created_at"
	SortByTitle    SortField = "title"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)
