// Package kanban turns board drag and drop into task store moves and groups
// tasks into columns for display.
package kanban

import (
	"strings"

	"somadev/internal/domain"
)

// MoveTask is the command emitted when a card is dropped on a column.
type MoveTask struct {
	TaskID       string            `json:"task_id"`
	TargetStatus domain.TaskStatus `json:"target_status" enum:"backlog,todo,in_progress,review,done"`
}

// Mover is the part of the task store a board writes through.
type Mover interface {
	List() []domain.Task
	Move(id string, status domain.TaskStatus) bool
}

type Column struct {
	Status domain.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Tasks  []domain.Task     `json:"tasks"`
}

var columnTitles = map[domain.TaskStatus]string{
	domain.TaskBacklog:    "Backlog",
	domain.TaskTodo:       "A Fazer",
	domain.TaskInProgress: "Em Progresso",
	domain.TaskReview:     "Revisão",
	domain.TaskDone:       "Concluído",
}

// ColumnTitle returns the display title for status.
func ColumnTitle(s domain.TaskStatus) string { return columnTitles[s] }

// Filter narrows the cards shown. Zero values match everything.
// Search is a case-insensitive substring of the title or description.
type Filter struct {
	Search   string
	Assignee domain.AgentType
}

func (f Filter) Match(t domain.Task) bool {
	if f.Assignee != "" && (t.Assignee == nil || *t.Assignee != f.Assignee) {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

type Summary struct {
	Total    int                       `json:"total"`
	ByStatus map[domain.TaskStatus]int `json:"by_status"`
}

type Board struct {
	tasks Mover
}

func NewBoard(tasks Mover) *Board {
	return &Board{tasks: tasks}
}

// Dispatch applies cmd. There is no check that the card actually changes
// column; dropping on its own column still rewrites status and updated_at.
// It reports whether a task was moved.
func (b *Board) Dispatch(cmd MoveTask) bool {
	if cmd.TaskID == "" {
		return false
	}
	return b.tasks.Move(cmd.TaskID, cmd.TargetStatus)
}

// Columns groups the tasks matching f by status, in board order. Tasks with
// a status outside the board are not shown.
func (b *Board) Columns(f Filter) []Column {
	cols := make([]Column, len(domain.TaskStatuses))
	idx := make(map[domain.TaskStatus]int, len(cols))
	for i, s := range domain.TaskStatuses {
		cols[i] = Column{Status: s, Title: columnTitles[s], Tasks: []domain.Task{}}
		idx[s] = i
	}
	for _, t := range b.tasks.List() {
		i, ok := idx[t.Status]
		if !ok || !f.Match(t) {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	return cols
}

func (b *Board) Summary() Summary {
	s := Summary{ByStatus: make(map[domain.TaskStatus]int, len(domain.TaskStatuses))}
	for _, st := range domain.TaskStatuses {
		s.ByStatus[st] = 0
	}
	for _, t := range b.tasks.List() {
		s.Total++
		s.ByStatus[t.Status]++
	}
	return s
}
