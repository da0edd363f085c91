package server

import (
	"strings"
	"time"

	"somadev/internal/canvas"
	"somadev/internal/domain"
	"somadev/internal/kanban"
	"somadev/internal/router"
)

type CreateProjectRequest struct {
	ID            string               `json:"id,omitempty"`
	Name          string               `json:"name" minLength:"1"`
	Description   string               `json:"description,omitempty"`
	Type          domain.ProjectType   `json:"type,omitempty" enum:"webapp,mobile,api,desktop,microservice"`
	Status        domain.ProjectStatus `json:"status,omitempty" enum:"draft,planning,development,testing,deployed,archived"`
	Stack         domain.TechStack     `json:"stack,omitempty"`
	Agents        []domain.AgentType   `json:"agents,omitempty"`
	PreviewURL    *string              `json:"preview_url,omitempty"`
	ProductionURL *string              `json:"production_url,omitempty"`
}

func (r CreateProjectRequest) project(id string, now time.Time) domain.Project {
	p := domain.Project{
		ID:            id,
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		Type:          r.Type,
		Status:        r.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
		Stack:         r.Stack,
		TaskIDs:       []string{},
		Agents:        append([]domain.AgentType{}, r.Agents...),
		PreviewURL:    r.PreviewURL,
		ProductionURL: r.ProductionURL,
	}
	if p.Type == "" {
		p.Type = domain.ProjectWebapp
	}
	if p.Status == "" {
		p.Status = domain.ProjectDraft
	}
	return p
}

type CreateTaskRequest struct {
	ID             string              `json:"id,omitempty"`
	ProjectID      string              `json:"project_id,omitempty"`
	Title          string              `json:"title" minLength:"1"`
	Description    string              `json:"description,omitempty"`
	Status         domain.TaskStatus   `json:"status,omitempty" enum:"backlog,todo,in_progress,review,done"`
	Priority       domain.TaskPriority `json:"priority,omitempty" enum:"low,medium,high,critical"`
	Assignee       *domain.AgentType   `json:"assignee,omitempty"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	EstimatedHours *float64            `json:"estimated_hours,omitempty"`
	Tags           []string            `json:"tags,omitempty"`
}

func (r CreateTaskRequest) task(id string, now time.Time) domain.Task {
	t := domain.Task{
		ID:             id,
		ProjectID:      r.ProjectID,
		Title:          strings.TrimSpace(r.Title),
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		Assignee:       r.Assignee,
		CreatedAt:      now,
		UpdatedAt:      now,
		DueDate:        r.DueDate,
		EstimatedHours: r.EstimatedHours,
		Tags:           append([]string{}, r.Tags...),
	}
	if t.Status == "" {
		t.Status = domain.TaskBacklog
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	return t
}

type AgentStatusRequest struct {
	Status      domain.AgentStatus `json:"status" enum:"online,busy,offline,error"`
	CurrentTask *string            `json:"current_task,omitempty"`
}

type SelectionRequest struct {
	ID string `json:"id" doc:"Entity to select; empty clears the selection"`
}

type MoveRequest struct {
	Status domain.TaskStatus `json:"status" enum:"backlog,todo,in_progress,review,done"`
}

type AgentsMutation struct {
	Matched bool           `json:"matched"`
	Agents  []domain.Agent `json:"agents"`
}

type ProjectsMutation struct {
	Matched  bool             `json:"matched"`
	Projects []domain.Project `json:"projects"`
}

type TasksMutation struct {
	Matched bool          `json:"matched"`
	Tasks   []domain.Task `json:"tasks"`
}

type CanvasMutation struct {
	Matched bool              `json:"matched"`
	Canvas  domain.CanvasData `json:"canvas"`
}

type AgentSummaryResponse struct {
	Total    int                        `json:"total"`
	ByStatus map[domain.AgentStatus]int `json:"by_status"`
}

type BoardResponse struct {
	Columns []kanban.Column `json:"columns"`
	Summary kanban.Summary  `json:"summary"`
}

type ChatRequest struct {
	Content string `json:"content"`
}

type ChatResponse struct {
	Accepted bool                 `json:"accepted"`
	Typing   bool                 `json:"typing"`
	Messages []domain.ChatMessage `json:"messages"`
}

type TypingRequest struct {
	Typing bool `json:"typing"`
}

type AppendLogRequest struct {
	Level     domain.LogLevel   `json:"level" enum:"info,warn,error,success,debug"`
	Message   string            `json:"message" minLength:"1"`
	Agent     *domain.AgentType `json:"agent,omitempty"`
	ProjectID *string           `json:"project_id,omitempty"`
	TaskID    *string           `json:"task_id,omitempty"`
}

type CanvasResponse struct {
	Nodes        []domain.CanvasNode `json:"nodes"`
	Edges        []domain.CanvasEdge `json:"edges"`
	SelectedNode string              `json:"selected_node,omitempty"`
	Syncing      bool                `json:"syncing"`
}

type AddNodeRequest struct {
	ID       string          `json:"id,omitempty"`
	Type     domain.NodeType `json:"type" enum:"screen,component,api,database,logic,start,end"`
	Position domain.Position `json:"position"`
	Data     domain.NodeData `json:"data"`
}

type SyncingRequest struct {
	Syncing bool `json:"syncing"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Started bool            `json:"started"`
	State   canvas.Snapshot `json:"state"`
}

type UIResponse struct {
	router.State
	Rendered        domain.View      `json:"rendered"`
	SelectedAgent   *domain.Agent    `json:"selected_agent,omitempty"`
	SelectedProject *domain.Project  `json:"selected_project,omitempty"`
	Nav             []router.NavItem `json:"nav"`
}

type UIRequest struct {
	View          *domain.View `json:"view,omitempty"`
	SidebarOpen   *bool        `json:"sidebar_open,omitempty"`
	ToggleSidebar bool         `json:"toggle_sidebar,omitempty"`
}

type MeResponse struct {
	Subject string `json:"subject"`
	Source  string `json:"source"`
}
