package domain

import "time"

type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentBusy    AgentStatus = "busy"
	AgentOffline AgentStatus = "offline"
	AgentError   AgentStatus = "error"
)

// AgentType names an agent persona. Orchestrator is the coordinating persona
// that answers in the chat.
type AgentType string

const (
	AgentArch     AgentType = "@SomaArch"
	AgentFront    AgentType = "@SomaFront"
	AgentBack     AgentType = "@SomaBack"
	AgentQA       AgentType = "@SomaQA"
	AgentOps      AgentType = "@SomaOps"
	AgentDesign   AgentType = "@SomaDesign"
	AgentDB       AgentType = "@SomaDB"
	AgentSecurity AgentType = "@SomaSecurity"
	AgentTest     AgentType = "@SomaTest"
	AgentDeploy   AgentType = "@SomaDeploy"
	AgentMonitor  AgentType = "@SomaMonitor"
	AgentDocs     AgentType = "@SomaDocs"
	AgentAPI      AgentType = "@SomaAPI"
	Orchestrator  AgentType = "SARA"
)

type Agent struct {
	ID             string      `json:"id" yaml:"id"`
	Type           AgentType   `json:"type" yaml:"type"`
	Name           string      `json:"name" yaml:"name"`
	Description    string      `json:"description" yaml:"description"`
	Status         AgentStatus `json:"status" yaml:"status" enum:"online,busy,offline,error"`
	CurrentTask    *string     `json:"current_task,omitempty" yaml:"current_task,omitempty"`
	LastActive     time.Time   `json:"last_active" yaml:"-"`
	TasksCompleted int         `json:"tasks_completed" yaml:"tasks_completed"`
	Color          string      `json:"color" yaml:"color"`
}

type ProjectStatus string

const (
	ProjectDraft       ProjectStatus = "draft"
	ProjectPlanning    ProjectStatus = "planning"
	ProjectDevelopment ProjectStatus = "development"
	ProjectTesting     ProjectStatus = "testing"
	ProjectDeployed    ProjectStatus = "deployed"
	ProjectArchived    ProjectStatus = "archived"
)

type ProjectType string

const (
	ProjectWebapp       ProjectType = "webapp"
	ProjectMobile       ProjectType = "mobile"
	ProjectAPI          ProjectType = "api"
	ProjectDesktop      ProjectType = "desktop"
	ProjectMicroservice ProjectType = "microservice"
)

type TechStack struct {
	Frontend string `json:"frontend,omitempty" yaml:"frontend,omitempty"`
	Backend  string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Hosting  string `json:"hosting,omitempty" yaml:"hosting,omitempty"`
	Styling  string `json:"styling,omitempty" yaml:"styling,omitempty"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
}

type Project struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	Type          ProjectType   `json:"type" yaml:"type" enum:"webapp,mobile,api,desktop,microservice"`
	Status        ProjectStatus `json:"status" yaml:"status" enum:"draft,planning,development,testing,deployed,archived"`
	CreatedAt     time.Time     `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time     `json:"updated_at" yaml:"-"`
	Stack         TechStack     `json:"stack" yaml:"stack"`
	TaskIDs       []string      `json:"task_ids" yaml:"task_ids"`
	Agents        []AgentType   `json:"agents" yaml:"agents"`
	PreviewURL    *string       `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
	ProductionURL *string       `json:"production_url,omitempty" yaml:"production_url,omitempty"`
}

type TaskStatus string

// Board order, left to right.
const (
	TaskBacklog    TaskStatus = "backlog"
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{TaskBacklog, TaskTodo, TaskInProgress, TaskReview, TaskDone}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

type Task struct {
	ID             string       `json:"id" yaml:"id"`
	ProjectID      string       `json:"project_id" yaml:"project_id"`
	Title          string       `json:"title" yaml:"title"`
	Description    string       `json:"description" yaml:"description"`
	Status         TaskStatus   `json:"status" yaml:"status" enum:"backlog,todo,in_progress,review,done"`
	Priority       TaskPriority `json:"priority" yaml:"priority" enum:"low,medium,high,critical"`
	Assignee       *AgentType   `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedAt      time.Time    `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"-"`
	DueDate        *time.Time   `json:"due_date,omitempty" yaml:"-"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	ActualHours    *float64     `json:"actual_hours,omitempty" yaml:"actual_hours,omitempty"`
	Tags           []string     `json:"tags" yaml:"tags"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

type ChatMessage struct {
	ID        string     `json:"id" yaml:"id"`
	Role      ChatRole   `json:"role" yaml:"role" enum:"user,assistant,system"`
	Content   string     `json:"content" yaml:"content"`
	Timestamp time.Time  `json:"timestamp" yaml:"-"`
	Agent     *AgentType `json:"agent,omitempty" yaml:"agent,omitempty"`
}

type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarn    LogLevel = "warn"
	LevelError   LogLevel = "error"
	LevelSuccess LogLevel = "success"
	LevelDebug   LogLevel = "debug"
)

type LogEntry struct {
	ID        string     `json:"id" yaml:"id"`
	Timestamp time.Time  `json:"timestamp" yaml:"-"`
	Level     LogLevel   `json:"level" yaml:"level" enum:"info,warn,error,success,debug"`
	Message   string     `json:"message" yaml:"message"`
	Agent     *AgentType `json:"agent,omitempty" yaml:"agent,omitempty"`
	ProjectID *string    `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	TaskID    *string    `json:"task_id,omitempty" yaml:"task_id,omitempty"`
}

type NodeType string

const (
	NodeScreen    NodeType = "screen"
	NodeComponent NodeType = "component"
	NodeAPI       NodeType = "api"
	NodeDatabase  NodeType = "database"
	NodeLogic     NodeType = "logic"
	NodeStart     NodeType = "start"
	NodeEnd       NodeType = "end"
)

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type NodeData struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty"`
	Route       string `json:"route,omitempty" yaml:"route,omitempty"`
}

type CanvasNode struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type" enum:"screen,component,api,database,logic,start,end"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

type CanvasEdge struct {
	ID       string `json:"id" yaml:"id"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Animated bool   `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// CanvasData is a directed graph; no cycle or connectivity rule applies.
type CanvasData struct {
	Nodes []CanvasNode `json:"nodes" yaml:"nodes"`
	Edges []CanvasEdge `json:"edges" yaml:"edges"`
}

type DashboardStats struct {
	TotalProjects       int     `json:"total_projects" yaml:"total_projects"`
	ActiveAgents        int     `json:"active_agents" yaml:"active_agents"`
	TasksCompleted      int     `json:"tasks_completed" yaml:"tasks_completed"`
	DeploymentsThisWeek int     `json:"deployments_this_week" yaml:"deployments_this_week"`
	AverageBuildTime    float64 `json:"average_build_time" yaml:"average_build_time"`
	SuccessRate         float64 `json:"success_rate" yaml:"success_rate"`
}

type DeploymentStatus string

const (
	DeployPending   DeploymentStatus = "pending"
	DeployBuilding  DeploymentStatus = "building"
	DeployDeploying DeploymentStatus = "deploying"
	DeployLive      DeploymentStatus = "live"
	DeployFailed    DeploymentStatus = "failed"
	DeployStopped   DeploymentStatus = "stopped"
)

type Deployment struct {
	ID          string           `json:"id" yaml:"id"`
	ProjectID   string           `json:"project_id" yaml:"project_id"`
	Environment string           `json:"environment" yaml:"environment" enum:"preview,production"`
	Status      DeploymentStatus `json:"status" yaml:"status" enum:"pending,building,deploying,live,failed,stopped"`
	URL         string           `json:"url" yaml:"url"`
	CreatedAt   time.Time        `json:"created_at" yaml:"-"`
	BuildTime   int              `json:"build_time" yaml:"build_time"`
	BundleSize  float64          `json:"bundle_size" yaml:"bundle_size"`
}

// View identifies a dashboard panel.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewCanvas    View = "canvas"
	ViewChat      View = "chat"
	ViewKanban    View = "kanban"
	ViewAgents    View = "agents"
	ViewDeploy    View = "deploy"
	ViewSettings  View = "settings"
	ViewLogs      View = "logs"
)

// Views lists the known panels in sidebar order.
var Views = []View{ViewDashboard, ViewCanvas, ViewChat, ViewKanban, ViewAgents, ViewDeploy, ViewLogs, ViewSettings}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
