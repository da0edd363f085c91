package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"somadev/internal/app"
	"somadev/internal/canvas"
	"somadev/internal/domain"
	"somadev/internal/kanban"
	"somadev/internal/router"
	"somadev/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	App      *app.App
	BasePath string
	Auth     AuthConfig
	// AllowOrigins lists extra origin patterns accepted on the event feed.
	AllowOrigins []string
	// ChatLimiter throttles chat submissions; nil means unlimited.
	ChatLimiter *rate.Limiter
	Logger      *zap.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"task not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true" example:"{\"id\":\"42\"}"`
}

// apiError models the required error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the SomaDev API.
func New(cfg Config) (http.Handler, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the requested envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(newAuthMiddleware(basePath, cfg.Auth, log))
	hcfg := huma.DefaultConfig("SomaDev API", "0.3.5")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(r, hcfg)
	group := huma.NewGroup(api, basePath)

	a := cfg.App
	registerDocs(r, basePath)
	registerHealth(group)
	registerMe(group)
	registerAgents(group, a)
	registerProjects(group, a)
	registerTasks(group, a)
	registerKanban(group, a)
	registerChat(group, a, cfg.ChatLimiter)
	registerLogs(group, a)
	registerCanvas(group, a)
	registerStats(group, a)
	registerDeployments(group, a)
	registerUI(group, a)
	registerReset(group, a)
	registerFeed(r, basePath, a.Bus(), cfg.AllowOrigins, log)
	registerOpenAPI(r, api, basePath, cfg.Auth.enabled())

	return r, nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, canvas.ErrUnknownFile):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, canvas.ErrNoOutput):
		return newAPIError(http.StatusConflict, "not_generated", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func notFound(kind, id string) huma.StatusError {
	return newAPIError(http.StatusNotFound, "not_found", kind+" not found", map[string]any{"id": id})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, authEnabled bool) {
	// Built on first request, once every operation is registered.
	spec := sync.OnceValue(func() []byte {
		oas := api.OpenAPI()
		ensureDefaultErrorResponses(oas)
		if authEnabled {
			applyAuthSecurity(oas, basePath)
		}
		b, _ := json.Marshal(oas)
		return b
	})
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec())
	})
}

func operations(item *huma.PathItem) []*huma.Operation {
	return []*huma.Operation{
		item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
	}
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range operations(item) {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join("/", basePath, "health")
	for route, item := range oas.Paths {
		for _, op := range operations(item) {
			if op == nil {
				continue
			}
			if route == healthPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>SomaDev API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      When a JWT secret is configured, authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerMe(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current caller",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MeResponse `json:"body"`
	}, error) {
		p, _ := principalFromContext(ctx)
		return &struct {
			Body MeResponse `json:"body"`
		}{Body: MeResponse{Subject: p.Subject, Source: p.Source}}, nil
	})
}

func registerAgents(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-agents",
		Method:      http.MethodGet,
		Path:        "/agents",
		Summary:     "List agents",
	}, func(ctx context.Context, input *struct {
		Status string `query:"status" doc:"Only agents with this status"`
	}) (*struct {
		Body []domain.Agent `json:"body"`
	}, error) {
		items := a.State().Agents.List()
		if input.Status != "" {
			kept := items[:0]
			for _, ag := range items {
				if string(ag.Status) == input.Status {
					kept = append(kept, ag)
				}
			}
			items = kept
		}
		return &struct {
			Body []domain.Agent `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "agent-summary",
		Method:      http.MethodGet,
		Path:        "/agents/summary",
		Summary:     "Agent counts by status",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body AgentSummaryResponse `json:"body"`
	}, error) {
		st := a.State()
		return &struct {
			Body AgentSummaryResponse `json:"body"`
		}{Body: AgentSummaryResponse{Total: len(st.Agents.List()), ByStatus: st.Agents.CountByStatus()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-agent",
		Method:      http.MethodGet,
		Path:        "/agents/{agent_id}",
		Summary:     "Get agent",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		AgentID string `path:"agent_id"`
	}) (*struct {
		Body domain.Agent `json:"body"`
	}, error) {
		ag, err := a.State().Agents.Get(input.AgentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("agent", input.AgentID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Agent `json:"body"`
		}{Body: ag}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-agent-status",
		Method:      http.MethodPatch,
		Path:        "/agents/{agent_id}/status",
		Summary:     "Update agent status",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		AgentID string             `path:"agent_id"`
		Body    AgentStatusRequest `json:"body"`
	}) (*struct {
		Body AgentsMutation `json:"body"`
	}, error) {
		agents := a.State().Agents
		ok := agents.UpdateStatus(input.AgentID, input.Body.Status, input.Body.CurrentTask)
		return &struct {
			Body AgentsMutation `json:"body"`
		}{Body: AgentsMutation{Matched: ok, Agents: agents.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-agent",
		Method:      http.MethodPut,
		Path:        "/agents/selection",
		Summary:     "Select an agent",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SelectionRequest `json:"body"`
	}) (*struct {
		Body UIResponse `json:"body"`
	}, error) {
		st := a.State()
		st.Agents.Select(input.Body.ID)
		return &struct {
			Body UIResponse `json:"body"`
		}{Body: uiResponse(st)}, nil
	})
}

func registerProjects(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Project `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Project `json:"body"`
		}{Body: a.State().Projects.List()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateProjectRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		id := input.Body.ID
		if id == "" {
			id = uuid.NewString()
		}
		p := input.Body.project(id, a.Scheduler().Now())
		a.State().Projects.Add(p)
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := a.State().Projects.Get(input.ProjectID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("project", input.ProjectID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}",
		Summary:     "Update project",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		ProjectID string             `path:"project_id"`
		Body      store.ProjectPatch `json:"body"`
	}) (*struct {
		Body ProjectsMutation `json:"body"`
	}, error) {
		projects := a.State().Projects
		ok := projects.Update(input.ProjectID, input.Body)
		return &struct {
			Body ProjectsMutation `json:"body"`
		}{Body: ProjectsMutation{Matched: ok, Projects: projects.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-logs",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/logs",
		Summary:     "Logs for a project",
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
	}) (*struct {
		Body []domain.LogEntry `json:"body"`
	}, error) {
		return &struct {
			Body []domain.LogEntry `json:"body"`
		}{Body: a.State().Logs.ByProject(input.ProjectID)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-deployments",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/deployments",
		Summary:     "Deployments for a project",
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
	}) (*struct {
		Body []domain.Deployment `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Deployment `json:"body"`
		}{Body: a.State().Deployments.ByProject(input.ProjectID)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-project",
		Method:      http.MethodPut,
		Path:        "/projects/selection",
		Summary:     "Select a project",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SelectionRequest `json:"body"`
	}) (*struct {
		Body UIResponse `json:"body"`
	}, error) {
		st := a.State()
		st.Projects.Select(input.Body.ID)
		return &struct {
			Body UIResponse `json:"body"`
		}{Body: uiResponse(st)}, nil
	})
}

func registerTasks(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, input *struct {
		Search    string `query:"search" doc:"Case-insensitive match on title or description"`
		Assignee  string `query:"assignee"`
		Status    string `query:"status"`
		ProjectID string `query:"project_id"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		f := kanban.Filter{Search: input.Search, Assignee: domain.AgentType(input.Assignee)}
		items := []domain.Task{}
		for _, t := range a.State().Tasks.List() {
			if !f.Match(t) {
				continue
			}
			if input.Status != "" && string(t.Status) != input.Status {
				continue
			}
			if input.ProjectID != "" && t.ProjectID != input.ProjectID {
				continue
			}
			items = append(items, t)
		}
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if strings.TrimSpace(input.Body.Title) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "title is required", nil)
		}
		id := input.Body.ID
		if id == "" {
			id = uuid.NewString()
		}
		t := input.Body.task(id, a.Scheduler().Now())
		a.State().Tasks.Add(t)
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		t, err := a.State().Tasks.Get(input.TaskID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("task", input.TaskID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{task_id}",
		Summary:     "Update task",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		TaskID string          `path:"task_id"`
		Body   store.TaskPatch `json:"body"`
	}) (*struct {
		Body TasksMutation `json:"body"`
	}, error) {
		tasks := a.State().Tasks
		ok := tasks.Update(input.TaskID, input.Body)
		return &struct {
			Body TasksMutation `json:"body"`
		}{Body: TasksMutation{Matched: ok, Tasks: tasks.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/move",
		Summary:     "Move task to a column",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		TaskID string      `path:"task_id"`
		Body   MoveRequest `json:"body"`
	}) (*struct {
		Body TasksMutation `json:"body"`
	}, error) {
		st := a.State()
		ok := st.Board.Dispatch(kanban.MoveTask{TaskID: input.TaskID, TargetStatus: input.Body.Status})
		return &struct {
			Body TasksMutation `json:"body"`
		}{Body: TasksMutation{Matched: ok, Tasks: st.Tasks.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{task_id}",
		Summary:     "Delete task",
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body TasksMutation `json:"body"`
	}, error) {
		tasks := a.State().Tasks
		ok := tasks.Delete(input.TaskID)
		return &struct {
			Body TasksMutation `json:"body"`
		}{Body: TasksMutation{Matched: ok, Tasks: tasks.List()}}, nil
	})
}

func registerKanban(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "kanban-board",
		Method:      http.MethodGet,
		Path:        "/kanban",
		Summary:     "Tasks grouped by column",
	}, func(ctx context.Context, input *struct {
		Search   string `query:"search"`
		Assignee string `query:"assignee"`
	}) (*struct {
		Body BoardResponse `json:"body"`
	}, error) {
		b := a.State().Board
		cols := b.Columns(kanban.Filter{Search: input.Search, Assignee: domain.AgentType(input.Assignee)})
		return &struct {
			Body BoardResponse `json:"body"`
		}{Body: BoardResponse{Columns: cols, Summary: b.Summary()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "kanban-move",
		Method:      http.MethodPost,
		Path:        "/kanban/moves",
		Summary:     "Drop a card on a column",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body kanban.MoveTask `json:"body"`
	}) (*struct {
		Body TasksMutation `json:"body"`
	}, error) {
		st := a.State()
		ok := st.Board.Dispatch(input.Body)
		return &struct {
			Body TasksMutation `json:"body"`
		}{Body: TasksMutation{Matched: ok, Tasks: st.Tasks.List()}}, nil
	})
}

func registerChat(api huma.API, a *app.App, limiter *rate.Limiter) {
	huma.Register(api, huma.Operation{
		OperationID: "list-chat",
		Method:      http.MethodGet,
		Path:        "/chat/messages",
		Summary:     "Chat transcript",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ChatResponse `json:"body"`
	}, error) {
		st := a.State()
		return &struct {
			Body ChatResponse `json:"body"`
		}{Body: ChatResponse{Accepted: true, Typing: st.Chat.Typing(), Messages: st.Chat.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "send-chat",
		Method:      http.MethodPost,
		Path:        "/chat/messages",
		Summary:     "Send a chat message",
		Description: "Appends the message and schedules the orchestrator reply. Blank input is not accepted and changes nothing.",
		Errors:      []int{http.StatusBadRequest, http.StatusTooManyRequests},
	}, func(ctx context.Context, input *struct {
		Body ChatRequest `json:"body"`
	}) (*struct {
		Body ChatResponse `json:"body"`
	}, error) {
		if limiter != nil && !limiter.Allow() {
			return nil, newAPIError(http.StatusTooManyRequests, "rate_limited", "too many chat messages", nil)
		}
		st := a.State()
		accepted := st.Responder.Submit(input.Body.Content)
		return &struct {
			Body ChatResponse `json:"body"`
		}{Body: ChatResponse{Accepted: accepted, Typing: st.Chat.Typing(), Messages: st.Chat.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-chat",
		Method:      http.MethodDelete,
		Path:        "/chat/messages",
		Summary:     "Clear the chat",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ChatResponse `json:"body"`
	}, error) {
		st := a.State()
		st.Chat.Clear()
		return &struct {
			Body ChatResponse `json:"body"`
		}{Body: ChatResponse{Accepted: true, Typing: st.Chat.Typing(), Messages: st.Chat.List()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-typing",
		Method:      http.MethodPut,
		Path:        "/chat/typing",
		Summary:     "Set the typing indicator",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body TypingRequest `json:"body"`
	}) (*struct {
		Body TypingRequest `json:"body"`
	}, error) {
		st := a.State()
		st.Chat.SetTyping(input.Body.Typing)
		return &struct {
			Body TypingRequest `json:"body"`
		}{Body: TypingRequest{Typing: st.Chat.Typing()}}, nil
	})
}

func registerLogs(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/logs",
		Summary:     "List logs",
	}, func(ctx context.Context, input *struct {
		Search    string `query:"search" doc:"Case-insensitive match on message or agent"`
		Level     string `query:"level"`
		Agent     string `query:"agent"`
		ProjectID string `query:"project_id"`
	}) (*struct {
		Body []domain.LogEntry `json:"body"`
	}, error) {
		items := a.State().Logs.Filter(store.LogFilter{
			Query: input.Search,
			Level: domain.LogLevel(input.Level),
			Agent: domain.AgentType(input.Agent),
		})
		if input.ProjectID != "" {
			kept := items[:0]
			for _, l := range items {
				if l.ProjectID != nil && *l.ProjectID == input.ProjectID {
					kept = append(kept, l)
				}
			}
			items = kept
		}
		return &struct {
			Body []domain.LogEntry `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "append-log",
		Method:        http.MethodPost,
		Path:          "/logs",
		Summary:       "Append a log entry",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body AppendLogRequest `json:"body"`
	}) (*struct {
		Body domain.LogEntry `json:"body"`
	}, error) {
		l := domain.LogEntry{
			ID:        uuid.NewString(),
			Timestamp: a.Scheduler().Now(),
			Level:     input.Body.Level,
			Message:   input.Body.Message,
			Agent:     input.Body.Agent,
			ProjectID: input.Body.ProjectID,
			TaskID:    input.Body.TaskID,
		}
		a.State().Logs.Append(l)
		return &struct {
			Body domain.LogEntry `json:"body"`
		}{Body: l}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-logs",
		Method:      http.MethodDelete,
		Path:        "/logs",
		Summary:     "Clear all logs",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.LogEntry `json:"body"`
	}, error) {
		logs := a.State().Logs
		logs.Clear()
		return &struct {
			Body []domain.LogEntry `json:"body"`
		}{Body: logs.List()}, nil
	})
}

type fileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type previewOutput struct {
	ContentType string `header:"Content-Type"`
	CSP         string `header:"Content-Security-Policy"`
	Body        []byte
}

var fileContentTypes = map[string]string{
	"html":       "text/html; charset=utf-8",
	"css":        "text/css; charset=utf-8",
	"javascript": "text/javascript; charset=utf-8",
}

func canvasResponse(c *store.Canvas) CanvasResponse {
	d := c.Data()
	return CanvasResponse{Nodes: d.Nodes, Edges: d.Edges, SelectedNode: c.SelectedNode(), Syncing: c.Syncing()}
}

func registerCanvas(api huma.API, a *app.App) {
	type canvasOut = struct {
		Body CanvasResponse `json:"body"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-canvas",
		Method:      http.MethodGet,
		Path:        "/canvas",
		Summary:     "Canvas graph",
	}, func(ctx context.Context, _ *struct{}) (*canvasOut, error) {
		return &canvasOut{Body: canvasResponse(a.State().Canvas)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-canvas",
		Method:      http.MethodPut,
		Path:        "/canvas",
		Summary:     "Replace the canvas graph",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body domain.CanvasData `json:"body"`
	}) (*canvasOut, error) {
		c := a.State().Canvas
		c.SetData(input.Body)
		return &canvasOut{Body: canvasResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-canvas-nodes",
		Method:      http.MethodPut,
		Path:        "/canvas/nodes",
		Summary:     "Replace canvas nodes",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body []domain.CanvasNode `json:"body"`
	}) (*canvasOut, error) {
		c := a.State().Canvas
		c.UpdateNodes(input.Body)
		return &canvasOut{Body: canvasResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-canvas-edges",
		Method:      http.MethodPut,
		Path:        "/canvas/edges",
		Summary:     "Replace canvas edges",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body []domain.CanvasEdge `json:"body"`
	}) (*canvasOut, error) {
		c := a.State().Canvas
		c.UpdateEdges(input.Body)
		return &canvasOut{Body: canvasResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-canvas-node",
		Method:        http.MethodPost,
		Path:          "/canvas/nodes",
		Summary:       "Add a canvas node",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body AddNodeRequest `json:"body"`
	}) (*struct {
		Body domain.CanvasNode `json:"body"`
	}, error) {
		n := domain.CanvasNode{ID: input.Body.ID, Type: input.Body.Type, Position: input.Body.Position, Data: input.Body.Data}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		a.State().Canvas.AddNode(n)
		return &struct {
			Body domain.CanvasNode `json:"body"`
		}{Body: n}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-canvas-node",
		Method:      http.MethodDelete,
		Path:        "/canvas/nodes/{node_id}",
		Summary:     "Remove a node and its edges",
	}, func(ctx context.Context, input *struct {
		NodeID string `path:"node_id"`
	}) (*struct {
		Body CanvasMutation `json:"body"`
	}, error) {
		c := a.State().Canvas
		ok := c.RemoveNode(input.NodeID)
		return &struct {
			Body CanvasMutation `json:"body"`
		}{Body: CanvasMutation{Matched: ok, Canvas: c.Data()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-canvas-node",
		Method:      http.MethodPut,
		Path:        "/canvas/selection",
		Summary:     "Select a canvas node",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SelectionRequest `json:"body"`
	}) (*canvasOut, error) {
		c := a.State().Canvas
		c.SelectNode(input.Body.ID)
		return &canvasOut{Body: canvasResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-canvas-syncing",
		Method:      http.MethodPut,
		Path:        "/canvas/syncing",
		Summary:     "Set the canvas sync flag",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SyncingRequest `json:"body"`
	}) (*canvasOut, error) {
		c := a.State().Canvas
		c.SetSyncing(input.Body.Syncing)
		return &canvasOut{Body: canvasResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "start-generation",
		Method:      http.MethodPost,
		Path:        "/canvas/generate",
		Summary:     "Start code generation",
		Description: "Blank prompts are not started. Starting again cancels the run in flight.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body GenerateRequest `json:"body"`
	}) (*struct {
		Body GenerateResponse `json:"body"`
	}, error) {
		started := a.Generate(input.Body.Prompt)
		return &struct {
			Body GenerateResponse `json:"body"`
		}{Body: GenerateResponse{Started: started, State: a.State().Generator.Snapshot()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-generation",
		Method:      http.MethodGet,
		Path:        "/canvas/generation",
		Summary:     "Generation progress",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body canvas.Snapshot `json:"body"`
	}, error) {
		return &struct {
			Body canvas.Snapshot `json:"body"`
		}{Body: a.State().Generator.Snapshot()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "download-generated-file",
		Method:      http.MethodGet,
		Path:        "/canvas/files/{name}",
		Summary:     "Download a generated file",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*fileOutput, error) {
		f, err := a.State().Generator.File(input.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &fileOutput{
			ContentType:        fileContentTypes[f.Language],
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", f.Name),
			Body:               []byte(f.Content),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "preview-generated-app",
		Method:      http.MethodGet,
		Path:        "/canvas/preview",
		Summary:     "Render the generated app in a sandbox",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, _ *struct{}) (*previewOutput, error) {
		doc, err := a.State().Generator.Preview()
		if err != nil {
			return nil, handleError(err)
		}
		return &previewOutput{
			ContentType: "text/html; charset=utf-8",
			// Opaque origin: the document cannot reach the dashboard.
			CSP:  "sandbox allow-scripts",
			Body: []byte(doc),
		}, nil
	})
}

func registerStats(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Dashboard counters",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body domain.DashboardStats `json:"body"`
	}, error) {
		return &struct {
			Body domain.DashboardStats `json:"body"`
		}{Body: a.State().Stats.Get()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-stats",
		Method:      http.MethodPatch,
		Path:        "/stats",
		Summary:     "Overwrite dashboard counters",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body store.StatsPatch `json:"body"`
	}) (*struct {
		Body domain.DashboardStats `json:"body"`
	}, error) {
		return &struct {
			Body domain.DashboardStats `json:"body"`
		}{Body: a.State().Stats.Update(input.Body)}, nil
	})
}

func registerDeployments(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-deployments",
		Method:      http.MethodGet,
		Path:        "/deployments",
		Summary:     "List deployments",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Deployment `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Deployment `json:"body"`
		}{Body: a.State().Deployments.List()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-deployment",
		Method:      http.MethodGet,
		Path:        "/deployments/{deployment_id}",
		Summary:     "Get deployment",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		DeploymentID string `path:"deployment_id"`
	}) (*struct {
		Body domain.Deployment `json:"body"`
	}, error) {
		d, err := a.State().Deployments.Get(input.DeploymentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("deployment", input.DeploymentID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Deployment `json:"body"`
		}{Body: d}, nil
	})
}

func uiResponse(st *app.State) UIResponse {
	rs := st.Router.State()
	out := UIResponse{State: rs, Rendered: router.Resolve(rs.View), Nav: router.NavItems()}
	if ag, ok := st.Agents.Selected(); ok {
		out.SelectedAgent = &ag
	}
	if p, ok := st.Projects.Selected(); ok {
		out.SelectedProject = &p
	}
	return out
}

func registerUI(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "get-ui",
		Method:      http.MethodGet,
		Path:        "/ui",
		Summary:     "Current view and sidebar",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body UIResponse `json:"body"`
	}, error) {
		return &struct {
			Body UIResponse `json:"body"`
		}{Body: uiResponse(a.State())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-ui",
		Method:      http.MethodPatch,
		Path:        "/ui",
		Summary:     "Switch view or sidebar",
		Description: "The view is stored as given; unknown views render the dashboard.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body UIRequest `json:"body"`
	}) (*struct {
		Body UIResponse `json:"body"`
	}, error) {
		st := a.State()
		if input.Body.View != nil {
			st.Router.SetView(*input.Body.View)
		}
		if input.Body.SidebarOpen != nil {
			st.Router.SetSidebarOpen(*input.Body.SidebarOpen)
		}
		if input.Body.ToggleSidebar {
			st.Router.ToggleSidebar()
		}
		return &struct {
			Body UIResponse `json:"body"`
		}{Body: uiResponse(st)}, nil
	})
}

func registerReset(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "reset",
		Method:      http.MethodPost,
		Path:        "/reset",
		Summary:     "Restore the seeded state",
		Description: "Cancels pending chat replies and generation runs, then re-seeds every store.",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body UIResponse `json:"body"`
	}, error) {
		a.Reset()
		return &struct {
			Body UIResponse `json:"body"`
		}{Body: uiResponse(a.State())}, nil
	})
}
