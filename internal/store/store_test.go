package store

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somadev/internal/domain"
	"somadev/internal/events"
	"somadev/internal/fixtures"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTasks(t *testing.T) (*Tasks, *fakeClock, *events.Bus) {
	t.Helper()
	clk := &fakeClock{t: epoch}
	bus := events.New(nil)
	seed := fixtures.MustLoad(epoch)
	return NewTasks(seed.Tasks, clk.now, bus), clk, bus
}

func TestUnknownIDMutationsLeaveCollectionUnchanged(t *testing.T) {
	tasks, clk, bus := newTasks(t)
	sub := bus.Subscribe("")
	defer bus.Unsubscribe(sub)
	before := tasks.List()
	clk.advance(time.Hour)

	assert.False(t, tasks.Move("missing", domain.TaskDone))
	assert.False(t, tasks.Update("missing", TaskPatch{Title: domain.Ptr("x")}))
	assert.False(t, tasks.Delete("missing"))

	assert.Equal(t, before, tasks.List())
	assert.Len(t, sub.Ch(), 0)
}

func TestMoveRewritesOnlyStatusAndUpdatedAt(t *testing.T) {
	tasks, clk, _ := newTasks(t)
	before, err := tasks.Get("2")
	require.NoError(t, err)
	others := tasks.List()
	clk.advance(time.Minute)

	require.True(t, tasks.Move("2", domain.TaskDone))

	after, err := tasks.Get("2")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskDone, after.Status)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	want := before
	want.Status = domain.TaskDone
	want.UpdatedAt = after.UpdatedAt
	assert.Equal(t, want, after)

	for i, task := range tasks.List() {
		if task.ID != "2" {
			assert.Equal(t, others[i], task)
		}
	}
}

func TestMoveToSameStatusStillTouchesTimestamp(t *testing.T) {
	tasks, clk, _ := newTasks(t)
	before, _ := tasks.Get("3")
	clk.advance(time.Second)
	require.True(t, tasks.Move("3", before.Status))
	after, _ := tasks.Get("3")
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, clk.t, after.UpdatedAt)
}

func TestTaskUpdateAppliesPatch(t *testing.T) {
	tasks, clk, _ := newTasks(t)
	clk.advance(time.Second)
	require.True(t, tasks.Update("1", TaskPatch{
		Priority: domain.Ptr(domain.PriorityCritical),
		Tags:     &[]string{"canvas"},
	}))
	got, _ := tasks.Get("1")
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.Equal(t, []string{"canvas"}, got.Tags)
	assert.Equal(t, "Implementar Canvas com React Flow", got.Title)
	assert.Equal(t, clk.t, got.UpdatedAt)
}

func TestTaskAddAndDelete(t *testing.T) {
	tasks, _, _ := newTasks(t)
	tasks.Add(domain.Task{ID: "9", ProjectID: "nope", Title: "dangling project"})
	require.Len(t, tasks.List(), 6)
	require.True(t, tasks.Delete("9"))
	assert.Len(t, tasks.List(), 5)
	_, err := tasks.Get("9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotsAreNotMutatedByLaterWrites(t *testing.T) {
	tasks, _, _ := newTasks(t)
	snap := tasks.List()
	tasks.Move("1", domain.TaskDone)
	assert.Equal(t, domain.TaskInProgress, snap[0].Status)
	snap[1].Title = "changed by caller"
	got, _ := tasks.Get("2")
	assert.NotEqual(t, "changed by caller", got.Title)
}

func TestAgentsUpdateStatus(t *testing.T) {
	clk := &fakeClock{t: epoch}
	agents := NewAgents(fixtures.MustLoad(epoch).Agents, clk.now, nil)
	clk.advance(time.Minute)

	require.True(t, agents.UpdateStatus("4", domain.AgentBusy, domain.Ptr("Rodando testes")))
	a, err := agents.Get("4")
	require.NoError(t, err)
	assert.Equal(t, domain.AgentBusy, a.Status)
	assert.Equal(t, "Rodando testes", *a.CurrentTask)
	assert.Equal(t, clk.t, a.LastActive)

	before := agents.List()
	assert.False(t, agents.UpdateStatus("99", domain.AgentError, nil))
	assert.Equal(t, before, agents.List())

	counts := agents.CountByStatus()
	assert.Equal(t, 13, counts[domain.AgentOnline]+counts[domain.AgentBusy]+counts[domain.AgentOffline])

	agents.Select("4")
	sel, ok := agents.Selected()
	require.True(t, ok)
	assert.Equal(t, "SomaQA", sel.Name)
	agents.Select("")
	_, ok = agents.Selected()
	assert.False(t, ok)
}

func TestProjectsUpdate(t *testing.T) {
	clk := &fakeClock{t: epoch}
	projects := NewProjects(fixtures.MustLoad(epoch).Projects, clk.now, nil)
	clk.advance(time.Hour)
	require.True(t, projects.Update("3", ProjectPatch{Status: domain.Ptr(domain.ProjectDevelopment)}))
	p, _ := projects.Get("3")
	assert.Equal(t, domain.ProjectDevelopment, p.Status)
	assert.Equal(t, clk.t, p.UpdatedAt)

	two, _ := projects.Get("2")
	assert.Equal(t, epoch.Add(-48*time.Hour), two.UpdatedAt)

	before := projects.List()
	clk.advance(time.Hour)
	assert.False(t, projects.Update("missing", ProjectPatch{Name: domain.Ptr("x")}))
	assert.Equal(t, before, projects.List())

	projects.Add(domain.Project{ID: "4", Name: "CLI"})
	assert.Len(t, projects.List(), 4)
}

func TestSetAllPublishesStoredCopy(t *testing.T) {
	bus := events.New(nil)
	sub := bus.Subscribe("")
	defer bus.Unsubscribe(sub)
	seed := fixtures.MustLoad(epoch)

	tasks := NewTasks(nil, (&fakeClock{t: epoch}).now, bus)
	items := slices.Clone(seed.Tasks)
	tasks.SetAll(items)
	items[0].Title = "changed by caller"
	evt := <-sub.Ch()
	assert.Equal(t, seed.Tasks[0].Title, evt.Payload.([]domain.Task)[0].Title)
	assert.Equal(t, seed.Tasks[0].Title, tasks.List()[0].Title)

	agents := NewAgents(nil, (&fakeClock{t: epoch}).now, bus)
	list := slices.Clone(seed.Agents)
	agents.SetAll(list)
	list[0].Name = "changed by caller"
	evt = <-sub.Ch()
	assert.Equal(t, seed.Agents[0].Name, evt.Payload.([]domain.Agent)[0].Name)

	projects := NewProjects(nil, (&fakeClock{t: epoch}).now, bus)
	ps := slices.Clone(seed.Projects)
	projects.SetAll(ps)
	ps[0].Name = "changed by caller"
	evt = <-sub.Ch()
	assert.Equal(t, seed.Projects[0].Name, evt.Payload.([]domain.Project)[0].Name)
}

func TestChatAppendClearTyping(t *testing.T) {
	bus := events.New(nil)
	sub := bus.Subscribe(events.TopicChat)
	defer bus.Unsubscribe(sub)
	chat := NewChat(fixtures.MustLoad(epoch).Messages, bus)
	require.Len(t, chat.List(), 3)

	chat.SetTyping(true)
	chat.SetTyping(true)
	assert.True(t, chat.Typing())
	assert.Len(t, sub.Ch(), 1)

	chat.Append(domain.ChatMessage{ID: "4", Role: domain.RoleUser, Content: "oi"})
	assert.Equal(t, "oi", chat.List()[3].Content)
	chat.Clear()
	assert.Empty(t, chat.List())
}

func TestLogsFilter(t *testing.T) {
	logs := NewLogs(fixtures.MustLoad(epoch).Logs, nil)

	assert.Len(t, logs.Filter(LogFilter{}), 5)
	assert.Len(t, logs.Filter(LogFilter{Level: domain.LevelSuccess}), 2)
	assert.Len(t, logs.Filter(LogFilter{Agent: domain.AgentDeploy}), 2)
	assert.Len(t, logs.Filter(LogFilter{Query: "BUNDLE"}), 1)
	assert.Len(t, logs.Filter(LogFilter{Query: "somamonitor"}), 1)
	assert.Len(t, logs.Filter(LogFilter{Query: "deploy", Level: domain.LevelInfo}), 1)
	assert.Len(t, logs.ByProject("1"), 5)
	assert.Empty(t, logs.ByProject("2"))

	logs.Clear()
	assert.Empty(t, logs.List())
}

func TestCanvasRemoveNodeDropsIncidentEdges(t *testing.T) {
	canvas := NewCanvas(fixtures.MustLoad(epoch).Canvas, nil)
	require.True(t, canvas.RemoveNode("2"))
	d := canvas.Data()
	assert.Len(t, d.Nodes, 3)
	require.Len(t, d.Edges, 1)
	assert.Equal(t, "e1-3", d.Edges[0].ID)

	before := canvas.Data()
	assert.False(t, canvas.RemoveNode("missing"))
	assert.Equal(t, before, canvas.Data())
}

func TestCanvasMutators(t *testing.T) {
	canvas := NewCanvas(fixtures.MustLoad(epoch).Canvas, nil)
	canvas.AddNode(domain.CanvasNode{ID: "5", Type: domain.NodeDatabase, Data: domain.NodeData{Label: "Postgres"}})
	assert.Len(t, canvas.Data().Nodes, 5)
	canvas.UpdateEdges(nil)
	assert.Empty(t, canvas.Data().Edges)
	assert.Len(t, canvas.Data().Nodes, 5)
	canvas.SelectNode("5")
	assert.Equal(t, "5", canvas.SelectedNode())
	canvas.SetSyncing(true)
	assert.True(t, canvas.Syncing())
}

func TestStatsUpdate(t *testing.T) {
	stats := NewStats(fixtures.MustLoad(epoch).Stats, nil)
	got := stats.Update(StatsPatch{ActiveAgents: domain.Ptr(10)})
	assert.Equal(t, 10, got.ActiveAgents)
	assert.Equal(t, 2347, got.TasksCompleted)
	assert.Equal(t, got, stats.Get())
}

func TestDeployments(t *testing.T) {
	d := NewDeployments(fixtures.MustLoad(epoch).Deployments)
	require.Len(t, d.List(), 3)
	got, err := d.Get("3")
	require.NoError(t, err)
	assert.Equal(t, domain.DeployBuilding, got.Status)
	assert.Len(t, d.ByProject("2"), 1)
	_, err = d.Get("x")
	assert.ErrorIs(t, err, ErrNotFound)
}
