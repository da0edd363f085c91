package kanban

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somadev/internal/domain"
	"somadev/internal/events"
	"somadev/internal/fixtures"
	"somadev/internal/store"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newBoard(t *testing.T, pub events.Publisher) (*Board, *store.Tasks) {
	t.Helper()
	seed := fixtures.MustLoad(epoch)
	tasks := store.NewTasks(seed.Tasks, func() time.Time { return epoch.Add(time.Hour) }, pub)
	return NewBoard(tasks), tasks
}

func TestDispatchMovesTask(t *testing.T) {
	b, tasks := newBoard(t, nil)
	require.True(t, b.Dispatch(MoveTask{TaskID: "2", TargetStatus: domain.TaskReview}))
	got, err := tasks.Get("2")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskReview, got.Status)
	assert.Equal(t, epoch.Add(time.Hour), got.UpdatedAt)
}

func TestDispatchSameColumnStillTouches(t *testing.T) {
	b, tasks := newBoard(t, nil)
	require.True(t, b.Dispatch(MoveTask{TaskID: "3", TargetStatus: domain.TaskDone}))
	got, _ := tasks.Get("3")
	assert.Equal(t, domain.TaskDone, got.Status)
	assert.Equal(t, epoch.Add(time.Hour), got.UpdatedAt)
}

func TestDispatchIgnoresEmptyAndUnknownIDs(t *testing.T) {
	bus := events.New(nil)
	sub := bus.Subscribe(events.TopicTask)
	defer bus.Unsubscribe(sub)
	b, tasks := newBoard(t, bus)
	before := tasks.List()

	assert.False(t, b.Dispatch(MoveTask{TargetStatus: domain.TaskDone}))
	assert.False(t, b.Dispatch(MoveTask{TaskID: "404", TargetStatus: domain.TaskDone}))
	assert.Equal(t, before, tasks.List())
	assert.Empty(t, sub.Ch())
}

func TestColumns(t *testing.T) {
	b, _ := newBoard(t, nil)
	cols := b.Columns(Filter{})
	require.Len(t, cols, 5)

	var titles []string
	counts := map[domain.TaskStatus]int{}
	for _, c := range cols {
		titles = append(titles, c.Title)
		counts[c.Status] = len(c.Tasks)
		assert.NotNil(t, c.Tasks)
	}
	assert.Equal(t, []string{"Backlog", "A Fazer", "Em Progresso", "Revisão", "Concluído"}, titles)
	assert.Equal(t, map[domain.TaskStatus]int{
		domain.TaskBacklog: 0, domain.TaskTodo: 1, domain.TaskInProgress: 1, domain.TaskReview: 0, domain.TaskDone: 3,
	}, counts)
}

func TestColumnsFilter(t *testing.T) {
	b, _ := newBoard(t, nil)

	count := func(f Filter) int {
		n := 0
		for _, c := range b.Columns(f) {
			n += len(c.Tasks)
		}
		return n
	}
	assert.Equal(t, 1, count(Filter{Search: "DOCKER"}))
	assert.Equal(t, 1, count(Filter{Search: "refresh tokens"}))
	assert.Equal(t, 1, count(Filter{Assignee: domain.AgentBack}))
	assert.Equal(t, 0, count(Filter{Search: "docker", Assignee: domain.AgentBack}))
	assert.Equal(t, 3, count(Filter{Search: "implementar"}))
}

func TestSummary(t *testing.T) {
	b, _ := newBoard(t, nil)
	s := b.Summary()
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.ByStatus[domain.TaskDone])
	assert.Equal(t, 0, s.ByStatus[domain.TaskBacklog])
	assert.Equal(t, "Revisão", ColumnTitle(domain.TaskReview))
}
