package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	somadevsdk "somadev/sdk/go"
)

func agentsCmd() *cobra.Command {
	agents := &cobra.Command{Use: "agents", Short: "Inspect agent personas"}
	agents.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient().Agents(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := newTable()
			tw.AppendHeader(table.Row{"ID", "Agent", "Status", "Current Task", "Done"})
			for _, a := range items {
				tw.AppendRow(table.Row{a.ID, a.Type, statusColor(a.Status)(a.Status), a.CurrentTask, a.TasksCompleted})
			}
			tw.Render()
			return nil
		},
	})
	return agents
}

func tasksCmd() *cobra.Command {
	tasks := &cobra.Command{Use: "tasks", Short: "Manage kanban tasks"}
	tasks.AddCommand(tasksListCmd())
	tasks.AddCommand(tasksMoveCmd())
	return tasks
}

func tasksListCmd() *cobra.Command {
	var f somadevsdk.TaskFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient().Tasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := newTable()
			tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Assignee"})
			for _, t := range items {
				tw.AppendRow(table.Row{t.ID, t.Title, statusColor(t.Status)(t.Status), t.Priority, t.Assignee})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "match title or description")
	cmd.Flags().StringVar(&f.Assignee, "assignee", "", "agent type, e.g. @SomaFront")
	return cmd
}

func tasksMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matched, err := newClient().MoveTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"matched": matched})
			}
			if !matched {
				fmt.Printf("no task %s; nothing moved\n", args[0])
				return nil
			}
			fmt.Printf("task %s -> %s\n", args[0], args[1])
			return nil
		},
	}
	return cmd
}

func boardCmd() *cobra.Command {
	var f somadevsdk.TaskFilter
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := newClient().Board(cmd.Context(), f)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(board)
			}
			tw := newTable()
			header := table.Row{}
			depth := 0
			for _, c := range board.Columns {
				header = append(header, fmt.Sprintf("%s (%d)", c.Title, len(c.Tasks)))
				depth = max(depth, len(c.Tasks))
			}
			tw.AppendHeader(header)
			for i := 0; i < depth; i++ {
				row := table.Row{}
				for _, c := range board.Columns {
					cell := ""
					if i < len(c.Tasks) {
						cell = fmt.Sprintf("#%s %s", c.Tasks[i].ID, c.Tasks[i].Title)
					}
					row = append(row, cell)
				}
				tw.AppendRow(row)
			}
			tw.AppendFooter(table.Row{fmt.Sprintf("%d tasks", board.Summary.Total)})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "match title or description")
	cmd.Flags().StringVar(&f.Assignee, "assignee", "", "agent type, e.g. @SomaFront")
	return cmd
}

func logsCmd() *cobra.Command {
	var f somadevsdk.LogFilter
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient().Logs(cmd.Context(), f)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			for _, l := range items {
				paint := levelColor(l.Level)
				fmt.Printf("%s %s %-13s %s\n",
					l.Timestamp.Local().Format("15:04:05"),
					paint(fmt.Sprintf("%-7s", strings.ToUpper(l.Level))),
					l.Agent, l.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "match message or agent")
	cmd.Flags().StringVar(&f.Level, "level", "", "info, warn, error, success or debug")
	cmd.Flags().StringVar(&f.Agent, "agent", "", "agent type, e.g. @SomaDeploy")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the server to its seeded state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("state reset")
			return nil
		},
	}
}
