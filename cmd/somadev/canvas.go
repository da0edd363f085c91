package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	somadevsdk "somadev/sdk/go"
)

func canvasCmd() *cobra.Command {
	c := &cobra.Command{Use: "canvas", Short: "Design canvas and code generation"}
	c.AddCommand(canvasGenerateCmd())
	return c
}

func canvasGenerateCmd() *cobra.Command {
	var prompt, out string
	var local bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code from the canvas and optionally write the files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, release, err := openDashboard(ctx, local)
			if err != nil {
				return err
			}
			defer release()

			started, err := d.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			if !started {
				return errors.New("prompt is blank; nothing generated")
			}
			gen, err := waitGeneration(ctx, d, !viper.GetBool("json"))
			if err != nil {
				return err
			}
			if gen.Status != "completed" {
				return fmt.Errorf("generation ended with status %s", gen.Status)
			}
			if out != "" {
				if err := writeFiles(out, gen.Files); err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(gen)
			}
			tw := newTable()
			tw.AppendHeader(table.Row{"File", "Language", "Bytes"})
			for _, f := range gen.Files {
				tw.AppendRow(table.Row{f.Name, f.Language, len(f.Content)})
			}
			tw.Render()
			if out != "" {
				fmt.Printf("wrote %d files to %s\n", len(gen.Files), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "what to build")
	cmd.Flags().StringVar(&out, "out", "", "directory to write the generated files to")
	cmd.Flags().BoolVar(&local, "local", false, "run against an in-process dashboard instead of --server")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func waitGeneration(ctx context.Context, d dashboard, render bool) (somadevsdk.Generation, error) {
	var pw progress.Writer
	var tracker *progress.Tracker
	if render {
		pw = progress.NewWriter()
		pw.SetOutputWriter(os.Stdout)
		pw.SetUpdateFrequency(50 * time.Millisecond)
		tracker = &progress.Tracker{Message: "generating", Total: 100}
		pw.AppendTracker(tracker)
		go pw.Render()
		defer func() {
			pw.Stop()
			for pw.IsRenderInProgress() {
				time.Sleep(10 * time.Millisecond)
			}
		}()
	}
	t := time.NewTicker(pollInterval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return somadevsdk.Generation{}, ctx.Err()
		case <-t.C:
		}
		gen, err := d.Generation(ctx)
		if err != nil {
			return somadevsdk.Generation{}, err
		}
		if tracker != nil {
			tracker.SetValue(int64(gen.Progress))
		}
		switch gen.Status {
		case "completed":
			if tracker != nil {
				tracker.MarkAsDone()
			}
			return gen, nil
		case "error", "idle":
			if tracker != nil {
				tracker.MarkAsErrored()
			}
			return gen, nil
		}
	}
}

func writeFiles(dir string, files []somadevsdk.GeneratedFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(f.Name)), []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
