package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	somadevsdk "somadev/sdk/go"
)

const pollInterval = 200 * time.Millisecond

func chatCmd() *cobra.Command {
	c := &cobra.Command{Use: "chat", Short: "Talk to SARA"}
	c.AddCommand(chatSendCmd())
	c.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the chat transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := newClient().Chat(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(chat)
			}
			printTranscript(chat.Messages)
			return nil
		},
	})
	return c
}

func chatSendCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message and wait for the reply",
		Long: `Send a message and wait for the reply. Messages asking to create an app
("criar", "app", "aplicativo") get a plan, a confirmation and a redirect to
the canvas; --local waits for all of it, a server send stops at the first
reply.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, release, err := openDashboard(ctx, local)
			if err != nil {
				return err
			}
			defer release()

			sent, err := d.SendChat(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !sent.Accepted {
				return errors.New("message is blank; nothing sent")
			}
			seen := len(sent.Messages) - 1
			done := func(c somadevsdk.Chat) bool { return !c.Typing }
			if l, ok := d.(*localDashboard); ok {
				done = func(somadevsdk.Chat) bool { return l.idle() }
			}
			chat, err := waitChat(ctx, d, done)
			if err != nil {
				return err
			}
			seen = min(seen, len(chat.Messages))
			if viper.GetBool("json") {
				return printJSON(chat.Messages[seen:])
			}
			printTranscript(chat.Messages[seen:])
			if l, ok := d.(*localDashboard); ok {
				fmt.Printf("view: %s\n", l.app.State().Router.State().View)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "run against an in-process dashboard instead of --server")
	return cmd
}

func waitChat(ctx context.Context, d dashboard, done func(somadevsdk.Chat) bool) (somadevsdk.Chat, error) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return somadevsdk.Chat{}, ctx.Err()
		case <-t.C:
		}
		chat, err := d.Chat(ctx)
		if err != nil {
			return somadevsdk.Chat{}, err
		}
		if done(chat) {
			return chat, nil
		}
	}
}

func printTranscript(msgs []somadevsdk.ChatMessage) {
	user := color.New(color.FgCyan, color.Bold).SprintFunc()
	agent := color.New(color.FgMagenta, color.Bold).SprintFunc()
	for _, m := range msgs {
		who := user("you")
		if m.Role != "user" {
			who = agent(m.Agent)
		}
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), who, m.Content)
	}
}
