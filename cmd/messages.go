package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"socialclient/config"
	"socialclient/messages"
	"socialclient/utils"
)

func init() {
	rootCmd.AddCommand(messagesCmd, chatCmd, sendCmd)

	messagesCmd.Flags().BoolP("watch", "w", false, "keep refreshing on SOCIAL_REFRESH_CRON until interrupted")
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List your conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		inbox := messages.NewInbox(app.Client, app.Logger)
		defer inbox.Close()

		out := cmd.OutOrStdout()
		show := func(ctx context.Context) error {
			if err := inbox.Load(ctx); err != nil {
				return check(err)
			}
			printConversations(out, inbox.Conversations(), messages.Preview)
			if n := inbox.Unread(); n > 0 {
				fmt.Fprintf(out, "%d unread\n", n)
			}
			return nil
		}
		if err := show(ctxOf(cmd)); err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); !watch {
			return nil
		}
		ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt)
		defer stop()
		return messages.Watch(ctx, config.Cfg.RefreshCron, func(ctx context.Context) error {
			fmt.Fprintln(out)
			return show(ctx)
		}, app.Logger)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <user>",
	Short: "Open a conversation and reply interactively",
	Long: `chat shows the conversation with a user and sends every line you type.
An empty line or /r refreshes the conversation, /q or end of input leaves.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		ctx := ctxOf(cmd)
		userID, err := resolveUser(ctx, args[0])
		if err != nil {
			return err
		}

		conv := messages.NewConversation(app.Client, app.Session, app.Logger)
		defer conv.Close()
		if err := conv.Open(ctx, userID); err != nil {
			return check(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Conversation with %s\n", author(conv.Counterpart().User))
		printMessages(out, conv.Messages(), conv.IsOwn)
		shown := len(conv.Messages())

		for {
			line, err := app.Prompt.Line(">")
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			switch text := strings.TrimSpace(line); text {
			case "/q":
				return nil
			case "", "/r":
				if err := conv.Refresh(ctx); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), describe(check(err)))
					continue
				}
			default:
				if _, err := conv.Send(ctx, text); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), describe(check(err)))
					continue
				}
			}

			msgs := conv.Messages()
			if shown > len(msgs) {
				shown = 0
			}
			if len(msgs) > shown {
				printMessages(out, msgs[shown:], conv.IsOwn)
			}
			shown = len(msgs)
		}
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <user> <text>",
	Short: "Send a single message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		ctx := ctxOf(cmd)
		userID, err := resolveUser(ctx, args[0])
		if err != nil {
			return err
		}

		conv := messages.NewConversation(app.Client, app.Session, app.Logger)
		defer conv.Close()
		if err := conv.Open(ctx, userID); err != nil {
			return check(err)
		}
		msg, err := conv.Send(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return check(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s at %s\n", author(conv.Counterpart().User), utils.ClockTime(msg.CreatedAt))
		return nil
	},
}
