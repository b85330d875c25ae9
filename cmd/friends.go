package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"socialclient/friends"
)

func init() {
	rootCmd.AddCommand(friendsCmd)
	friendsCmd.AddCommand(friendSendCmd, friendAcceptCmd, friendRejectCmd, friendCancelCmd, friendRemoveCmd)

	friendsCmd.PersistentFlags().String("tab", string(friends.SetFriends), "list to show after the command: friends, incoming or sent")
}

// friendsView builds a manager on the tab chosen with --tab.
func friendsView(cmd *cobra.Command) (*friends.Manager, error) {
	if err := signedIn(); err != nil {
		return nil, err
	}
	tab, _ := cmd.Flags().GetString("tab")
	set, err := friends.ParseSet(tab)
	if err != nil {
		return nil, err
	}
	m := friends.NewManager(app.Client, app.Prompt, app.Logger)
	if err := m.Switch(ctxOf(cmd), set); err != nil {
		return nil, check(err)
	}
	return m, nil
}

func printTab(cmd *cobra.Command, m *friends.Manager) {
	out := cmd.OutOrStdout()
	self := app.Session.ID()
	switch m.Active() {
	case friends.SetFriends:
		printUsers(out, m.Friends(), "No friends yet. Find people with `social search`.")
	case friends.SetIncoming:
		printRequests(out, m.Incoming(), self, "No incoming friend requests.")
	case friends.SetSent:
		printRequests(out, m.Sent(), self, "No pending sent requests.")
	}
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List friends and friend requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := friendsView(cmd)
		if err != nil {
			return err
		}
		printTab(cmd, m)
		return nil
	},
}

// friendAction runs one relationship mutation against the chosen tab and
// prints the reloaded tab, including after a stale-state rejection.
func friendAction(use, short, what string, run func(cmd *cobra.Command, m *friends.Manager, id int64) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := friendsView(cmd)
			if err != nil {
				return err
			}
			id, err := resolveTarget(cmd, args[0], what)
			if err != nil {
				return err
			}
			done, err := run(cmd, m, id)
			if err != nil {
				printTab(cmd, m)
				return check(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			printTab(cmd, m)
			return nil
		},
	}
}

func resolveTarget(cmd *cobra.Command, arg, what string) (int64, error) {
	if what == "user" {
		return resolveUser(ctxOf(cmd), arg)
	}
	return parseID(arg, what)
}

var friendSendCmd = friendAction("send <user>", "Send a friend request", "user",
	func(cmd *cobra.Command, m *friends.Manager, userID int64) (string, error) {
		if _, err := m.Send(ctxOf(cmd), userID); err != nil {
			return "", err
		}
		return "Friend request sent.", nil
	})

var friendAcceptCmd = friendAction("accept <request-id>", "Accept a friend request", "request",
	func(cmd *cobra.Command, m *friends.Manager, requestID int64) (string, error) {
		if _, err := m.Accept(ctxOf(cmd), requestID); err != nil {
			return "", err
		}
		return "Friend request accepted.", nil
	})

var friendRejectCmd = friendAction("reject <request-id>", "Reject a friend request", "request",
	func(cmd *cobra.Command, m *friends.Manager, requestID int64) (string, error) {
		if _, err := m.Reject(ctxOf(cmd), requestID); err != nil {
			return "", err
		}
		return "Friend request rejected.", nil
	})

var friendCancelCmd = friendAction("cancel <request-id>", "Withdraw a friend request you sent", "request",
	func(cmd *cobra.Command, m *friends.Manager, requestID int64) (string, error) {
		if _, err := m.Cancel(ctxOf(cmd), requestID); err != nil {
			return "", err
		}
		return "Friend request withdrawn.", nil
	})

var friendRemoveCmd = friendAction("remove <user>", "Remove a friend", "user",
	func(cmd *cobra.Command, m *friends.Manager, userID int64) (string, error) {
		if err := m.Remove(ctxOf(cmd), userID); err != nil {
			return "", err
		}
		return "Friend removed.", nil
	})
