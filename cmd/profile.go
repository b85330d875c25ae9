package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"socialclient/friends"
	"socialclient/session"
	"socialclient/utils"
)

func init() {
	rootCmd.AddCommand(profileCmd, searchCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("first-name", "", "first name")
	profileUpdateCmd.Flags().String("last-name", "", "last name")
	profileUpdateCmd.Flags().String("bio", "", "short bio, empty to clear")
	profileUpdateCmd.Flags().String("avatar", "", "avatar URL, empty to clear")
}

// resolveUser accepts "me", a numeric id or a username with or without @.
func resolveUser(ctx context.Context, arg string) (int64, error) {
	if arg == "me" {
		return app.Session.ID(), nil
	}
	if id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64); err == nil && id > 0 {
		return id, nil
	}
	username := strings.TrimPrefix(strings.TrimSpace(arg), "@")
	users, err := app.Client.SearchUsers(ctx, username)
	if err != nil {
		return 0, check(err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u.ID, nil
		}
	}
	return 0, utils.NotFound(fmt.Sprintf("no user named %q", username))
}

var profileCmd = &cobra.Command{
	Use:   "profile <user>",
	Short: "Show a user's profile and posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		ctx := ctxOf(cmd)
		userID, err := resolveUser(ctx, args[0])
		if err != nil {
			return err
		}

		status, profile, err := friends.NewManager(app.Client, app.Prompt, app.Logger).Relationship(ctx, userID)
		if err != nil {
			return check(err)
		}
		relationship := ""
		if userID != app.Session.ID() {
			relationship = describeStatus(status)
		}

		posts := ledger().ProfilePosts(userID)
		if err := posts.Load(ctx); err != nil {
			return check(err)
		}

		out := cmd.OutOrStdout()
		printProfile(out, profile, relationship)
		if userID != app.Session.ID() {
			for _, hint := range actionHints(status, profile.Username) {
				fmt.Fprintf(out, "  %s\n", hint)
			}
		}
		fmt.Fprintln(out)
		printPosts(out, posts.Posts(), "No posts yet.")
		return nil
	},
}

func describeStatus(s friends.Status) string {
	switch s {
	case friends.StatusFriends:
		return "friends"
	case friends.StatusPendingSent:
		return "friend request sent"
	case friends.StatusPendingReceived:
		return "wants to be your friend"
	}
	return "not friends"
}

// actionHints names a command for each relationship action open from s.
func actionHints(s friends.Status, username string) []string {
	var hints []string
	for _, ev := range friends.Actions(s) {
		switch ev {
		case friends.EventSend:
			hints = append(hints, "add friend: social friends send @"+username)
		case friends.EventAccept:
			hints = append(hints, "accept: social friends accept <request-id> (ids in `social friends --tab incoming`)")
		case friends.EventReject:
			hints = append(hints, "reject: social friends reject <request-id>")
		case friends.EventCancel:
			hints = append(hints, "withdraw: social friends cancel <request-id> (ids in `social friends --tab sent`)")
		case friends.EventRemove:
			hints = append(hints, "unfriend: social friends remove @"+username)
		}
	}
	return hints
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		current := app.Session.Current()
		update := session.ProfileUpdate{
			FirstName: current.FirstName,
			LastName:  current.LastName,
			Bio:       current.Bio,
			AvatarURL: current.AvatarURL,
		}
		flags := cmd.Flags()
		if flags.Changed("first-name") {
			update.FirstName, _ = flags.GetString("first-name")
		}
		if flags.Changed("last-name") {
			update.LastName, _ = flags.GetString("last-name")
		}
		if flags.Changed("bio") {
			update.Bio, _ = flags.GetString("bio")
		}
		if flags.Changed("avatar") {
			update.AvatarURL, _ = flags.GetString("avatar")
		}

		user, err := app.Session.UpdateProfile(ctxOf(cmd), update)
		if err != nil {
			return check(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s\n", author(*user))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find users by name or username",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		query, err := utils.NonEmpty(strings.Join(args, " "))
		if err != nil {
			return utils.Validation("search query must not be empty")
		}
		users, err := app.Client.SearchUsers(ctxOf(cmd), query)
		if err != nil {
			return check(err)
		}
		printUsers(cmd.OutOrStdout(), users, "Nobody matches "+strconv.Quote(query)+".")
		return nil
	},
}
