package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"socialclient/feed"
	"socialclient/models"
	"socialclient/utils"
)

func init() {
	rootCmd.AddCommand(feedCmd, postCmd, likeCmd, commentsCmd, commentCmd)
	postCmd.AddCommand(postDeleteCmd)
	commentCmd.AddCommand(commentDeleteCmd)
}

func ledger() *feed.Ledger {
	return feed.NewLedger(app.Client, app.Prompt, app.Logger)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.Validation(fmt.Sprintf("%q is not a valid %s id", arg, what))
	}
	return id, nil
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show posts from you and your friends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		posts := ledger().Feed()
		if err := check(posts.Load(ctxOf(cmd))); err != nil {
			return err
		}
		printPosts(cmd.OutOrStdout(), posts.Posts(), "Your feed is empty. Add friends or write a post!")
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		post, err := ledger().Feed().Create(ctxOf(cmd), strings.Join(args, " "))
		if err := check(err); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Published:")
		printPosts(cmd.OutOrStdout(), []models.Post{*post}, "")
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if err := check(ledger().DeletePost(ctxOf(cmd), postID)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Post #%d deleted.\n", postID)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post, or take the like back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		result, err := ledger().ToggleLike(ctxOf(cmd), postID)
		if err := check(err); err != nil {
			return err
		}
		verb := "Unliked"
		if result.Liked {
			verb = "Liked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s post #%d, %d likes.\n", verb, postID, result.LikesCount)
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <post-id>",
	Short: "Show the comments on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		panel := ledger().Comments(postID, nil)
		if _, err := panel.Toggle(ctxOf(cmd)); err != nil {
			return check(err)
		}
		printComments(cmd.OutOrStdout(), panel.Comments())
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		l := ledger()
		posts := l.Feed()
		panel := l.Comments(postID, posts.Load)

		comment, err := panel.Add(ctxOf(cmd), strings.Join(args[1:], " "))
		if err := check(err); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d added", comment.ID)
		if post, ok := posts.Post(postID); ok {
			fmt.Fprintf(cmd.OutOrStdout(), ", the post now has %d comments", post.CommentsCount)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ".")
		return nil
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		postID, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		commentID, err := parseID(args[1], "comment")
		if err != nil {
			return err
		}
		l := ledger()
		posts := l.Feed()
		panel := l.Comments(postID, posts.Load)
		if err := check(panel.Delete(ctxOf(cmd), commentID)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d deleted", commentID)
		if post, ok := posts.Post(postID); ok {
			fmt.Fprintf(cmd.OutOrStdout(), ", the post now has %d comments", post.CommentsCount)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ".")
		return nil
	},
}
