package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"socialclient/models"
	"socialclient/utils"
)

// describe turns an error into the line printed to the user.
func describe(err error) string {
	switch utils.CodeOf(err) {
	case utils.CodeTransport:
		return err.Error() + " (the backend could not be reached, run the command again to retry)"
	case utils.CodeConflict, utils.CodeNotFound:
		return utils.Message(err) + " (the list has been refreshed)"
	case utils.CodeInternal:
		return err.Error()
	}
	return utils.Message(err)
}

func author(u models.User) string {
	return fmt.Sprintf("%s (@%s)", u.DisplayName(), u.Username)
}

func printPost(w io.Writer, p models.Post, now time.Time) {
	fmt.Fprintf(w, "#%d  %s  %s\n", p.ID, author(p.Author), utils.RelativeTime(p.CreatedAt, now))
	for _, line := range strings.Split(p.Content, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	liked := ""
	if p.IsLiked {
		liked = " (you like this)"
	}
	fmt.Fprintf(w, "    likes %d%s, comments %d\n\n", p.LikesCount, liked, p.CommentsCount)
}

func printPosts(w io.Writer, posts []models.Post, empty string) {
	if len(posts) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	now := time.Now()
	for _, p := range posts {
		printPost(w, p, now)
	}
}

func printComments(w io.Writer, comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	now := time.Now()
	for _, c := range comments {
		fmt.Fprintf(w, "  [%d] %s, %s\n      %s\n", c.ID, author(c.Author), utils.RelativeTime(c.CreatedAt, now), c.Content)
	}
}

func printProfile(w io.Writer, p *models.Profile, status string) {
	fmt.Fprintf(w, "%s  #%d\n", author(p.User), p.ID)
	if p.Bio != "" {
		fmt.Fprintf(w, "  %s\n", p.Bio)
	}
	friends := "-"
	if p.FriendsCount != nil {
		friends = fmt.Sprint(*p.FriendsCount)
	}
	fmt.Fprintf(w, "  friends: %s\n", friends)
	if status != "" {
		fmt.Fprintf(w, "  relationship: %s\n", status)
	}
	fmt.Fprintf(w, "  joined %s\n", utils.RelativeTime(p.CreatedAt, time.Now()))
}

func printUsers(w io.Writer, users []models.User, empty string) {
	if len(users) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t@%s\t%s\n", u.ID, u.Username, u.DisplayName())
	}
	tw.Flush()
}

func printRequests(w io.Writer, requests []models.FriendRequest, selfID int64, empty string) {
	if len(requests) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tUSER\tSENT")
	for _, r := range requests {
		other := r.Counterpart(selfID)
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, author(other), utils.RelativeTime(r.CreatedAt, now))
	}
	tw.Flush()
}

func printConversations(w io.Writer, conversations []models.ConversationSummary, preview func(models.ConversationSummary) string) {
	if len(conversations) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tUNREAD\tWHEN\tLAST MESSAGE")
	for _, c := range conversations {
		when := ""
		if c.LastMessage != nil {
			when = utils.RelativeTime(c.LastMessage.CreatedAt, now)
		}
		unread := ""
		if c.UnreadCount > 0 {
			unread = fmt.Sprint(c.UnreadCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", author(c.User), unread, when, preview(c))
	}
	tw.Flush()
}

func printMessages(w io.Writer, msgs []models.Message, isOwn func(models.Message) bool) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet. Say hello!")
		return
	}
	now := time.Now()
	for _, m := range msgs {
		who := m.Sender.DisplayName()
		if isOwn(m) {
			who = "you"
		}
		fmt.Fprintf(w, "[%s, %s] %s: %s\n", utils.ClockTime(m.CreatedAt), utils.RelativeTime(m.CreatedAt, now), who, m.Content)
	}
}

// printMetrics writes the request counters gathered during the run.
func printMetrics(w io.Writer, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "metrics unavailable: %v\n", err)
		return
	}
	var lines []string
	for _, mf := range families {
		if mf.GetName() != "socialclient_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s %v", strings.Join(labels, " "), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
