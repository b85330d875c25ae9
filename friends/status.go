package friends

import (
	"fmt"

	"socialclient/models"
	"socialclient/utils"
)

// Status is the relationship between the current user and one counterpart.
type Status string

const (
	StatusNone            Status = "none"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingReceived Status = "pending_received"
	StatusFriends         Status = "friends"
)

// Event is something that happens to a relationship, initiated either by
// the current user or by the counterpart.
type Event string

const (
	EventSend     Event = "send"
	EventReceive  Event = "receive"
	EventAccept   Event = "accept"
	EventAccepted Event = "accepted"
	EventReject   Event = "reject"
	EventRejected Event = "rejected"
	EventCancel   Event = "cancel"
	EventRemove   Event = "remove"
)

var transitions = map[Status]map[Event]Status{
	StatusNone: {
		EventSend:    StatusPendingSent,
		EventReceive: StatusPendingReceived,
	},
	StatusPendingSent: {
		EventAccepted: StatusFriends,
		EventRejected: StatusNone,
		EventCancel:   StatusNone,
	},
	StatusPendingReceived: {
		EventAccept: StatusFriends,
		EventReject: StatusNone,
	},
	StatusFriends: {
		EventRemove: StatusNone,
	},
}

// Transition applies ev to from. Edges outside the relationship lifecycle
// are rejected with a Conflict error.
func Transition(from Status, ev Event) (Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, utils.Conflict(fmt.Sprintf("cannot %s while %s", ev, from))
}

// initiated lists the events the current user can start, in the order
// they are offered.
var initiated = []Event{EventSend, EventAccept, EventReject, EventCancel, EventRemove}

// Actions lists the events the current user may initiate from s. A view
// offers nothing else.
func Actions(s Status) []Event {
	var out []Event
	for _, ev := range initiated {
		if _, err := Transition(s, ev); err == nil {
			out = append(out, ev)
		}
	}
	return out
}

// StatusOf reads the backend's view of the relationship from a profile.
func StatusOf(p *models.Profile) Status {
	if p.IsFriend {
		return StatusFriends
	}
	switch Status(p.FriendRequestStatus) {
	case StatusPendingSent:
		return StatusPendingSent
	case StatusPendingReceived:
		return StatusPendingReceived
	}
	return StatusNone
}
