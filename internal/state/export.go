package state

import (
	"fmt"
	"io"
	"strings"
)

// eventTags are the short fixed-width labels used in text output.
var eventTags = map[EventType]string{
	EventSelected:      "●SEL ",
	EventDismissed:     "○DIS ",
	EventCollaboration: "★COL ",
	EventOnline:        "▲ON  ",
	EventOffline:       "▼OFF ",
	EventMoved:         "→MOV ",
}

func formatEventType(t EventType) string {
	if tag, ok := eventTags[t]; ok {
		return tag
	}
	return "?    "
}

// WriteEvents writes the last n events, oldest first.
func WriteEvents(w io.Writer, events []Event, n int) {
	fmt.Fprintln(w, "Event Log")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}

	for _, e := range events {
		name := e.Name
		if name == "" {
			name = e.EntityID
		}
		line := fmt.Sprintf("%s %s %s", e.Timestamp.Format("15:04:05"), formatEventType(e.Type), name)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}
