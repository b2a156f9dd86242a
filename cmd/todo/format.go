package main

import (
	"fmt"
	"io"
	"strings"

	"todo-backend/internal/client"
	"todo-backend/internal/tasks"
)

const separator = "------------"

func writeGroup(w io.Writer, g client.Group) {
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, displayText(g.Category))
	fmt.Fprintln(w, separator)
	for _, t := range g.Tasks {
		writeTask(w, t)
	}
}

// writeTask format: "  [x] {TEXT} ({PRIORITY})  {ID}"
func writeTask(w io.Writer, t tasks.Task) {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	fmt.Fprintf(w, "  %s %s (%s)  %s\n", mark, displayText(t.Text), t.Priority, t.ID)
}

// displayText flattens newlines; blank text becomes "(untitled)".
func displayText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
