// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"todo-backend/internal/client"
	"todo-backend/internal/tasks"
)

// Exit codes.
const (
	exitOK      = 0
	exitUser    = 1
	exitBackend = 3
)

const defaultAPI = "http://localhost:5000"

const usage = `Usage: todo [--api <url>] <command> [args]

Commands:
  list                          Show todos grouped by category (default)
  add [-c cat] [-p pri] <text>  Create a todo (priority low|medium|high, default low)
  done <id>                     Mark a todo completed
  undo <id>                     Mark a todo not completed
  toggle <id>                   Flip the completed flag
  rm <id>                       Delete a todo
  rmcat <category>              Delete every todo in a category
  categories                    List categories
  help                          Show this help

The API URL defaults to $TODO_API, then ` + defaultAPI + `.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, getenv func(string) string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	api := fs.String("api", "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitUser
	}
	if *api == "" {
		*api = getenv("TODO_API")
	}
	if *api == "" {
		*api = defaultAPI
	}

	rest := fs.Args()
	cmd := "list"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	cache := client.NewCache(client.New(*api, nil))

	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return exitOK
	case "list", "ls":
		return runList(ctx, cache, out, errOut)
	case "categories":
		return runCategories(ctx, cache, out, errOut)
	case "add":
		return runAdd(ctx, cache, rest, out, errOut)
	case "done", "undo":
		return runSetCompleted(ctx, cache, rest, cmd == "done", out, errOut)
	case "toggle":
		return runToggle(ctx, cache, rest, out, errOut)
	case "rm":
		id, ok := oneArg(rest, "id", errOut)
		if !ok {
			return exitUser
		}
		if err := cache.Delete(ctx, id); err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintln(out, "ok")
		return exitOK
	case "rmcat":
		category, ok := oneArg(rest, "category", errOut)
		if !ok {
			return exitUser
		}
		if err := cache.DeleteCategory(ctx, category); err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintln(out, "ok")
		return exitOK
	default:
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmd)
		return exitUser
	}
}

func runList(ctx context.Context, cache *client.Cache, out, errOut io.Writer) int {
	snap, err := cache.Refresh(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if len(snap.Tasks()) == 0 {
		fmt.Fprintln(out, "no todos")
		return exitOK
	}
	for _, g := range snap.Groups() {
		writeGroup(out, g)
	}
	return exitOK
}

func runCategories(ctx context.Context, cache *client.Cache, out, errOut io.Writer) int {
	snap, err := cache.Refresh(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	for _, c := range snap.Categories() {
		fmt.Fprintln(out, c)
	}
	return exitOK
}

func runAdd(ctx context.Context, cache *client.Cache, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var category, priority string
	fs.StringVar(&category, "c", "", "")
	fs.StringVar(&category, "category", "", "")
	fs.StringVar(&priority, "p", string(tasks.PriorityLow), "")
	fs.StringVar(&priority, "priority", string(tasks.PriorityLow), "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitUser
	}

	p := tasks.Priority(strings.ToLower(strings.TrimSpace(priority)))
	if !p.Valid() {
		fmt.Fprintf(errOut, "error: invalid priority %q (want low, medium or high)\n", priority)
		return exitUser
	}

	t, err := cache.Add(ctx, strings.Join(fs.Args(), " "), category, p)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, t.ID)
	return exitOK
}

func runSetCompleted(ctx context.Context, cache *client.Cache, args []string, completed bool, out, errOut io.Writer) int {
	id, ok := oneArg(args, "id", errOut)
	if !ok {
		return exitUser
	}
	t, err := cache.SetCompleted(ctx, id, completed)
	if err != nil {
		return fail(errOut, err)
	}
	if t == nil {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitUser
	}
	fmt.Fprintln(out, "ok")
	return exitOK
}

func runToggle(ctx context.Context, cache *client.Cache, args []string, out, errOut io.Writer) int {
	id, ok := oneArg(args, "id", errOut)
	if !ok {
		return exitUser
	}
	if _, err := cache.Refresh(ctx); err != nil {
		return fail(errOut, err)
	}
	t, err := cache.Toggle(ctx, id)
	if err != nil {
		return fail(errOut, err)
	}
	if t == nil {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitUser
	}
	fmt.Fprintln(out, "ok")
	return exitOK
}

func oneArg(args []string, what string, errOut io.Writer) (string, bool) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintf(errOut, "error: %s required\n", what)
		return "", false
	}
	return args[0], true
}

// fail reports err and picks the exit code: validation and 4xx answers are
// user errors, everything else is a backend error.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrEmptyText),
		errors.Is(err, client.ErrEmptyCategory),
		errors.Is(err, client.ErrUnknownTask):
		return exitUser
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		return exitUser
	}
	return exitBackend
}
