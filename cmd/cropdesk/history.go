package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/example/cropdesk/internal/history"
)

type historyCmd struct {
	*root
	fs     *flag.FlagSet
	page   int
	limit  int
	asJSON bool
}

func (h *historyCmd) FlagSet() *flag.FlagSet {
	return h.fs
}

func (h *historyCmd) Template() string {
	return "history.txt"
}

func parseHistoryCmd(args []string, r *root) (*historyCmd, error) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	c := &historyCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.page, "page", 1, "page to list, starting at 1")
	fs.IntVar(&c.limit, "limit", history.DefaultLimit, "records per page")
	fs.BoolVar(&c.asJSON, "json", false, "print the page as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (h *historyCmd) Run() error {
	args := h.fs.Args()
	switch args[0] {
	case "list", "ls":
		return h.runList()
	case "delete", "rm":
		if len(args) < 2 {
			return &UsageError{of: h}
		}
		return h.runDelete(args[1:])
	default:
		return fmt.Errorf("unknown history command: %s", args[0])
	}
}

func (h *historyCmd) runList() error {
	page, err := h.store().List(h.page, h.limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if h.asJSON {
		enc := json.NewEncoder(h.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	tw := tabwriter.NewWriter(h.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tRESULTS")
	for _, rec := range page.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.ID, rec.Timestamp, strings.Join(rec.LocalResultPaths, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(h.stdout, "page %d of %d (%d records)\n", page.Page, max(page.Pages, 1), page.Total)
	return nil
}

func (h *historyCmd) runDelete(ids []string) error {
	store := h.store()
	for _, id := range ids {
		if err := store.Delete(id); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no history record %q", id)
			}
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		fmt.Fprintf(h.stdout, "deleted %s\n", id)
	}
	return nil
}
