package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// resolveID accepts a full id or a unique prefix of one.
func resolveID(s *store.Store, arg string) (string, error) {
	if _, ok := s.Get(arg); ok {
		return arg, nil
	}
	var matches []string
	for _, t := range s.List() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", model.ErrNotFound, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous: %s", arg, strings.Join(matches, ", "))
	}
}

// parseDay reads an optional YYYY-MM-DD argument, defaulting to today.
func parseDay(args []string, now time.Time) (time.Time, error) {
	if len(args) == 0 || args[0] == "" || args[0] == "today" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", args[0], now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
	}
	return d, nil
}

// parseMonth reads an optional YYYY-MM argument, defaulting to this month.
func parseMonth(args []string, now time.Time) (time.Time, error) {
	if len(args) == 0 || args[0] == "" {
		return now, nil
	}
	m, err := time.ParseInLocation("2006-01", args[0], now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
	}
	return m, nil
}

// parseDue accepts the same formats the task service sends.
func parseDue(s string) (*time.Time, error) {
	t, err := model.ParseTimestamp(s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return &t, nil
}
