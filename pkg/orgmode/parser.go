package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

var (
	headlineRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(?:[\w@]+:)+))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{2}:\d{2}))?[^>]*>`)
	categoryRegex = regexp.MustCompile(`^:CATEGORY:\s+(.+)$`)
)

var orgPriorities = map[string]model.Priority{
	"A": model.PriorityHigh,
	"B": model.PriorityMedium,
	"C": model.PriorityLow,
}

// parseFile parses an Org-mode file.
func parseFile(filePath string) ([]model.Imported, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// ParseFiles parses multiple Org-mode files.
func ParseFiles(filePaths []string) ([]model.Imported, error) {
	var all []model.Imported
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// Parse reads TODO and DONE headlines. Body lines up to the next headline may
// carry a DEADLINE and a :CATEGORY: property; other body text becomes the
// description.
func Parse(r io.Reader, source string) ([]model.Imported, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.Imported
	var current *model.Imported
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Draft.Description = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Draft.Title != "" {
			tasks = append(tasks, *current)
		}
		current, body = nil, nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &model.Imported{
				Completed: matches[1] == "DONE",
				Source:    source,
				Draft: model.Draft{
					Title:    strings.TrimSpace(matches[3]),
					Priority: orgPriorities[matches[2]],
				},
			}
			if matches[4] != "" {
				current.Draft.Tags = strings.Split(strings.Trim(matches[4], ":"), ":")
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case deadlineRegex.MatchString(line):
			m := deadlineRegex.FindStringSubmatch(line)
			if due, ok := parseDeadline(m[1], m[2]); ok {
				current.Draft.DueDate = &due
			}
		case categoryRegex.MatchString(line):
			current.Draft.Category = strings.TrimSpace(categoryRegex.FindStringSubmatch(line)[1])
		case strings.HasPrefix(line, ":"), strings.HasPrefix(line, "SCHEDULED:"), strings.HasPrefix(line, "CLOSED:"):
			// drawers and planning lines
		default:
			body = append(body, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func parseDeadline(date, clock string) (time.Time, bool) {
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FilterTasks keeps the tasks carrying the given tag.
func FilterTasks(tasks []model.Imported, tag string) []model.Imported {
	var filtered []model.Imported
	for _, task := range tasks {
		for _, t := range task.Draft.Tags {
			if t == tag {
				filtered = append(filtered, task)
				break
			}
		}
	}
	return filtered
}
