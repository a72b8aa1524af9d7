// Package frontmatter reads issue drafts written as markdown with a YAML
// header:
//
//	---
//	title: Crash on start
//	team: ENG
//	labels: [bug]
//	priority: 2
//	---
//
//	Steps to reproduce...
package frontmatter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Issue is the YAML header of an issue draft.
type Issue struct {
	Title    string   `yaml:"title"`
	Team     string   `yaml:"team,omitempty"`
	Assignee string   `yaml:"assignee,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	Priority *int     `yaml:"priority,omitempty"` // 1=Urgent .. 4=Low
	Labels   []string `yaml:"labels,omitempty"`
	Project  string   `yaml:"project,omitempty"`
	Cycle    string   `yaml:"cycle,omitempty"`
}

// Document is a parsed draft: the header and the markdown body below it.
type Document struct {
	Issue Issue
	Body  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found: the file must start with a '---' line")
	ErrUnclosed      = errors.New("frontmatter closing '---' not found")
)

const delimiter = "---"

// ParseFile reads and parses the draft at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path given by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse splits content into header and body and validates the header. The
// body has leading blank lines removed.
func Parse(content string) (*Document, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != delimiter {
		return nil, ErrNoFrontmatter
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, ErrUnclosed
	}

	var issue Issue
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &issue); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter YAML: %w", err)
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), " \t\n")
	return &Document{Issue: issue, Body: body}, nil
}

// Validate checks the fields the API would otherwise reject.
func (i Issue) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("title is required in frontmatter")
	}
	if i.Priority != nil && (*i.Priority < 1 || *i.Priority > 4) {
		return fmt.Errorf("priority must be between 1 and 4 (1=Urgent, 2=High, 3=Medium, 4=Low), got %d", *i.Priority)
	}
	return nil
}
