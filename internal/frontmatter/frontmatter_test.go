package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Document
	}{
		{
			name: "basic",
			content: `---
title: "Test Issue"
team: ENG
assignee: me
priority: 2
---

# Issue Description

This is a test issue.
`,
			want: &Document{
				Issue: Issue{Title: "Test Issue", Team: "ENG", Assignee: "me", Priority: intPtr(2)},
				Body:  "# Issue Description\n\nThis is a test issue.\n",
			},
		},
		{
			name: "labels and project",
			content: `---
title: Bug Fix
labels:
  - bug
  - authentication
project: "Web App Stability"
status: todo
cycle: current
---
Found a race condition.
`,
			want: &Document{
				Issue: Issue{
					Title:   "Bug Fix",
					Labels:  []string{"bug", "authentication"},
					Project: "Web App Stability",
					Status:  "todo",
					Cycle:   "current",
				},
				Body: "Found a race condition.\n",
			},
		},
		{
			name:    "empty body",
			content: "---\ntitle: Empty\nteam: ENG\n---\n",
			want:    &Document{Issue: Issue{Title: "Empty", Team: "ENG"}},
		},
		{
			name:    "windows line endings",
			content: "---\r\ntitle: CRLF\r\n---\r\n\r\nBody\r\n",
			want:    &Document{Issue: Issue{Title: "CRLF"}, Body: "Body\n"},
		},
		{
			name:    "body may contain rules",
			content: "---\ntitle: Rules\n---\nabove\n---\nbelow\n",
			want:    &Document{Issue: Issue{Title: "Rules"}, Body: "above\n---\nbelow\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		is      error
	}{
		{name: "no frontmatter", content: "# Just markdown\n", is: ErrNoFrontmatter},
		{name: "unclosed", content: "---\ntitle: x\n", is: ErrUnclosed},
		{name: "missing title", content: "---\nteam: ENG\n---\n", wantErr: "title is required"},
		{name: "blank title", content: "---\ntitle: \"  \"\n---\n", wantErr: "title is required"},
		{name: "priority too high", content: "---\ntitle: x\npriority: 5\n---\n", wantErr: "priority must be between 1 and 4"},
		{name: "priority zero", content: "---\ntitle: x\npriority: 0\n---\n", wantErr: "got 0"},
		{name: "bad yaml", content: "---\ntitle: [unclosed\n---\n", wantErr: "failed to parse frontmatter YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issue.md")
	if err := os.WriteFile(path, []byte("---\ntitle: From file\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if doc.Issue.Title != "From file" || doc.Body != "body\n" {
		t.Errorf("ParseFile() = %+v", doc)
	}

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(missing) = %v, want not-exist", err)
	}
}
