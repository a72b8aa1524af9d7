package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAPIKey = "lin_api_0123456789abcdef"

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "linear-cmd-test-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}
	// Keep .env lookups, the stored token and config search away from the
	// developer's real files.
	_ = os.Chdir(tmp)
	_ = os.Setenv("HOME", tmp)
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "LINEAR_") {
			_ = os.Unsetenv(name)
		}
	}
	code := m.Run()
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

type call struct {
	Name      string
	Variables map[string]any
	Auth      string
}

// fakeLinear answers GraphQL operations by name with canned data.
type fakeLinear struct {
	mu     sync.Mutex
	calls  []call
	data   map[string]string
	status map[string]int
	header map[string]http.Header
}

func newFakeLinear(t *testing.T) (*fakeLinear, *httptest.Server) {
	t.Helper()
	f := &fakeLinear{
		data:   defaultData(),
		status: map[string]int{},
		header: map[string]http.Header{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeLinear) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query         string         `json:"query"`
		Variables     map[string]any `json:"variables"`
		OperationName string         `json:"operationName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, call{Name: req.OperationName, Variables: req.Variables, Auth: r.Header.Get("Authorization")})
	data, ok := f.data[req.OperationName]
	status := f.status[req.OperationName]
	for k, v := range f.header[req.OperationName] {
		w.Header()[k] = v
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	if !ok {
		_, _ = io.WriteString(w, `{"errors":[{"message":"Entity not found","extensions":{"code":"INVALID_INPUT"}}]}`)
		return
	}
	if strings.HasPrefix(data, `{"errors"`) {
		_, _ = io.WriteString(w, data)
		return
	}
	_, _ = fmt.Fprintf(w, `{"data":%s}`, data)
}

func (f *fakeLinear) set(op, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[op] = data
}

// find returns the calls made for op.
func (f *fakeLinear) find(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Name == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeLinear) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const issueJSON = `{
	"id": "issue-1", "identifier": "ENG-1", "title": "Login fails on Safari",
	"description": "Steps to reproduce", "url": "https://linear.app/acme/issue/ENG-1",
	"priority": 2,
	"state": {"id": "st-todo", "name": "Todo", "type": "unstarted", "position": 1},
	"team": {"id": "team-eng", "key": "ENG", "name": "Engineering"},
	"labels": {"nodes": [{"id": "lbl-bug", "name": "Bug"}]},
	"createdAt": "2026-01-01T00:00:00Z", "updatedAt": "2026-01-02T00:00:00Z"
}`

func defaultData() map[string]string {
	return map[string]string{
		"Viewer": `{"viewer": {"id": "user-me", "name": "Ada Lovelace", "email": "ada@example.com", "active": true}}`,
		"Teams": `{"teams": {"nodes": [
			{"id": "team-eng", "key": "ENG", "name": "Engineering"},
			{"id": "team-des", "key": "DES", "name": "Design"}]}}`,
		"TeamStates": `{"team": {"id": "team-eng", "states": {"nodes": [
			{"id": "st-backlog", "name": "Backlog", "type": "backlog", "position": 0},
			{"id": "st-todo", "name": "Todo", "type": "unstarted", "position": 1},
			{"id": "st-progress", "name": "In Progress", "type": "started", "position": 2},
			{"id": "st-done", "name": "Done", "type": "completed", "position": 3}]}}}`,
		"TeamLabels": `{"team": {"id": "team-eng", "labels": {"nodes": [
			{"id": "lbl-bug", "name": "Bug"},
			{"id": "lbl-feature", "name": "Feature"}]}}}`,
		"Projects":     `{"projects": {"nodes": [{"id": "proj-cli", "name": "CLI Rewrite", "state": "started"}]}}`,
		"Issues":       `{"issues": {"nodes": [` + issueJSON + `], "pageInfo": {"hasNextPage": false}}}`,
		"Issue":        `{"issue": ` + issueJSON + `}`,
		"SearchIssues": `{"searchIssues": {"nodes": [` + issueJSON + `]}}`,
		"SearchProjects": `{"projects": {"nodes": [
			{"id": "proj-login", "name": "Login revamp", "state": "started"},
			{"id": "proj-mobile", "name": "Mobile login", "state": "planned"}]}}`,
		"CreateIssue":  `{"issueCreate": {"success": true, "issue": ` + issueJSON + `}}`,
		"UpdateIssue":  `{"issueUpdate": {"success": true, "issue": ` + strings.Replace(issueJSON, `"st-todo", "name": "Todo", "type": "unstarted"`, `"st-done", "name": "Done", "type": "completed"`, 1) + `}}`,
		"CreateComment": `{"commentCreate": {"success": true, "comment": {"id": "c1", "body": "Looks good", "createdAt": "2026-01-03T00:00:00Z"}}}`,
		"IssueComments": `{"issue": {"id": "issue-1", "identifier": "ENG-1", "comments": {"nodes": [
			{"id": "c1", "body": "First!", "createdAt": "2026-01-03", "user": {"id": "user-me", "name": "Ada Lovelace"}}]}}}`,
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

// harness runs commands against a fake Linear API.
type harness struct {
	t         *testing.T
	fake      *fakeLinear
	url       string
	dir       string
	config    string
	tokenPath string
	stdin     string
	getenv    func(string) string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake, srv := newFakeLinear(t)
	dir := t.TempDir()
	h := &harness{
		t:         t,
		fake:      fake,
		url:       srv.URL,
		dir:       dir,
		config:    filepath.Join(dir, "config.toml"),
		tokenPath: filepath.Join(dir, "token"),
		getenv:    func(string) string { return "" },
	}
	h.writeConfig(fmt.Sprintf("api_url = %q\nmax_retries = 0\n", srv.URL))
	return h
}

func (h *harness) writeConfig(extra string) {
	h.t.Helper()
	existing, _ := os.ReadFile(h.config)
	require.NoError(h.t, os.WriteFile(h.config, append(existing, extra...), 0o600))
}

func (h *harness) run(args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(h.stdin), &stdout, &stderr)
	a.configPaths = []string{h.config}
	a.tokenPath = h.tokenPath
	a.getenv = h.getenv
	code := run(context.Background(), a, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// runAuthed runs args with --api-key appended, leaving the command name
// first for alias expansion.
func (h *harness) runAuthed(args ...string) result {
	h.t.Helper()
	return h.run(append(args, "--api-key", testAPIKey)...)
}

func nested(t *testing.T, v any, path ...string) any {
	t.Helper()
	for _, p := range path {
		m, ok := v.(map[string]any)
		require.Truef(t, ok, "expected object at %q, got %T", p, v)
		v = m[p]
	}
	return v
}
