package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Vishnu1805/taskdeck/internal"
)

func sampleTasks() []*internal.Task {
	return []*internal.Task{
		{
			ID:       "t1",
			Title:    "Write handover notes",
			Status:   internal.StatusPending,
			Priority: internal.PriorityUrgent,
			DueDate:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			Assignees: []internal.Assignee{
				{ID: "u1", Name: "Asha"},
			},
		},
		{
			ID:     "t2",
			Title:  "Archive old boards",
			Status: internal.StatusCompleted,
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "json", wantExt: "json"},
		{format: "yaml", wantExt: "yaml"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			e, err := NewExporter(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewExporter(%q) expected error", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := e.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleTasks(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded []internal.Task
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d tasks, want 2", len(decoded))
	}
	if decoded[0].ID != "t1" || decoded[0].Title != "Write handover notes" {
		t.Errorf("decoded[0] = %+v", decoded[0])
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleTasks(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d tasks, want 2", len(decoded))
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleTasks(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Tasks",
		"**Total:** 2",
		"## Pending",
		"## Completed",
		"- [ ] **Write handover notes**",
		"- [x] **Archive old boards**",
		"_(urgent)_",
		"due 2026-09-15",
		"assignee: Asha",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}

	// empty status groups are omitted entirely
	if strings.Contains(out, "## In Progress") {
		t.Error("markdown output has a heading for an empty group")
	}
}

func TestMarkdownExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "**Total:** 0") {
		t.Errorf("empty export = %q", buf.String())
	}
}
