package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	line := `time="2026-01-02T15:04:05Z" level=error msg="update theme failed" component=preferences error="api PATCH /user/theme returned status 400: \"bad\"" attempt=2`
	got := Parse(line)

	want := Entry{
		Time:      "2026-01-02T15:04:05Z",
		Level:     "error",
		Component: "preferences",
		Message:   "update theme failed",
		Error:     `api PATCH /user/theme returned status 400: "bad"`,
		Fields:    [][2]string{{"attempt", "2"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_NonLogfmt(t *testing.T) {
	for _, line := range []string{
		"",
		"plain text line",
		`msg="no level here"`,
		`level=info msg="unterminated`,
	} {
		got := Parse(line)
		if got.Raw != line || got.Level != "" {
			t.Errorf("Parse(%q) = %+v, want raw", line, got)
		}
	}
}

func TestEntry_AtLeast(t *testing.T) {
	tests := []struct {
		entry Entry
		floor string
		want  bool
	}{
		{Entry{Level: "debug"}, "info", false},
		{Entry{Level: "info"}, "info", true},
		{Entry{Level: "error"}, "warning", true},
		{Entry{Level: "custom"}, "error", true},
		{Entry{Raw: "x"}, "error", true},
	}
	for _, tt := range tests {
		if got := tt.entry.AtLeast(tt.floor); got != tt.want {
			t.Errorf("%+v.AtLeast(%q) = %v, want %v", tt.entry, tt.floor, got, tt.want)
		}
	}
}
