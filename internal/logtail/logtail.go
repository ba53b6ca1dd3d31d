package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed logfmt line as written by logrus' text formatter.
type Entry struct {
	Time      string
	Level     string
	Component string
	Message   string
	Error     string
	// Fields holds the remaining key/value pairs in line order.
	Fields [][2]string
	// Raw is set when the line is not logfmt.
	Raw string
}

// Parse splits a logfmt line into an Entry. Lines without a level are
// returned with only Raw set.
func Parse(line string) Entry {
	pairs, ok := splitLogfmt(line)
	if !ok {
		return Entry{Raw: line}
	}

	var e Entry
	for _, kv := range pairs {
		switch kv[0] {
		case "time":
			e.Time = kv[1]
		case "level":
			e.Level = kv[1]
		case "component":
			e.Component = kv[1]
		case "msg":
			e.Message = kv[1]
		case "error":
			e.Error = kv[1]
		default:
			e.Fields = append(e.Fields, kv)
		}
	}
	if e.Level == "" {
		return Entry{Raw: line}
	}
	return e
}

var levelRank = map[string]int{
	"trace":   0,
	"debug":   1,
	"info":    2,
	"warning": 3,
	"error":   4,
	"fatal":   5,
	"panic":   6,
}

// AtLeast reports whether e is at or above floor. Unparsed lines always pass.
func (e Entry) AtLeast(floor string) bool {
	if e.Raw != "" {
		return true
	}
	have, ok := levelRank[e.Level]
	if !ok {
		return true
	}
	return have >= levelRank[floor]
}

func splitLogfmt(line string) ([][2]string, bool) {
	var pairs [][2]string
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t\"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return nil, false
			}
			unquoted, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				return nil, false
			}
			value = unquoted
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		pairs = append(pairs, [2]string{key, value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}

// closingQuote returns the index of the quote ending the string literal that
// starts at s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
