package logtail

import "strings"

// Level is the severity recognised in a backend log line.
type Level string

const (
	LevelNone     Level = ""
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// levelTokens is ordered so longer tokens win over prefixes ("WARNING" before "WARN").
var levelTokens = []struct {
	token string
	level Level
}{
	{"CRITICAL", LevelCritical},
	{"FATAL", LevelCritical},
	{"ERROR", LevelError},
	{"WARNING", LevelWarning},
	{"WARN", LevelWarning},
	{"INFO", LevelInfo},
	{"DEBUG", LevelDebug},
}

// LevelOf reports the first severity token found in line. Both the python
// logging layout ("2025-01-02 10:00:00,123 - backend - INFO - msg") and the
// uvicorn layout ("INFO:     Started server") are recognised.
func LevelOf(line string) Level {
	best, bestAt := LevelNone, -1
	for _, lt := range levelTokens {
		idx := indexToken(line, lt.token)
		if idx < 0 {
			continue
		}
		if bestAt < 0 || idx < bestAt {
			best, bestAt = lt.level, idx
		}
	}
	return best
}

// indexToken finds token as a standalone word.
func indexToken(line, token string) int {
	offset := 0
	for {
		idx := strings.Index(line[offset:], token)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(token)
		if isBoundary(line, start-1) && isBoundary(line, end) {
			return start
		}
		offset = end
	}
}

func isBoundary(line string, i int) bool {
	if i < 0 || i >= len(line) {
		return true
	}
	c := line[i]
	return !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_')
}
