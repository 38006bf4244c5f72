package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	lines, _, err := readTail(path, maxLines, false)
	return lines, err
}

// Tail is Read for callers that continue with FollowFrom. It returns only
// complete lines and the byte offset just past the last of them, so an
// unterminated final line is delivered by the follow instead.
func Tail(path string, maxLines int) ([]string, int64, error) {
	return readTail(path, maxLines, true)
}

func readTail(path string, maxLines int, completeOnly bool) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var consumed int64
	partial := false
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if advance > 0 {
			if data[advance-1] == '\n' {
				consumed += int64(advance)
			} else {
				partial = true
			}
		}
		return advance, token, err
	})

	var ring []string
	count, idx := 0, 0
	if maxLines > 0 {
		ring = make([]string, maxLines)
	}
	for scanner.Scan() {
		if partial && completeOnly {
			break
		}
		if maxLines <= 0 {
			ring = append(ring, scanner.Text())
			count++
			continue
		}
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}

	if maxLines <= 0 {
		return ring, consumed, nil
	}
	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, consumed, nil
}
