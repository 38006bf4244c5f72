package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Follow calls fn for every complete line appended to path until ctx is done.
// Lines already present when Follow starts are skipped. If the file is
// recreated or truncated, reading restarts from its beginning.
func Follow(ctx context.Context, path string, fn func(line string)) error {
	return follow(ctx, path, -1, fn)
}

// FollowFrom is Follow starting at byte offset, typically the one returned
// by Tail. Anything written after that offset, including lines appended
// before FollowFrom was called, is delivered.
func FollowFrom(ctx context.Context, path string, offset int64, fn func(line string)) error {
	if offset < 0 {
		offset = 0
	}
	return follow(ctx, path, offset, fn)
}

func follow(ctx context.Context, path string, offset int64, fn func(line string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so creation and rotation are seen too.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch log dir: %w", err)
	}

	t := &tailer{path: path, fn: fn}
	if err := t.open(offset); err != nil {
		return err
	}
	defer t.close()
	if offset >= 0 {
		if err := t.drain(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log: %w", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create):
				if err := t.open(0); err != nil {
					return err
				}
				if err := t.drain(); err != nil {
					return err
				}
			case event.Has(fsnotify.Write):
				if err := t.drain(); err != nil {
					return err
				}
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				t.close()
			}
		}
	}
}

type tailer struct {
	path    string
	fn      func(string)
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial strings.Builder
}

// open (re)opens the file at offset. A negative offset skips existing content.
func (t *tailer) open(offset int64) error {
	t.close()
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open log: %w", err)
	}
	whence := io.SeekStart
	if offset < 0 {
		offset, whence = 0, io.SeekEnd
	}
	if t.offset, err = file.Seek(offset, whence); err != nil {
		_ = file.Close()
		return fmt.Errorf("seek log: %w", err)
	}
	t.file = file
	t.reader = bufio.NewReader(file)
	return nil
}

func (t *tailer) close() {
	if t.file != nil {
		_ = t.file.Close()
	}
	t.file, t.reader = nil, nil
	t.partial.Reset()
}

func (t *tailer) drain() error {
	if t.file == nil {
		if err := t.open(0); err != nil || t.file == nil {
			return err
		}
	}
	if info, err := t.file.Stat(); err == nil && info.Size() < t.offset {
		if err := t.open(0); err != nil {
			return err
		}
	}
	for {
		chunk, err := t.reader.ReadString('\n')
		t.offset += int64(len(chunk))
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.partial.WriteString(chunk)
				return nil
			}
			return fmt.Errorf("read log: %w", err)
		}
		t.partial.WriteString(chunk)
		line := strings.TrimRight(t.partial.String(), "\r\n")
		t.partial.Reset()
		t.fn(line)
	}
}
