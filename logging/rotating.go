package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxFileSize = 100 * 1024 * 1024
	cleanupInterval    = 24 * time.Hour
)

var numberedFile = regexp.MustCompile(`^app-\d{4}-W\d{2}_(\d{2})\.log$`)

// WeeklyFile is an io.Writer that writes to app-YYYY-Www.log in dir, switching
// file at each ISO week boundary and to app-YYYY-Www_NN.log once a file reaches
// maxSize. Files older than the retention period are removed once a day.
type WeeklyFile struct {
	dir       string
	retention time.Duration
	maxSize   int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	cancel context.CancelFunc
	done   chan struct{}
}

// OpenWeeklyFile creates dir if needed, opens the file for the current week and
// starts the retention sweep. A maxSize of zero disables size rotation.
func OpenWeeklyFile(dir string, retentionWeeks int, maxSize int64) (*WeeklyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}

	wf := &WeeklyFile{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		done:      make(chan struct{}),
	}

	wf.mu.Lock()
	err := wf.rotate(weekKey(time.Now()), 0)
	wf.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	wf.cancel = cancel
	go wf.sweep(ctx, cleanupInterval)

	return wf, nil
}

// weekKey returns the ISO week in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends p to the current file, rotating first when the week changed or
// the write would push the file past maxSize.
func (wf *WeeklyFile) Write(p []byte) (int, error) {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	week := weekKey(time.Now())
	need := int64(len(p))
	if week != wf.week || (wf.maxSize > 0 && wf.size > 0 && wf.size+need > wf.maxSize) {
		if err := wf.rotate(week, need); err != nil {
			return 0, err
		}
	}

	if wf.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := wf.file.Write(p)
	wf.size += int64(n)
	return n, err
}

// rotate switches to a file for week with room for need more bytes. Caller holds mu.
func (wf *WeeklyFile) rotate(week string, need int64) error {
	if wf.file != nil {
		_ = wf.file.Close()
		wf.file = nil
	}

	name := wf.pickFile(week, need)
	path := filepath.Join(wf.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	wf.file = f
	wf.week = week
	wf.size = 0
	if info, err := f.Stat(); err == nil {
		wf.size = info.Size()
	}
	return nil
}

// pickFile returns the base file for the week while it has room, otherwise the
// highest numbered file with room, otherwise the next number.
func (wf *WeeklyFile) pickFile(week string, need int64) string {
	base := fmt.Sprintf("app-%s.log", week)
	if wf.hasRoom(filepath.Join(wf.dir, base), need) {
		return base
	}

	matches, _ := filepath.Glob(filepath.Join(wf.dir, fmt.Sprintf("app-%s_??.log", week)))
	highest, highestPath := 0, ""
	for _, m := range matches {
		sub := numberedFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		if n, _ := strconv.Atoi(sub[1]); n > highest {
			highest, highestPath = n, m
		}
	}

	if highestPath != "" && wf.hasRoom(highestPath, need) {
		return filepath.Base(highestPath)
	}
	return fmt.Sprintf("app-%s_%02d.log", week, highest+1)
}

func (wf *WeeklyFile) hasRoom(path string, need int64) bool {
	info, err := os.Stat(path)
	if err != nil || wf.maxSize == 0 {
		return true
	}
	return info.Size() < wf.maxSize && info.Size()+need <= wf.maxSize
}

func (wf *WeeklyFile) sweep(ctx context.Context, every time.Duration) {
	defer close(wf.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := wf.removeExpired(time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "log retention sweep failed: %v\n", err)
			}
		}
	}
}

// removeExpired deletes app-*.log files last modified before now minus retention.
func (wf *WeeklyFile) removeExpired(now time.Time) (int, error) {
	entries, err := os.ReadDir(wf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-wf.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(wf.dir, name)) == nil {
			removed++
		}
	}
	return removed, nil
}

// Close stops the retention sweep and closes the current file.
func (wf *WeeklyFile) Close() error {
	if wf.cancel != nil {
		wf.cancel()
		<-wf.done
	}

	wf.mu.Lock()
	defer wf.mu.Unlock()

	if wf.file == nil {
		return nil
	}
	err := wf.file.Close()
	wf.file = nil
	return err
}
