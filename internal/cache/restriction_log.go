package cache

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RestrictionLog is an append-only, deduplicated list of URLs whose content
// is gated behind JavaScript or cookie consent.
type RestrictionLog struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
	urls []string
}

// NewMemoryRestrictionLog keeps entries in memory only.
func NewMemoryRestrictionLog() *RestrictionLog {
	return &RestrictionLog{seen: make(map[string]struct{})}
}

// OpenRestrictionLog loads the existing entries of the file at path; new
// entries are appended to it.
func OpenRestrictionLog(path string) (*RestrictionLog, error) {
	l := NewMemoryRestrictionLog()
	l.path = path

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create restriction log dir: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}

		return nil, fmt.Errorf("open restriction log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		l.remember(line)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan restriction log: %w", err)
	}

	return l, nil
}

// Record appends pageURL unless it is already present. It reports whether
// a new entry was written.
func (l *RestrictionLog) Record(pageURL string) (bool, error) {
	normalized := NormalizeURL(pageURL)
	if normalized == "" {
		return false, errors.New("URL is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[normalized]; ok {
		return false, nil
	}

	if l.path != "" {
		if err := appendLine(l.path, normalized); err != nil {
			return false, err
		}
	}

	l.remember(normalized)

	return true, nil
}

func (l *RestrictionLog) Contains(pageURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.seen[NormalizeURL(pageURL)]

	return ok
}

func (l *RestrictionLog) URLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.urls...)
}

func (l *RestrictionLog) Path() string {
	return l.path
}

func (l *RestrictionLog) remember(normalized string) {
	if _, ok := l.seen[normalized]; ok {
		return
	}

	l.seen[normalized] = struct{}{}
	l.urls = append(l.urls, normalized)
}

func appendLine(path string, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open restriction log: %w", err)
	}

	if _, err = f.WriteString(line + "\n"); err != nil {
		_ = f.Close()

		return fmt.Errorf("append restriction log: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close restriction log: %w", err)
	}

	return nil
}
