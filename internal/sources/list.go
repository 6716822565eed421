// Package sources builds model and URL lists for benchmarks from flags,
// files, feeds and plan files.
package sources

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/xurls/v2"
)

const embeddingMarker = "-embedding"

var ErrEmptyList = errors.New("list is empty")

// ParseList merges a comma-separated value with the lines of file. Blank
// lines and lines starting with '#' are skipped. Either input may be empty.
func ParseList(value string, file string) ([]string, error) {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	if file != "" {
		lines, err := readLines(file)
		if err != nil {
			return nil, fmt.Errorf("read list file: %w", err)
		}
		items = append(items, lines...)
	}

	return items, nil
}

// ExtractURLs returns every http(s) URL found in items, in order.
func ExtractURLs(items []string) ([]string, error) {
	re, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	var urls []string
	var errs []error

	for _, item := range items {
		found := re.FindAllString(item, -1)
		if len(found) == 0 {
			errs = append(errs, fmt.Errorf("no URL in %q", item))
			continue
		}
		urls = append(urls, found...)
	}

	return urls, errors.Join(errs...)
}

// FilterGenerativeModels drops embedding models, which cannot summarize.
func FilterGenerativeModels(models []string) (kept []string, dropped []string) {
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), embeddingMarker) {
			dropped = append(dropped, m)
			continue
		}
		kept = append(kept, m)
	}

	return kept, dropped
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return lines, nil
}
