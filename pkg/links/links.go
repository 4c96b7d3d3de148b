// Package links reads the list of target URLs a batch run visits.
package links

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Link is one target URL with its optional trailing comment.
type Link struct {
	URL     string
	Comment string
}

// ParseLinksFile reads one `url # comment` entry per line. Blank lines and
// lines starting with # are skipped. Invalid URLs are logged and skipped.
func ParseLinksFile(path string, logger types.Logger) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening links file %q: %w", path, err)
	}
	defer f.Close()

	var out []Link
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		raw, comment, _ := strings.Cut(line, "#")
		raw = strings.TrimSpace(raw)
		comment = strings.TrimSpace(comment)

		if err := Validate(raw); err != nil {
			logger.Warn().Err(err).Int("line", lineNo).Msg("Skipping invalid URL")
			continue
		}

		logger.Debug().Str("url", raw).Str("comment", comment).Msg("Found link")
		out = append(out, Link{URL: raw, Comment: comment})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading links file %q: %w", path, err)
	}
	return out, nil
}

// Validate accepts absolute URLs with a scheme and a host.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q must be absolute with a scheme and host", raw)
	}
	return nil
}
