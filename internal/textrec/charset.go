package textrec

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Charset maps CTC class indices to decoded tokens. Tokens come from a
// dictionary file, one per line, and may span multiple codepoints.
type Charset struct {
	tokens  []string
	byToken map[string]int
}

// LoadCharset reads a dictionary file. Blank lines are skipped, a UTF-8
// BOM on the first line is dropped, and duplicate tokens keep their
// first index.
func LoadCharset(path string) (*Charset, error) {
	if path == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: the dictionary path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	tokens := make([]string, 0, 512)
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		if line == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading dictionary: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("dictionary is empty: %s", path)
	}

	byToken := make(map[string]int, len(tokens))
	for i, t := range tokens {
		if _, ok := byToken[t]; !ok {
			byToken[t] = i
		}
	}
	return &Charset{tokens: tokens, byToken: byToken}, nil
}

// Size returns the number of tokens in the charset.
func (c *Charset) Size() int { return len(c.tokens) }

// Token returns the token at index, or empty when out of range.
func (c *Charset) Token(index int) string {
	if c == nil || index < 0 || index >= len(c.tokens) {
		return ""
	}
	return c.tokens[index]
}

// Index returns a token's class index, or -1 when absent.
func (c *Charset) Index(token string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.byToken[token]; ok {
		return i
	}
	return -1
}
