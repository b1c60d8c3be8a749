// Package markdown extracts structure, frontmatter, and tags from Markdown
// content. Parsing is line-based and never fails; malformed constructs are
// simply not extracted.
package markdown

import (
	"regexp"
	"strings"

	"github.com/starford/leit/internal/models"
)

var (
	headerRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletRe = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)
	tagRe    = regexp.MustCompile(`#[A-Za-z0-9_][A-Za-z0-9_/-]*`)
)

// ParseStructure extracts ATX headings (levels 1-6), bullet list items, and
// pipe tables from raw Markdown.
func ParseStructure(raw string) models.Structure {
	lines := strings.Split(raw, "\n")

	var st models.Structure
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if m := headerRe.FindStringSubmatch(trimmed); m != nil {
			st.Headers = append(st.Headers, strings.TrimSpace(m[2]))
			continue
		}
		if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
			st.Lists = append(st.Lists, strings.TrimSpace(m[1]))
		}
	}
	st.Tables = parseTables(lines)
	return st
}

// ParseFrontmatter reads a leading frontmatter block delimited by --- lines.
// Each line inside the block is split on the first colon into a key/value
// pair; lines without a colon are ignored. The block is plain lines, not
// YAML, so values keep their literal text.
func ParseFrontmatter(raw string) map[string]string {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}

	fm := make(map[string]string)
	for _, line := range lines[1:end] {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		fm[key] = strings.TrimSpace(v)
	}
	if len(fm) == 0 {
		return nil
	}
	return fm
}

// ExtractTags collects #tags from the raw text, lower-cased and deduplicated
// in first-seen order. The leading # is kept.
func ExtractTags(raw string) []string {
	matches := tagRe.FindAllString(raw, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		tag := strings.ToLower(m)
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// CellValues flattens table cells into a single list, trimmed, with empty
// cells dropped.
func CellValues(tables []models.Table) []string {
	var out []string
	for _, t := range tables {
		for _, h := range t.Headers {
			if h != "" {
				out = append(out, h)
			}
		}
		for _, row := range t.Rows {
			for _, c := range row {
				if c != "" {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// parseTables scans for pipe tables: a header row, a separator row of dashes
// and pipes, then contiguous data rows.
func parseTables(lines []string) []models.Table {
	var tables []models.Table
	i := 0
	for i < len(lines) {
		if !strings.Contains(lines[i], "|") || i+1 >= len(lines) || !isSeparatorRow(lines[i+1]) {
			i++
			continue
		}
		t := models.Table{Headers: splitRow(lines[i])}
		j := i + 2
		for j < len(lines) && strings.Contains(lines[j], "|") && !isSeparatorRow(lines[j]) {
			t.Rows = append(t.Rows, splitRow(lines[j]))
			j++
		}
		tables = append(tables, t)
		i = j
	}
	return tables
}

// isSeparatorRow reports whether the line is a table separator such as
// |---|:---:|. It must contain a dash and nothing beyond pipes, dashes,
// colons, and whitespace.
func isSeparatorRow(line string) bool {
	if !strings.Contains(line, "-") {
		return false
	}
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

// splitRow splits a table row on pipes and trims each cell. Leading and
// trailing pipes do not produce cells.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	parts := strings.Split(s, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
