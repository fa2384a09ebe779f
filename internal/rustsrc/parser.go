// Package rustsrc builds a lightweight structural view of Rust source
// files: function items with attributes, parameters and brace-matched
// bodies. It is a heuristic parser, not a compiler front end: good
// enough for name-based detectors and cheap enough for the hot path.
package rustsrc

import (
	"errors"
	"regexp"
	"strings"
)

// File is one parsed source unit. Source and Functions always derive
// from the same read; callers must not mix versions.
type File struct {
	Path      string
	Source    string
	Lines     []string
	Functions []Function
}

// Param is a typed function parameter. Receivers (self and friends)
// are not recorded.
type Param struct {
	Name string
	Type string
}

// Function is a single fn item. Line/Column/EndLine are 1-based.
type Function struct {
	Name     string
	Line     int
	Column   int
	EndLine  int
	Attrs    []string
	Params   []Param
	Body     string
	Public   bool
	IsMethod bool
}

var (
	fnHeaderRe   = regexp.MustCompile(`^(\s*)((?:pub(?:\([^)]*\))?\s+)?)(?:default\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)`)
	implHeaderRe = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:unsafe\s+)?(?:impl[\s<]|trait\s)`)
)

// ErrUnbalanced reports source whose braces never close; treated as a
// parse failure by the pipeline (file skipped, zero findings).
var ErrUnbalanced = errors.New("rustsrc: unbalanced braces")

// ParseFile builds the structural view for one file's content.
func ParseFile(path, source string) (*File, error) {
	f := &File{
		Path:   path,
		Source: source,
		Lines:  strings.Split(source, "\n"),
	}

	lineStart := make([]int, len(f.Lines))
	off := 0
	for i, l := range f.Lines {
		lineStart[i] = off
		off += len(l) + 1
	}

	implRegions := findImplRegions(f, lineStart)

	var pending []string
	for i, line := range f.Lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "//"):
			continue
		case strings.HasPrefix(trimmed, "#["):
			pending = append(pending, trimmed)
			continue
		}

		m := fnHeaderRe.FindStringSubmatch(line)
		if m == nil {
			pending = nil
			continue
		}
		name := m[3]
		col := strings.Index(line, "fn ") + len("fn ") + 1

		headerOff := lineStart[i]
		openParen := strings.Index(source[headerOff:], "(")
		if openParen < 0 {
			pending = nil
			continue
		}
		openParen += headerOff
		closeParen := matchDelim(source, openParen, '(', ')')
		if closeParen < 0 {
			return nil, ErrUnbalanced
		}

		// Trait method declarations end in ';' before any body.
		bodyOpen := -1
		for j := closeParen + 1; j < len(source); j++ {
			c := source[j]
			if c == '{' {
				bodyOpen = j
				break
			}
			if c == ';' {
				break
			}
		}
		if bodyOpen < 0 {
			pending = nil
			continue
		}
		bodyClose := matchDelim(source, bodyOpen, '{', '}')
		if bodyClose < 0 {
			return nil, ErrUnbalanced
		}

		fn := Function{
			Name:     name,
			Line:     i + 1,
			Column:   col,
			EndLine:  lineOf(lineStart, bodyClose),
			Attrs:    pending,
			Params:   parseParams(source[openParen+1 : closeParen]),
			Body:     source[bodyOpen+1 : bodyClose],
			Public:   strings.TrimSpace(m[2]) != "",
			IsMethod: insideRegion(implRegions, i+1),
		}
		f.Functions = append(f.Functions, fn)
		pending = nil
	}

	return f, nil
}

type region struct{ start, end int }

func findImplRegions(f *File, lineStart []int) []region {
	var regions []region
	for i, line := range f.Lines {
		if !implHeaderRe.MatchString(line) {
			continue
		}
		off := lineStart[i]
		open := strings.Index(f.Source[off:], "{")
		if open < 0 {
			continue
		}
		open += off
		end := matchDelim(f.Source, open, '{', '}')
		if end < 0 {
			continue
		}
		regions = append(regions, region{start: i + 1, end: lineOf(lineStart, end)})
	}
	return regions
}

func insideRegion(regions []region, line int) bool {
	for _, r := range regions {
		if line > r.start && line < r.end {
			return true
		}
	}
	return false
}

func lineOf(lineStart []int, off int) int {
	lo, hi := 0, len(lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStart[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// matchDelim finds the matching close delimiter for the open delimiter
// at off, skipping line comments, block comments and string literals.
// Char literals and lifetimes are ignored wholesale; a brace inside a
// char literal would confuse it, which contract code essentially
// never contains.
func matchDelim(s string, off int, open, close byte) int {
	depth := 0
	for i := off; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		case '"':
			i = skipString(s, i)
		case '/':
			if i+1 < len(s) {
				switch s[i+1] {
				case '/':
					for i < len(s) && s[i] != '\n' {
						i++
					}
				case '*':
					end := strings.Index(s[i+2:], "*/")
					if end < 0 {
						return -1
					}
					i += 2 + end + 1
				}
			}
		}
	}
	return -1
}

func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == '\\' {
			j++
			continue
		}
		if s[j] == '"' {
			return j
		}
	}
	return len(s)
}

func parseParams(raw string) []Param {
	var params []Param
	for _, part := range splitTopLevel(raw) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bare := strings.TrimLeft(part, "&")
		bare = strings.TrimSpace(strings.TrimPrefix(bare, "mut "))
		if bare == "self" || strings.HasPrefix(bare, "'") && strings.HasSuffix(strings.TrimSpace(bare), "self") {
			continue
		}
		colon := strings.Index(part, ":")
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(part[:colon])
		name = strings.TrimPrefix(name, "mut ")
		params = append(params, Param{
			Name: name,
			Type: strings.TrimSpace(part[colon+1:]),
		})
	}
	return params
}

// splitTopLevel splits on commas not nested in <>, () or [].
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// LineText returns the source line at a 1-based line number.
func (f *File) LineText(line int) string {
	if line < 1 || line > len(f.Lines) {
		return ""
	}
	return f.Lines[line-1]
}

// SnippetAt returns the trimmed source line at a 1-based line number.
func (f *File) SnippetAt(line int) string {
	return strings.TrimSpace(f.LineText(line))
}

// HasAttribute reports whether any attribute names the given path,
// e.g. HasAttribute("private") matches #[private].
func (fn *Function) HasAttribute(name string) bool {
	for _, a := range fn.Attrs {
		inner := strings.TrimSuffix(strings.TrimPrefix(a, "#["), "]")
		if inner == name || strings.HasPrefix(inner, name+"(") {
			return true
		}
	}
	return false
}

// HasNestedAttribute matches forms like #[ink(message)].
func (fn *Function) HasNestedAttribute(outer, inner string) bool {
	for _, a := range fn.Attrs {
		body := strings.TrimSuffix(strings.TrimPrefix(a, "#["), "]")
		if strings.HasPrefix(body, outer+"(") && strings.Contains(body, inner) {
			return true
		}
	}
	return false
}

// IsTest reports test functions by attribute or naming convention.
// Only the test_ prefix counts; names like update_latest are
// production code.
func (fn *Function) IsTest() bool {
	if fn.HasAttribute("test") || fn.HasAttribute("cfg") && fn.attrContains("test") {
		return true
	}
	return strings.HasPrefix(fn.Name, "test_")
}

func (fn *Function) attrContains(sub string) bool {
	for _, a := range fn.Attrs {
		if strings.Contains(a, sub) {
			return true
		}
	}
	return false
}

// BodyContainsAny reports whether the body contains any pattern.
func (fn *Function) BodyContainsAny(patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(fn.Body, p) {
			return true
		}
	}
	return false
}
