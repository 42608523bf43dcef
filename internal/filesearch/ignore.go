package filesearch

import (
	"bufio"
	"errors"
	"os"
	"path"
	"regexp"
	"strings"
)

// Ignore matches slash-separated relative paths against .gitignore rules.
// The last matching rule wins, so a negated rule can re-include a path.
type Ignore struct {
	rules []rule
}

type rule struct {
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
}

// LoadIgnore reads a .gitignore file. A missing file yields an empty matcher.
func LoadIgnore(file string) (*Ignore, error) {
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return &Ignore{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ParseIgnore(lines...), nil
}

// ParseIgnore builds a matcher from .gitignore lines. Blank lines, comments
// and patterns that do not compile are skipped.
func ParseIgnore(lines ...string) *Ignore {
	ig := &Ignore{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if r, ok := parseRule(line); ok {
			ig.rules = append(ig.rules, r)
		}
	}
	return ig
}

// Match reports whether rel is ignored. dir says whether rel names a directory.
func (ig *Ignore) Match(rel string, dir bool) bool {
	if ig == nil {
		return false
	}
	rel = strings.TrimPrefix(rel, "./")
	ignored := false
	for _, r := range ig.rules {
		if r.matches(rel, dir) {
			ignored = !r.negate
		}
	}
	return ignored
}

// Len returns the number of rules.
func (ig *Ignore) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.rules)
}

func (r rule) matches(rel string, dir bool) bool {
	if r.dirOnly {
		if dir {
			return r.re.MatchString(rel)
		}
		return r.re.MatchString(path.Dir(rel))
	}
	if r.anchored {
		return r.re.MatchString(rel)
	}
	return r.re.MatchString(rel) || r.re.MatchString(path.Base(rel))
}

func parseRule(pat string) (rule, bool) {
	var r rule
	if rest, ok := strings.CutPrefix(pat, "!"); ok {
		r.negate = true
		pat = rest
	}
	if rest, ok := strings.CutSuffix(pat, "/"); ok {
		r.dirOnly = true
		pat = rest
	}
	if rest, ok := strings.CutPrefix(pat, "/"); ok {
		r.anchored = true
		pat = rest
	}
	if pat == "" {
		return rule{}, false
	}

	var b strings.Builder
	if r.anchored {
		b.WriteString("^")
	} else {
		b.WriteString("(^|/)")
	}
	globToRegexp(&b, pat)
	if r.anchored {
		b.WriteString("$")
	} else {
		b.WriteString("(/.*)?$")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return rule{}, false
	}
	r.re = re
	return r, true
}

// globToRegexp translates gitignore glob syntax: * stays within a path
// segment, ** crosses segments, ? is one non-slash byte and [...] classes pass
// through.
func globToRegexp(b *strings.Builder, pat string) {
	for i := 0; i < len(pat); i++ {
		switch c := pat[i]; c {
		case '*':
			switch {
			case strings.HasPrefix(pat[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 2
			case strings.HasPrefix(pat[i:], "**"):
				b.WriteString(".*")
				i++
			default:
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			if j := strings.IndexByte(pat[i:], ']'); j > 0 {
				b.WriteString(pat[i : i+j+1])
				i += j
			} else {
				b.WriteString(`\[`)
			}
		case '\\':
			if i+1 < len(pat) {
				b.WriteString(regexp.QuoteMeta(pat[i+1 : i+2]))
				i++
			} else {
				b.WriteString(`\\`)
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
}
