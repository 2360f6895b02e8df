// Package episode extracts a series title, episode number, and category
// from a single video filename.
package episode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind categorizes an episode within a series.
type Kind int

const (
	Season Kind = iota
	Movie
	Special
	OVA
	ONA
)

func (k Kind) String() string {
	switch k {
	case Movie:
		return "Movie"
	case Special:
		return "Special"
	case OVA:
		return "OVA"
	case ONA:
		return "ONA"
	default:
		return "Season"
	}
}

// Parsed is the result of successfully parsing a filename.
type Parsed struct {
	Title    string
	Episode  uint32
	Category Kind
}

// ParseError is returned when no parser strategy could make sense of a
// filename.
type ParseError struct {
	Filename string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse episode from filename: %s", e.Filename)
}

// whitespace characters are treated as equivalent during parsing.
const whitespaceChars = " _."

var categoryTokens = map[string]Kind{
	"ova":      OVA,
	"ovas":     OVA,
	"ona":      ONA,
	"onas":     ONA,
	"special":  Special,
	"specials": Special,
	"movie":    Movie,
}

// Parser recognizes (title, episode, category) from a filename. The zero
// value is the default parser; use NewCustom for a user-supplied pattern.
type Parser struct {
	custom *regexp.Regexp
}

// NewCustom compiles a caller-supplied pattern. The pattern must contain a
// named capture group "episode"; it may contain a named capture group
// "title". The literal placeholders {title} and {episode} are substituted
// with the canonical capture groups before compilation, so callers may pass
// a template like `{title} - {episode}` instead of raw regex syntax.
func NewCustom(pattern string) (Parser, error) {
	pattern = strings.ReplaceAll(pattern, "{title}", "(?P<title>.+)")
	pattern = strings.ReplaceAll(pattern, "{episode}", `(?P<episode>\d+)`)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Parser{}, fmt.Errorf("compiling custom episode pattern: %w", err)
	}

	if !hasSubexp(re, "episode") {
		return Parser{}, errMissingMatcherGroups
	}

	return Parser{custom: re}, nil
}

var errMissingMatcherGroups = fmt.Errorf("custom episode pattern must contain a named \"episode\" capture group")

// ErrMissingMatcherGroups is returned by NewCustom when the supplied pattern
// has no "episode" capture group.
func ErrMissingMatcherGroups() error { return errMissingMatcherGroups }

func hasSubexp(re *regexp.Regexp, name string) bool {
	for _, n := range re.SubexpNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Parse extracts title, episode, and category from filename. The trailing
// extension is stripped before any strategy runs.
func (p Parser) Parse(filename string) (Parsed, error) {
	stem := stripExtension(filename)

	if p.custom != nil {
		if parsed, ok := p.parseCustom(stem); ok {
			return parsed, nil
		}
		return Parsed{}, &ParseError{Filename: filename}
	}

	strategies := []func(string) (string, uint32, bool){
		titleThenEpisode,
		episodeThenTitle,
		titleEpisodeDescription,
		categoryOnly,
	}

	for _, strategy := range strategies {
		title, ep, ok := strategy(stem)
		if !ok {
			continue
		}

		title, category, ep := extractCategory(title, ep)
		if !validTitle(title) {
			continue
		}

		return Parsed{Title: title, Episode: ep, Category: category}, nil
	}

	return Parsed{}, &ParseError{Filename: filename}
}

func (p Parser) parseCustom(stem string) (Parsed, bool) {
	match := p.custom.FindStringSubmatch(stem)
	if match == nil {
		return Parsed{}, false
	}

	var title string
	var episodeStr string

	for i, name := range p.custom.SubexpNames() {
		switch name {
		case "title":
			title = match[i]
		case "episode":
			episodeStr = match[i]
		}
	}

	ep, err := strconv.ParseUint(episodeStr, 10, 32)
	if err != nil {
		return Parsed{}, false
	}

	title = normalizeWhitespace(title)
	title, category, ep32 := extractCategory(title, uint32(ep))

	if title != "" && !validTitle(title) {
		return Parsed{}, false
	}

	return Parsed{Title: title, Episode: ep32, Category: category}, true
}

func stripExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 {
		return filename
	}
	return filename[:idx]
}

// normalizeWhitespace converts underscores and dots to spaces and trims the
// result, per the whitespace-equivalence rule.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || r == '.' {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(collapseSpaces(b.String()))
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func isWhitespace(b byte) bool {
	return strings.IndexByte(whitespaceChars, b) >= 0
}

// validTitle rejects a reconstructed title if any of its fragments (split on
// " - ") has no ASCII letter, preventing "12 - 12.mkv" from parsing as
// title="12".
func validTitle(title string) bool {
	if title == "" {
		return false
	}

	fragments := strings.Split(title, " - ")
	for _, frag := range fragments {
		hasAlpha := false
		for _, r := range frag {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				hasAlpha = true
				break
			}
		}
		if !hasAlpha {
			return false
		}
	}

	return true
}

// extractCategory looks for a standalone OVA/ONA/Special/Movie fragment in
// title and, if found, strips it and returns the associated Kind. If the
// fragment was found with no adjacent episode number (ep == 0, meaning the
// episode-finding strategy only found a category token), episode defaults
// to 1.
func extractCategory(title string, ep uint32) (string, Kind, uint32) {
	words := strings.Fields(title)
	kept := words[:0:0]
	kind := Season
	found := false

	for _, w := range words {
		key := strings.ToLower(strings.Trim(w, ".,"))
		if k, ok := categoryTokens[key]; ok && !found {
			kind = k
			found = true
			continue
		}
		kept = append(kept, w)
	}

	if !found {
		return title, Season, ep
	}

	newTitle := strings.TrimSpace(strings.Join(kept, " "))
	if ep == 0 {
		ep = 1
	}

	return newTitle, kind, ep
}
