package episode

import (
	"regexp"
	"strconv"
	"strings"
)

// Tag blocks ("[...]" or "(...)", non-nested) are stripped from either end
// of the filename before the core title/episode structure is parsed.
var tagBlockRe = regexp.MustCompile(`^\s*(?:[\[(][^\])]*[\])]\s*)+`)
var trailingTagBlockRe = regexp.MustCompile(`(?:\s*[\[(][^\])]*[\])])+\s*$`)

func stripTags(s string) string {
	s = tagBlockRe.ReplaceAllString(s, "")
	s = trailingTagBlockRe.ReplaceAllString(s, "")
	return s
}

// The patterns below match one of:
//
//	S<season>E<episode>   (only the second number is the episode)
//	Ep <episode> / Episode <episode>
//	E<episode>
//	<episode>v<version>   (version suffix is discarded)
//
// as a standalone run anchored at the start of the remaining text, and
// reports how much of the string it consumed.
var (
	seasonEpisodeRe = regexp.MustCompile(`(?i)^S\d{1,3}E(\d{1,4})`)
	epWordRe        = regexp.MustCompile(`(?i)^Ep(?:isode)?[\s._]*(\d{1,4})`)
	bareERe         = regexp.MustCompile(`(?i)^E(\d{1,4})`)
	versionedRe     = regexp.MustCompile(`^(\d{1,4})[vV]\d+`)
	bareNumberRe    = regexp.MustCompile(`^(\d{1,4})`)
)

// leadingEpisode attempts to consume an episode number (with any of the
// recognized prefixes/suffixes) from the start of s. It returns the parsed
// number, the remainder of the string, and whether a match was found.
func leadingEpisode(s string) (uint32, string, bool) {
	s = strings.TrimLeft(s, whitespaceChars)

	for _, re := range []*regexp.Regexp{seasonEpisodeRe, epWordRe, versionedRe, bareERe, bareNumberRe} {
		if loc := re.FindStringSubmatchIndex(s); loc != nil {
			numStr := s[loc[2]:loc[3]]
			n, err := strconv.ParseUint(numStr, 10, 32)
			if err != nil {
				continue
			}
			return uint32(n), s[loc[1]:], true
		}
	}

	return 0, s, false
}

// The implementation note in the episode-recognition grammar observes that
// the title-then-episode layout is much easier to parse if the string is
// reversed first (the episode number and its markers sit at the right-hand
// end). These are the reversed-text mirrors of the prefixes above: matching
// "21" against a reversed "E21S" finds "S12E" read forwards, etc. Digit runs
// read the same forwards and backwards only when re-reversed before
// parsing, which trailingEpisode does explicitly.
var (
	seasonEpisodeRevRe = regexp.MustCompile(`(?i)^(\d{1,4})E\d{1,3}S`)
	epWordRevRe        = regexp.MustCompile(`(?i)^(\d{1,4})[\s._]*(?:edosi)?pE`)
	bareERevRe         = regexp.MustCompile(`(?i)^(\d{1,4})E`)
	versionedRevRe     = regexp.MustCompile(`^\d+[vV](\d{1,4})`)
	bareNumberRevRe    = regexp.MustCompile(`^(\d{1,4})`)
)

// trailingEpisode is the mirror of leadingEpisode, operating on the end of
// the string by reversing it, matching a reversed-grammar prefix, then
// reversing both the matched digits and the remainder back.
func trailingEpisode(s string) (uint32, string, bool) {
	reversed := reverseString(s)
	reversed = strings.TrimLeft(reversed, whitespaceChars)

	for _, re := range []*regexp.Regexp{seasonEpisodeRevRe, epWordRevRe, versionedRevRe, bareERevRe, bareNumberRevRe} {
		loc := re.FindStringSubmatchIndex(reversed)
		if loc == nil {
			continue
		}

		digitsRev := reversed[loc[2]:loc[3]]
		n, err := strconv.ParseUint(reverseString(digitsRev), 10, 32)
		if err != nil {
			continue
		}

		return uint32(n), reverseString(reversed[loc[1]:]), true
	}

	return 0, s, false
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// splitSeparator trims an optional " - " (or pure whitespace) separator
// from the start of s.
func splitSeparator(s string) string {
	s = strings.TrimLeft(s, whitespaceChars)
	if strings.HasPrefix(s, "-") {
		s = strings.TrimLeft(s[1:], whitespaceChars)
	}
	return s
}

// titleThenEpisode handles "<tags> <title> - <ep> <tags>" and "<title> <ep>"
// (no dash). Internally it is easier to reason about from the right-hand
// end of the string, so it works on the tag-stripped text directly using
// trailingEpisode, which does the reversal internally.
func titleThenEpisode(stem string) (string, uint32, bool) {
	stripped := strings.TrimSpace(stripTags(stem))
	if stripped == "" {
		return "", 0, false
	}

	ep, rest, ok := trailingEpisode(stripped)
	if !ok {
		return "", 0, false
	}

	rest = strings.TrimRight(rest, whitespaceChars)
	rest = strings.TrimSuffix(rest, "-")
	rest = strings.TrimRight(rest, whitespaceChars)

	title := normalizeWhitespace(rest)
	if title == "" {
		return "", 0, false
	}

	return title, ep, true
}

// episodeThenTitle handles "<tags> <ep> - <title> <tags>".
func episodeThenTitle(stem string) (string, uint32, bool) {
	stripped := strings.TrimSpace(stripTags(stem))
	if stripped == "" {
		return "", 0, false
	}

	ep, rest, ok := leadingEpisode(stripped)
	if !ok {
		return "", 0, false
	}

	rest = splitSeparator(rest)
	title := normalizeWhitespace(stripTags(rest))
	if title == "" {
		return "", 0, false
	}

	return title, ep, true
}

// titleEpisodeDescription handles "<title> <ep> <free-form description>",
// where anything after the episode number (other than a version suffix or
// category token, handled by extractCategory) is simply discarded.
func titleEpisodeDescription(stem string) (string, uint32, bool) {
	stripped := strings.TrimSpace(stripTags(stem))
	if stripped == "" {
		return "", 0, false
	}

	fields := strings.FieldsFunc(stripped, func(r rune) bool {
		return r == ' ' || r == '_' || r == '.'
	})

	for i, field := range fields {
		if n, ok := parseLeadingNumber(field); ok {
			title := normalizeWhitespace(strings.Join(fields[:i], " "))
			if title == "" {
				continue
			}
			return title, n, true
		}
	}

	return "", 0, false
}

// categoryOnly handles filenames with no episode number at all, where a
// standalone category fragment (e.g. "Series Title - OVA.mkv") implies
// episode 1 of that category. extractCategory performs the actual token
// detection and strip; this strategy only needs to hand it a flattened,
// separator-free candidate title.
func categoryOnly(stem string) (string, uint32, bool) {
	stripped := strings.TrimSpace(stripTags(stem))
	if stripped == "" || containsDigit(stripped) {
		return "", 0, false
	}

	flattened := strings.ReplaceAll(stripped, " - ", " ")
	title := normalizeWhitespace(flattened)
	if title == "" || !hasCategoryToken(title) {
		return "", 0, false
	}

	return title, 0, true
}

func hasCategoryToken(title string) bool {
	for _, w := range strings.Fields(title) {
		key := strings.ToLower(strings.Trim(w, ".,"))
		if _, ok := categoryTokens[key]; ok {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func parseLeadingNumber(field string) (uint32, bool) {
	loc := bareNumberRe.FindStringIndex(field)
	if loc == nil || loc[0] != 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(field[loc[0]:loc[1]], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
