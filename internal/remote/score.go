package remote

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseScore converts a user-facing score string into the internal 0..=100
// representation, according to format. A score of 0 means "unscored" in
// every format.
func ParseScore(format ScoreFormat, s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	switch format {
	case Point100:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parsing Point100 score %q: %w", s, err)
		}
		return clampScore(n), nil

	case Point10Decimal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing Point10Decimal score %q: %w", s, err)
		}
		return clampScore(int(math.Round(f * 10))), nil

	case Point10:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parsing Point10 score %q: %w", s, err)
		}
		return clampScore(n * 10), nil

	case Point5:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parsing Point5 score %q: %w", s, err)
		}
		return clampScore(n * 20), nil

	case Point3:
		switch s {
		case ":(":
			return 33, nil
		case ":|":
			return 50, nil
		case ":)":
			return 100, nil
		default:
			return 0, fmt.Errorf("unrecognized Point3 score %q", s)
		}

	default:
		return 0, fmt.Errorf("unknown score format %v", format)
	}
}

// ScoreToStr renders the internal 0..=100 score in the given format.
func ScoreToStr(format ScoreFormat, score uint8) string {
	if score == 0 {
		return ""
	}

	switch format {
	case Point100:
		return strconv.Itoa(int(score))

	case Point10Decimal:
		return strconv.FormatFloat(float64(score)/10, 'f', 1, 64)

	case Point10:
		return strconv.Itoa(int(math.Round(float64(score) / 10)))

	case Point5:
		stars := int(math.Round(float64(score) / 20))
		return strings.Repeat("★", stars)

	case Point3:
		// 66 is deliberately never produced here: AniList's own server
		// rounds a submitted 66 up to the ":)" bucket, so the midpoint is
		// represented as 50 instead to avoid that silent reinterpretation.
		switch {
		case score <= 33:
			return ":("
		case score <= 50:
			return ":|"
		default:
			return ":)"
		}

	default:
		return ""
	}
}

func clampScore(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return uint8(n)
}
