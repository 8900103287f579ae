package position

import "strings"

// Sport identifiers.
const (
	SportNFL = "nfl"
	SportMLB = "mlb"
	SportNHL = "nhl"
)

// NFL returns the football taxonomy.
func NFL() *Taxonomy {
	return MustNew(SportNFL, "QB", "WR", "RB", "TE", "K", "P", "KR", "PR")
}

// MLB returns the baseball taxonomy.
func MLB() *Taxonomy {
	return MustNew(SportMLB, "SP", "RP", "C", "1B", "2B", "3B", "SS", "LF", "CF", "RF", "DH")
}

// NHL returns the hockey taxonomy.
func NHL() *Taxonomy {
	return MustNew(SportNHL, "LW", "RW", "C", "D", "G")
}

var builtin = map[string]func() *Taxonomy{
	SportNFL: NFL,
	SportMLB: MLB,
	SportNHL: NHL,
}

// ForSport returns the built-in taxonomy for a sport id (case-insensitive).
func ForSport(sport string) (*Taxonomy, bool) {
	build, ok := builtin[strings.ToLower(strings.TrimSpace(sport))]
	if !ok {
		return nil, false
	}
	return build(), true
}

// KnownSports lists the sport ids with a built-in taxonomy.
func KnownSports() []string {
	return []string{SportNFL, SportMLB, SportNHL}
}
