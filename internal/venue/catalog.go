// Package venue holds the static registry of bookable spaces.
package venue

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category classifies a venue.
type Category string

const (
	CategoryClassroom Category = "classroom"
	CategorySpecial   Category = "special"
	CategoryOutdoor   Category = "outdoor"
	CategoryLarge     Category = "large"
	CategorySport     Category = "sport"
)

// Venue is an immutable catalog entry; identity is ID.
type Venue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Capacity int      `json:"capacity"`
}

// MatchKind records which lookup stage produced a venue.
type MatchKind string

const (
	MatchNone       MatchKind = ""
	MatchExact      MatchKind = "exact"
	MatchSubstring  MatchKind = "substring"
	MatchAlias      MatchKind = "alias"
	MatchRoomNumber MatchKind = "room_number"
	MatchFuzzy      MatchKind = "fuzzy"
)

var (
	// roomNumberPattern matches a standalone 3-digit room number; "2025" does not match.
	roomNumberPattern = regexp.MustCompile(`(?:^|\D)(\d{3})(?:\D|$)`)

	// roomSuffixes are stripped for the fuzzy stage ("音樂房" ~ "音樂室").
	roomSuffixes = strings.NewReplacer("室", "", "房", "", "間", "", "場", "", "館", "", "號", "", "廳", "")

	// simplifiedNames folds Simplified spellings of venue vocabulary onto the catalog's Traditional names.
	simplifiedNames = strings.NewReplacer(
		"音乐", "音樂",
		"电脑", "電腦",
		"活动", "活動",
		"英语", "英語",
		"操场", "操場",
		"礼堂", "禮堂",
		"电竞", "電競",
		"辅导", "輔導",
		"运动", "運動",
		"号", "號",
		"间", "間",
		"场", "場",
		"馆", "館",
		"厅", "廳",
	)
)

// Catalog is a read-only venue registry. Lookups are O(number of venues).
type Catalog struct {
	venues  []Venue
	byID    map[string]int
	aliases map[string][]string
}

// NewCatalog builds a catalog. aliases maps a venue ID to its known synonyms.
func NewCatalog(venues []Venue, aliases map[string][]string) *Catalog {
	c := &Catalog{
		venues:  make([]Venue, len(venues)),
		byID:    make(map[string]int, len(venues)),
		aliases: make(map[string][]string, len(aliases)),
	}
	copy(c.venues, venues)
	for i, v := range c.venues {
		c.byID[v.ID] = i
	}
	for id, list := range aliases {
		folded := make([]string, 0, len(list))
		for _, alias := range list {
			if a := fold(alias); a != "" {
				folded = append(folded, a)
			}
		}
		c.aliases[id] = folded
	}
	return c
}

// List returns all venues in declaration order.
func (c *Catalog) List() []Venue {
	out := make([]Venue, len(c.venues))
	copy(out, c.venues)
	return out
}

// ListByCategory returns the venues of one category in declaration order.
func (c *Catalog) ListByCategory(category Category) []Venue {
	var out []Venue
	for _, v := range c.venues {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// Names returns the display names, used to brief the external collaborator.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.venues))
	for i, v := range c.venues {
		names[i] = v.Name
	}
	return names
}

// FindByID returns the venue with the given ID.
func (c *Catalog) FindByID(id string) (Venue, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Venue{}, false
	}
	return c.venues[i], true
}

// StripMentions removes the venue's name and aliases from text, longest first,
// so venue words do not leak into other keyword scans. A bare keyword alias
// ("活動") is only removed when it was the sole mention; next to "活動室" it
// is an ordinary word and stays.
func (c *Catalog) StripMentions(text string, v Venue) string {
	t := fold(text)
	mentions := []string{fold(v.Name)}
	var keywords []string
	for _, alias := range c.aliases[v.ID] {
		if c.isKeywordAlias(v, alias) {
			keywords = append(keywords, alias)
		} else {
			mentions = append(mentions, alias)
		}
	}
	sort.Slice(mentions, func(i, j int) bool { return len(mentions[i]) > len(mentions[j]) })

	stripped := false
	for _, m := range mentions {
		if m != "" && strings.Contains(t, m) {
			t = strings.ReplaceAll(t, m, " ")
			stripped = true
		}
	}
	if !stripped {
		for _, k := range keywords {
			t = strings.ReplaceAll(t, k, " ")
		}
	}
	return t
}

// isKeywordAlias reports whether alias is the venue name without its room
// suffix ("活動" for "活動室"). Such aliases double as ordinary words.
func (c *Catalog) isKeywordAlias(v Venue, alias string) bool {
	name := fold(v.Name)
	keyword := roomSuffixes.Replace(name)
	return keyword != name && keyword == alias
}

// FindByName resolves a venue name or mention. Stages, first hit wins:
// exact name, substring either way, alias, 3-digit room number, suffix-stripped substring.
func (c *Catalog) FindByName(query string) (Venue, bool) {
	v, kind := c.findByName(query)
	return v, kind != MatchNone
}

// FindByNameKind is FindByName reporting the stage that matched.
func (c *Catalog) FindByNameKind(query string) (Venue, MatchKind) {
	return c.findByName(query)
}

func (c *Catalog) findByName(query string) (Venue, MatchKind) {
	q := fold(query)
	if q == "" {
		return Venue{}, MatchNone
	}

	for _, v := range c.venues {
		if fold(v.Name) == q {
			return v, MatchExact
		}
	}

	for _, v := range c.venues {
		if containsEither(fold(v.Name), q) {
			return v, MatchSubstring
		}
	}

	for _, v := range c.venues {
		for _, alias := range c.aliases[v.ID] {
			if containsEither(alias, q) {
				return v, MatchAlias
			}
		}
	}

	if v, ok := c.findByRoomNumber(q); ok {
		return v, MatchRoomNumber
	}

	if stripped := roomSuffixes.Replace(q); stripped != "" {
		for _, v := range c.venues {
			name := roomSuffixes.Replace(fold(v.Name))
			if name != "" && containsEither(name, stripped) {
				return v, MatchFuzzy
			}
		}
	}

	return Venue{}, MatchNone
}

// MatchText scans a whole sentence for a venue mention: display names first,
// then alias keywords, then a 3-digit room number. A keyword alias loses to a
// room number found in the same sentence.
func (c *Catalog) MatchText(text string) (Venue, MatchKind, bool) {
	t := fold(text)
	if t == "" {
		return Venue{}, MatchNone, false
	}

	for _, v := range c.venues {
		if strings.Contains(t, fold(v.Name)) {
			return v, MatchExact, true
		}
	}

	room, roomFound := c.findByRoomNumber(t)
	for _, v := range c.venues {
		for _, alias := range c.aliases[v.ID] {
			if !strings.Contains(t, alias) {
				continue
			}
			// "在101室辦活動": an explicit room number outranks a keyword alias.
			if roomFound && c.isKeywordAlias(v, alias) {
				continue
			}
			return v, MatchAlias, true
		}
	}

	if roomFound {
		return room, MatchRoomNumber, true
	}

	return Venue{}, MatchNone, false
}

func (c *Catalog) findByRoomNumber(text string) (Venue, bool) {
	for _, m := range roomNumberPattern.FindAllStringSubmatch(text, -1) {
		for _, v := range c.venues {
			if strings.Contains(v.Name, m[1]) {
				return v, true
			}
		}
	}
	return Venue{}, false
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// fold normalises text for comparison: NFKC, Simplified venue words to
// Traditional, lower case, no surrounding space.
func fold(s string) string {
	s = norm.NFKC.String(s)
	s = simplifiedNames.Replace(s)
	return strings.ToLower(strings.TrimSpace(s))
}
