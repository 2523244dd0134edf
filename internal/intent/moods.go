// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package intent

import "strings"

// Provider genre identifiers (TMDB movie genre ids).
const (
	GenreAction      = 28
	GenreAdventure   = 12
	GenreAnimation   = 16
	GenreComedy      = 35
	GenreCrime       = 80
	GenreDocumentary = 99
	GenreDrama       = 18
	GenreFamily      = 10751
	GenreFantasy     = 14
	GenreHistory     = 36
	GenreHorror      = 27
	GenreMusic       = 10402
	GenreMystery     = 9648
	GenreRomance     = 10749
	GenreSciFi       = 878
	GenreThriller    = 53
	GenreWar         = 10752
	GenreWestern     = 37
)

// moodEntry maps one mood keyword to genres, optional themes and an
// optional pacing. Entries are scanned in slice order so pacing is
// deterministic when several keywords match: the first seen wins, while
// genres and themes accumulate as a union.
type moodEntry struct {
	keyword string
	genres  []int
	themes  []string
	pacing  Pacing
}

var moodTable = []moodEntry{
	// Upbeat / light.
	{"happy", []int{GenreComedy, GenreFamily}, []string{"feel-good"}, ""},
	{"feel good", []int{GenreComedy, GenreFamily}, []string{"feel-good"}, ""},
	{"feel-good", []int{GenreComedy, GenreFamily}, []string{"feel-good"}, ""},
	{"uplifting", []int{GenreComedy, GenreDrama}, []string{"feel-good", "inspiring"}, ""},
	{"cheerful", []int{GenreComedy, GenreFamily}, []string{"feel-good"}, ""},
	{"funny", []int{GenreComedy}, []string{"humor"}, ""},
	{"hilarious", []int{GenreComedy}, []string{"humor"}, "fast"},
	{"comedy", []int{GenreComedy}, nil, ""},
	{"laugh", []int{GenreComedy}, []string{"humor"}, ""},
	{"lighthearted", []int{GenreComedy, GenreRomance}, []string{"feel-good"}, "medium"},
	{"silly", []int{GenreComedy, GenreFamily}, []string{"humor"}, ""},
	{"quirky", []int{GenreComedy}, []string{"offbeat"}, ""},
	{"witty", []int{GenreComedy}, []string{"humor", "clever"}, ""},
	{"heartwarming", []int{GenreDrama, GenreFamily}, []string{"feel-good"}, "slow"},
	{"wholesome", []int{GenreFamily, GenreComedy}, []string{"feel-good"}, ""},
	{"inspiring", []int{GenreDrama}, []string{"inspiring"}, ""},
	{"motivational", []int{GenreDrama, GenreDocumentary}, []string{"inspiring"}, ""},
	{"optimistic", []int{GenreComedy, GenreDrama}, []string{"feel-good"}, ""},

	// Sad / reflective.
	{"sad", []int{GenreDrama}, []string{"emotional"}, "slow"},
	{"cry", []int{GenreDrama, GenreRomance}, []string{"emotional", "tearjerker"}, "slow"},
	{"tearjerker", []int{GenreDrama, GenreRomance}, []string{"tearjerker"}, "slow"},
	{"emotional", []int{GenreDrama}, []string{"emotional"}, ""},
	{"melancholy", []int{GenreDrama}, []string{"emotional"}, "slow"},
	{"bittersweet", []int{GenreDrama, GenreRomance}, []string{"emotional"}, ""},
	{"moving", []int{GenreDrama}, []string{"emotional"}, ""},
	{"depressing", []int{GenreDrama}, []string{"bleak"}, "slow"},
	{"thoughtful", []int{GenreDrama}, []string{"cerebral"}, "slow"},
	{"thought provoking", []int{GenreDrama, GenreSciFi}, []string{"cerebral"}, "slow"},
	{"thought-provoking", []int{GenreDrama, GenreSciFi}, []string{"cerebral"}, "slow"},
	{"deep", []int{GenreDrama}, []string{"cerebral"}, "slow"},
	{"philosophical", []int{GenreDrama, GenreSciFi}, []string{"cerebral"}, "slow"},
	{"meaningful", []int{GenreDrama}, []string{"cerebral"}, ""},

	// Dark / intense.
	{"dark", []int{GenreThriller, GenreCrime}, []string{"dark"}, ""},
	{"gritty", []int{GenreCrime, GenreDrama}, []string{"dark", "realistic"}, ""},
	{"disturbing", []int{GenreHorror, GenreThriller}, []string{"dark"}, ""},
	{"twisted", []int{GenreThriller, GenreHorror}, []string{"dark", "mind-bending"}, ""},
	{"bleak", []int{GenreDrama, GenreThriller}, []string{"bleak"}, "slow"},
	{"noir", []int{GenreCrime, GenreMystery}, []string{"dark", "stylish"}, ""},
	{"violent", []int{GenreAction, GenreCrime}, []string{"dark"}, "fast"},
	{"brutal", []int{GenreAction, GenreThriller}, []string{"dark"}, "fast"},

	// Scary.
	{"scary", []int{GenreHorror}, []string{"scary"}, ""},
	{"horror", []int{GenreHorror}, nil, ""},
	{"creepy", []int{GenreHorror, GenreMystery}, []string{"scary", "unsettling"}, "slow"},
	{"terrifying", []int{GenreHorror}, []string{"scary"}, ""},
	{"spooky", []int{GenreHorror, GenreFantasy}, []string{"scary"}, ""},
	{"haunted", []int{GenreHorror}, []string{"supernatural"}, ""},
	{"supernatural", []int{GenreHorror, GenreFantasy}, []string{"supernatural"}, ""},
	{"zombie", []int{GenreHorror}, []string{"zombies"}, "fast"},
	{"slasher", []int{GenreHorror}, []string{"scary"}, "fast"},

	// Tense / exciting.
	{"tense", []int{GenreThriller}, []string{"suspense"}, "fast"},
	{"suspense", []int{GenreThriller, GenreMystery}, []string{"suspense"}, ""},
	{"suspenseful", []int{GenreThriller, GenreMystery}, []string{"suspense"}, ""},
	{"thrilling", []int{GenreThriller, GenreAction}, []string{"suspense"}, "fast"},
	{"thriller", []int{GenreThriller}, nil, ""},
	{"exciting", []int{GenreAction, GenreAdventure}, []string{"high-energy"}, "fast"},
	{"action packed", []int{GenreAction}, []string{"high-energy"}, "fast"},
	{"action-packed", []int{GenreAction}, []string{"high-energy"}, "fast"},
	{"adrenaline", []int{GenreAction, GenreThriller}, []string{"high-energy"}, "fast"},
	{"intense", []int{GenreThriller, GenreAction}, []string{"suspense"}, "fast"},
	{"explosive", []int{GenreAction}, []string{"high-energy"}, "fast"},
	{"edge of your seat", []int{GenreThriller}, []string{"suspense"}, "fast"},

	// Mystery / puzzle.
	{"mystery", []int{GenreMystery}, nil, ""},
	{"mysterious", []int{GenreMystery, GenreThriller}, []string{"puzzle"}, ""},
	{"whodunit", []int{GenreMystery, GenreCrime}, []string{"puzzle"}, ""},
	{"detective", []int{GenreMystery, GenreCrime}, []string{"investigation"}, ""},
	{"mind bending", []int{GenreSciFi, GenreMystery}, []string{"mind-bending"}, ""},
	{"mind-bending", []int{GenreSciFi, GenreMystery}, []string{"mind-bending"}, ""},
	{"puzzle", []int{GenreMystery}, []string{"puzzle"}, ""},
	{"twist", []int{GenreThriller, GenreMystery}, []string{"mind-bending"}, ""},

	// Romance.
	{"romantic", []int{GenreRomance}, []string{"love"}, ""},
	{"romance", []int{GenreRomance}, nil, ""},
	{"love story", []int{GenreRomance, GenreDrama}, []string{"love"}, "slow"},
	{"rom com", []int{GenreRomance, GenreComedy}, []string{"love", "humor"}, ""},
	{"rom-com", []int{GenreRomance, GenreComedy}, []string{"love", "humor"}, ""},
	{"date night", []int{GenreRomance, GenreComedy}, []string{"love"}, ""},

	// Relaxed / cozy.
	{"relaxing", []int{GenreComedy, GenreFamily}, []string{"easy-watch"}, "slow"},
	{"chill", []int{GenreComedy}, []string{"easy-watch"}, "slow"},
	{"cozy", []int{GenreFamily, GenreRomance}, []string{"easy-watch"}, "slow"},
	{"comfort", []int{GenreComedy, GenreFamily}, []string{"easy-watch"}, "slow"},
	{"easy watching", []int{GenreComedy}, []string{"easy-watch"}, "slow"},
	{"background", []int{GenreComedy}, []string{"easy-watch"}, "slow"},

	// Adventure / spectacle.
	{"epic", []int{GenreAdventure, GenreFantasy}, []string{"spectacle"}, ""},
	{"adventure", []int{GenreAdventure}, nil, ""},
	{"adventurous", []int{GenreAdventure, GenreAction}, []string{"journey"}, "fast"},
	{"journey", []int{GenreAdventure, GenreDrama}, []string{"journey"}, ""},
	{"quest", []int{GenreAdventure, GenreFantasy}, []string{"journey"}, ""},
	{"magical", []int{GenreFantasy, GenreFamily}, []string{"magic"}, ""},
	{"fantasy", []int{GenreFantasy}, nil, ""},
	{"space", []int{GenreSciFi}, []string{"space"}, ""},
	{"sci fi", []int{GenreSciFi}, nil, ""},
	{"sci-fi", []int{GenreSciFi}, nil, ""},
	{"futuristic", []int{GenreSciFi}, []string{"future"}, ""},
	{"dystopian", []int{GenreSciFi, GenreThriller}, []string{"dystopia"}, ""},
	{"superhero", []int{GenreAction, GenreSciFi}, []string{"heroes"}, "fast"},

	// Grounded / factual.
	{"true story", []int{GenreDrama, GenreHistory}, []string{"based-on-truth"}, ""},
	{"based on a true story", []int{GenreDrama, GenreHistory}, []string{"based-on-truth"}, ""},
	{"historical", []int{GenreHistory, GenreDrama}, []string{"period"}, "slow"},
	{"documentary", []int{GenreDocumentary}, nil, ""},
	{"educational", []int{GenreDocumentary}, []string{"informative"}, "slow"},
	{"realistic", []int{GenreDrama}, []string{"realistic"}, ""},
	{"war", []int{GenreWar, GenreHistory}, nil, ""},
	{"western", []int{GenreWestern}, nil, ""},
	{"crime", []int{GenreCrime}, nil, ""},
	{"heist", []int{GenreCrime, GenreThriller}, []string{"heist"}, "fast"},
	{"gangster", []int{GenreCrime, GenreDrama}, []string{"organized-crime"}, ""},
	{"musical", []int{GenreMusic}, nil, ""},
	{"music", []int{GenreMusic}, nil, ""},
	{"animated", []int{GenreAnimation, GenreFamily}, nil, ""},
	{"animation", []int{GenreAnimation}, nil, ""},
	{"anime", []int{GenreAnimation}, nil, ""},
	{"family", []int{GenreFamily}, nil, ""},
	{"kids", []int{GenreFamily, GenreAnimation}, []string{"all-ages"}, ""},
	{"nostalgic", []int{GenreDrama, GenreFamily}, []string{"nostalgia"}, "slow"},
}

// genreNames maps direct genre mentions to provider genre ids.
var genreNames = map[string]int{
	"action":          GenreAction,
	"adventure":       GenreAdventure,
	"animation":       GenreAnimation,
	"comedy":          GenreComedy,
	"crime":           GenreCrime,
	"documentary":     GenreDocumentary,
	"drama":           GenreDrama,
	"family":          GenreFamily,
	"fantasy":         GenreFantasy,
	"history":         GenreHistory,
	"horror":          GenreHorror,
	"music":           GenreMusic,
	"mystery":         GenreMystery,
	"romance":         GenreRomance,
	"science fiction": GenreSciFi,
	"sci-fi":          GenreSciFi,
	"sci fi":          GenreSciFi,
	"thriller":        GenreThriller,
	"war":             GenreWar,
	"western":         GenreWestern,
}

// moodMatch is the accumulated result of scanning the mood table.
type moodMatch struct {
	moods    []string
	genreIDs []int
	themes   []string
	pacing   Pacing
}

// matchMoods scans the mood table in order against the lowercased query.
// Overlapping keywords accumulate genres and themes as a set union;
// the first matching entry with a pacing sets it.
func matchMoods(lowerQuery string) moodMatch {
	var m moodMatch
	seenGenre := make(map[int]struct{})
	seenTheme := make(map[string]struct{})

	for _, e := range moodTable {
		if !containsWord(lowerQuery, e.keyword) {
			continue
		}
		m.moods = append(m.moods, e.keyword)
		for _, g := range e.genres {
			if _, ok := seenGenre[g]; !ok {
				seenGenre[g] = struct{}{}
				m.genreIDs = append(m.genreIDs, g)
			}
		}
		for _, th := range e.themes {
			if _, ok := seenTheme[th]; !ok {
				seenTheme[th] = struct{}{}
				m.themes = append(m.themes, th)
			}
		}
		if m.pacing == "" && e.pacing != "" {
			m.pacing = e.pacing
		}
	}
	return m
}

// GenresForThemes unions the genre ids of every mood-table entry whose
// themes intersect the given set. The ranker uses this to decide
// whether content genres corroborate the query's detected themes.
func GenresForThemes(themes []string) []int {
	if len(themes) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(themes))
	for _, th := range themes {
		want[th] = struct{}{}
	}

	var ids []int
	seen := make(map[int]struct{})
	for _, e := range moodTable {
		matched := false
		for _, th := range e.themes {
			if _, ok := want[th]; ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, g := range e.genres {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				ids = append(ids, g)
			}
		}
	}
	return ids
}

// ResolveGenreName maps a genre name to its provider id.
func ResolveGenreName(name string) (int, bool) {
	id, ok := genreNames[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// matchGenreNames returns ids for genre names mentioned directly in the
// query, in table-independent deterministic order (scan of the query is
// driven by an ordered list).
func matchGenreNames(lowerQuery string) ([]string, []int) {
	var names []string
	var ids []int
	for _, name := range orderedGenreNames {
		if containsWord(lowerQuery, name) {
			names = append(names, name)
			ids = append(ids, genreNames[name])
		}
	}
	return names, ids
}

// containsWord reports whether phrase occurs in s on word boundaries.
// Plain substring containment lets short keywords fire inside longer
// words ("war" inside "award"), which misroutes genre detection.
func containsWord(s, phrase string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// orderedGenreNames fixes the scan order; longer names first so
// "science fiction" wins over partial matches.
var orderedGenreNames = []string{
	"science fiction",
	"documentary",
	"adventure",
	"animation",
	"thriller",
	"western",
	"fantasy",
	"history",
	"mystery",
	"romance",
	"comedy",
	"action",
	"family",
	"horror",
	"sci-fi",
	"sci fi",
	"crime",
	"drama",
	"music",
	"war",
}
