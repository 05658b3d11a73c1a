package mockserver

import (
	"slices"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/s0up4200/filmforum/filmapi"
)

// catalog holds the films served by the mock API
type catalog struct {
	films []filmapi.Film
	mu    sync.RWMutex
}

func newCatalog(films []filmapi.Film) *catalog {
	return &catalog{films: slices.Clone(films)}
}

func (c *catalog) all() []filmapi.Film {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.films)
}

func (c *catalog) get(id string) (filmapi.Film, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.films {
		if f.ID == id {
			return f, true
		}
	}
	return filmapi.Film{}, false
}

// search returns films whose title fuzzily contains every word of query,
// ignoring case and diacritics. Results keep catalog order.
func (c *catalog) search(query string) []filmapi.Film {
	words := strings.Fields(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]filmapi.Film, 0)
	if len(words) == 0 {
		return matches
	}

	for _, f := range c.films {
		if matchesAll(words, f.Title) {
			matches = append(matches, f)
		}
	}
	return matches
}

func matchesAll(words []string, title string) bool {
	for _, w := range words {
		if !fuzzy.MatchNormalizedFold(w, title) {
			return false
		}
	}
	return true
}

// DefaultCatalog returns the films the mock API serves unless WithCatalog is used
func DefaultCatalog() []filmapi.Film {
	return []filmapi.Film{
		{
			ID:          "1",
			Title:       "The Matrix",
			Description: "A hacker learns the true nature of his reality.",
			IsMovie:     true,
			Episodes: []filmapi.Episode{
				{ID: "101", Title: "The Matrix", EpisodeNumber: 1, SeasonNumber: 1, Length: 136, Year: 1999},
			},
		},
		{
			ID:          "2",
			Title:       "The Matrix Reloaded",
			Description: "Neo and the rebel leaders prepare for the machine attack on Zion.",
			IsMovie:     true,
			Episodes: []filmapi.Episode{
				{ID: "201", Title: "The Matrix Reloaded", EpisodeNumber: 1, SeasonNumber: 1, Length: 138, Year: 2003},
			},
		},
		{
			ID:          "3",
			Title:       "Dark",
			Description: "A missing child sets four families on a hunt through time.",
			IsMovie:     false,
			Episodes: []filmapi.Episode{
				{ID: "301", Title: "Secrets", EpisodeNumber: 1, SeasonNumber: 1, Length: 52, Year: 2017},
				{ID: "302", Title: "Lies", EpisodeNumber: 2, SeasonNumber: 1, Length: 44, Year: 2017},
				{ID: "303", Title: "Beginnings and Endings", EpisodeNumber: 1, SeasonNumber: 2, Length: 53, Year: 2019},
			},
		},
		{
			ID:          "4",
			Title:       "Amélie",
			Description: "A shy waitress decides to change the lives of those around her.",
			IsMovie:     true,
			Episodes: []filmapi.Episode{
				{ID: "401", Title: "Amélie", EpisodeNumber: 1, SeasonNumber: 1, Length: 122, Year: 2001},
			},
		},
		{
			ID:          "5",
			Title:       "Chernobyl",
			Description: "The 1986 nuclear disaster and the cleanup that followed.",
			IsMovie:     false,
			Episodes: []filmapi.Episode{
				{ID: "501", Title: "1:23:45", EpisodeNumber: 1, SeasonNumber: 1, Length: 60, Year: 2019},
				{ID: "502", Title: "Please Remain Calm", EpisodeNumber: 2, SeasonNumber: 1, Length: 65, Year: 2019},
			},
		},
		{
			ID:          "6",
			Title:       "Interstellar",
			Description: "Explorers travel through a wormhole in search of a new home.",
			IsMovie:     true,
			Episodes: []filmapi.Episode{
				{ID: "601", Title: "Interstellar", EpisodeNumber: 1, SeasonNumber: 1, Length: 169, Year: 2014},
			},
		},
	}
}
