package playlist

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hazadus/go-mediaplayer/internal/media"
)

// Match - найденный элемент и плейлист, в котором он лежит
type Match struct {
	PlaylistID   string
	PlaylistName string
	Item         media.Item
	// Rank - расстояние до запроса, меньше значит ближе
	Rank int
}

// Find ищет элементы всех плейлистов по названию и исполнителю без учета регистра
func (m *Manager) Find(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var matches []Match
	for _, p := range m.playlists.Get() {
		for _, item := range p.Items {
			rank := bestRank(query, item.Title, item.Artist)
			if rank < 0 {
				continue
			}
			matches = append(matches, Match{
				PlaylistID:   p.ID,
				PlaylistName: p.Name,
				Item:         item,
				Rank:         rank,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	return matches
}

// bestRank возвращает наименьший ранг среди полей или -1, если совпадений нет
func bestRank(query string, fields ...string) int {
	best := -1
	for _, field := range fields {
		if field == "" {
			continue
		}
		rank := fuzzy.RankMatchFold(query, field)
		if rank >= 0 && (best < 0 || rank < best) {
			best = rank
		}
	}
	return best
}
