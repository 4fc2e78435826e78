/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fide

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SearchPlayer is one row of the provider's player search table. Ratings are
// kept as displayed; an unrated player has an empty value.
type SearchPlayer struct {
	ID           string `json:"fideId"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	TrainerTitle string `json:"trainerTitle"`
	Federation   string `json:"federation"`
	Standard     string `json:"standard"`
	Rapid        string `json:"rapid"`
	Blitz        string `json:"blitz"`
	BirthYear    string `json:"birthYear"`
}

// Search looks up players whose name or id matches keyword. Successful
// results are also remembered in Searches().
func (client *Client) Search(ctx context.Context,
	keyword string) ([]SearchPlayer, error) {

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}

	target := client.endpoint(SearchEndpoint, url.Values{
		"search": {keyword},
		"simple": {"1"},
	})
	resp, err := client.get(ctx, client.searchClient, target, client.cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("fide.search %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fide.search %q: %w", keyword, statusError("search", resp))
	}

	players, err := ParseSearchTable(resp.Body, client.cfg.PinnedFederation)
	if err != nil {
		return nil, fmt.Errorf("fide.search %q: %w", keyword, err)
	}
	client.searches.Put(keyword, players)

	return players, nil
}

var federationRe = regexp.MustCompile(`([A-Z]{3})$`)

// ParseSearchTable extracts the rows of #table_results. A page without the
// table yields no players. Players of pinnedFed sort first, then by name.
func ParseSearchTable(r io.Reader, pinnedFed string) ([]SearchPlayer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing search HTML: %w", err)
	}

	var players []SearchPlayer
	doc.Find("#table_results tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		cell := func(idx int) string {
			return strings.TrimSpace(cells.Eq(idx).Text())
		}
		p := SearchPlayer{
			ID:           cell(0),
			Name:         cell(1),
			Title:        cell(2),
			TrainerTitle: cell(3),
			Federation:   parseFederation(cells.Eq(4).Text()),
			Standard:     cell(5),
			Rapid:        cell(6),
			Blitz:        cell(7),
			BirthYear:    cell(8),
		}
		if p.ID == "" && p.Name == "" {
			return
		}
		players = append(players, p)
	})

	SortPlayers(players, pinnedFed)
	return players, nil
}

// parseFederation keeps the trailing three letter code of a cell that may
// also carry a flag image alt text or the country's name.
func parseFederation(text string) string {
	text = strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "").Replace(text))
	if m := federationRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// SortPlayers orders players with pinnedFed first, each group by name.
func SortPlayers(players []SearchPlayer, pinnedFed string) {
	col := collate.New(language.English, collate.Loose)
	sort.SliceStable(players, func(i, j int) bool {
		pi := pinnedFed != "" && players[i].Federation == pinnedFed
		pj := pinnedFed != "" && players[j].Federation == pinnedFed
		if pi != pj {
			return pi
		}
		return col.CompareString(players[i].Name, players[j].Name) < 0
	})
}

// SearchCache remembers the results of each searched keyword for the life of
// a session.
type SearchCache struct {
	mu      sync.Mutex
	results map[string][]SearchPlayer
	order   []string
}

func NewSearchCache() *SearchCache {
	return &SearchCache{results: make(map[string][]SearchPlayer)}
}

func (sc *SearchCache) Put(keyword string, players []SearchPlayer) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, ok := sc.results[keyword]; !ok {
		sc.order = append(sc.order, keyword)
	}
	sc.results[keyword] = players
}

func (sc *SearchCache) Get(keyword string) ([]SearchPlayer, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	players, ok := sc.results[strings.TrimSpace(keyword)]
	return players, ok
}

// Keywords returns previously searched keywords, oldest first.
func (sc *SearchCache) Keywords() []string {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return append([]string(nil), sc.order...)
}
