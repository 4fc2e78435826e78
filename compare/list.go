/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package compare

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Player is one entry of the comparison list. Color is assigned when the
// player joins the list and never changes while it stays.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Palette is an immutable sequence of display colors.
type Palette struct {
	colors []string
}

func NewPalette(colors ...string) Palette {
	return Palette{colors: append([]string(nil), colors...)}
}

// DefaultPalette is indigo shades followed by contrasting accents.
func DefaultPalette() Palette {
	return NewPalette(
		"#6366f1", "#4f46e5", "#818cf8", "#a5b4fc", "#c7d2fe",
		"#fbbf24", "#ef4444", "#22d3ee", "#10b981", "#f59e42",
	)
}

// Color returns the i'th color, wrapping around the palette.
func (p Palette) Color(i int) string {
	if len(p.colors) == 0 {
		return "#6366f1"
	}
	if i < 0 {
		i = -i
	}
	return p.colors[i%len(p.colors)]
}

func (p Palette) Len() int {
	return len(p.colors)
}

// URLSyncer rewrites the shareable location of a list in place, for example
// a browser address bar or a redirect target. ReplaceQuery is called with the
// list's lock held and must not call back into the List.
type URLSyncer interface {
	ReplaceQuery(query string)
}

// SyncFunc adapts a function to URLSyncer.
type SyncFunc func(query string)

func (f SyncFunc) ReplaceQuery(query string) {
	f(query)
}

// SearchResult is the subset of a search row needed to add a player.
type SearchResult struct {
	ID   string
	Name string
}

// NameResolver looks up a player's display name. An empty name means the
// provider does not know one.
type NameResolver interface {
	FirstName(ctx context.Context, id string) (string, error)
}

const idParam = "id"

// ParseIDs extracts the comma separated id parameter of a raw URL query.
// Entries are trimmed, and empty or repeated entries are dropped.
func ParseIDs(rawQuery string) []string {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil && len(values) == 0 {
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, raw := range values[idParam] {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// HasIDParam reports whether rawQuery carries an id parameter, even an
// empty one.
func HasIDParam(rawQuery string) bool {
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	_, ok := values[idParam]
	return ok
}

// EmptyListQuery is the query naming an explicitly empty list.
const EmptyListQuery = "?" + idParam + "="

// QueryFor returns "?id=a,b" for the given ids, or "" when there are none.
// Commas are left unescaped so shared links stay readable.
func QueryFor(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return "?" + idParam + "=" + strings.Join(escaped, ",")
}

// List is the comparison list. Every change replaces the whole player slice,
// so a slice returned by Players is never modified afterwards.
type List struct {
	// Logf, when set, receives non-fatal problems such as failed name lookups.
	Logf func(format string, args ...any)

	mu         sync.Mutex
	palette    Palette
	syncer     URLSyncer
	players    []Player
	nextColor  int
	seeded     bool
	generation uint64
}

func NewList(palette Palette, syncer URLSyncer) *List {
	return &List{palette: palette, syncer: syncer}
}

// Seed populates an unseeded list from rawQuery, using each id as its own
// placeholder name. fallback is used only when the query has no id
// parameter at all; a present but empty id ("?id=") is an explicitly empty
// list. Seeding enables URL sync and performs the first sync. It returns
// false if the list was already seeded.
func (l *List) Seed(rawQuery string, fallback Player) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seeded {
		return false
	}

	ids := ParseIDs(rawQuery)
	players := make([]Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, Player{ID: id, Name: id, Color: l.assignColor()})
	}
	if len(players) == 0 && fallback.ID != "" && !HasIDParam(rawQuery) {
		if fallback.Name == "" {
			fallback.Name = fallback.ID
		}
		fallback.Color = l.assignColor()
		players = append(players, fallback)
	}

	l.seeded = true
	l.replace(players)
	return true
}

// ResolveNames looks up a display name for every player still showing its
// placeholder. Lookups run concurrently and update entries in place by id;
// a failed lookup keeps the placeholder. Only cancellation is returned.
func (l *List) ResolveNames(ctx context.Context, resolver NameResolver) error {
	var pending []string
	for _, p := range l.Players() {
		if p.Name == p.ID {
			pending = append(pending, p.ID)
		}
	}

	var g errgroup.Group
	g.SetLimit(8)
	for _, id := range pending {
		g.Go(func() error {
			name, err := resolver.FirstName(ctx, id)
			if err != nil {
				l.logf("compare.resolveNames: keeping placeholder for %v: %v", id, err)
				return nil
			}
			if name != "" {
				l.rename(id, name)
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("compare.resolveNames: %w", context.Cause(ctx))
	}
	return nil
}

// Hydrate seeds the list synchronously and then resolves placeholder names.
func (l *List) Hydrate(ctx context.Context, rawQuery string, fallback Player,
	resolver NameResolver) error {

	l.Seed(rawQuery, fallback)
	return l.ResolveNames(ctx, resolver)
}

// Add appends a player with a freshly assigned color. A player already in
// the list is ignored and Add reports false.
func (l *List) Add(r SearchResult) bool {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(id) >= 0 {
		return false
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = id
	}

	players := make([]Player, len(l.players), len(l.players)+1)
	copy(players, l.players)
	players = append(players, Player{ID: id, Name: name, Color: l.assignColor()})
	l.replace(players)
	return true
}

// Remove deletes the player with the given id, reporting whether it was present.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(strings.TrimSpace(id))
	if idx < 0 {
		return false
	}

	players := make([]Player, 0, len(l.players)-1)
	players = append(players, l.players[:idx]...)
	players = append(players, l.players[idx+1:]...)
	l.replace(players)
	return true
}

// Players returns the current list. The slice must not be modified.
func (l *List) Players() []Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.players
}

func (l *List) IDs() []string {
	return playerIDs(l.Players())
}

func (l *List) Seeded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seeded
}

// Generation increases on every membership change. A batch of fetches
// started at one generation is stale once it differs.
func (l *List) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// ShareQuery is the query string that reproduces the current list.
func (l *List) ShareQuery() string {
	return QueryFor(l.IDs())
}

// ShareURL resolves the current list against base, replacing its query.
func (l *List) ShareURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("compare.shareURL: parsing %q: %w", base, err)
	}
	u.RawQuery = strings.TrimPrefix(l.ShareQuery(), "?")
	u.Fragment = ""
	return u.String(), nil
}

func (l *List) rename(id, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 || l.players[idx].Name == name {
		return
	}
	players := make([]Player, len(l.players))
	copy(players, l.players)
	players[idx].Name = name
	// names are not part of the shared query, so there is nothing to sync
	l.players = players
}

// replace installs players as the new list and syncs; l.mu must be held.
func (l *List) replace(players []Player) {
	l.players = players
	l.generation++
	if l.seeded && l.syncer != nil {
		l.syncer.ReplaceQuery(QueryFor(playerIDs(players)))
	}
}

func (l *List) assignColor() string {
	c := l.palette.Color(l.nextColor)
	l.nextColor++
	return c
}

func (l *List) indexOf(id string) int {
	for i, p := range l.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (l *List) logf(format string, args ...any) {
	if l.Logf != nil {
		l.Logf(format, args...)
	}
}

func playerIDs(players []Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
