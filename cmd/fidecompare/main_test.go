/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/ratings"
)

func intp(v int) *int { return &v }

type fakeProvider struct {
	mu       sync.Mutex
	searches []string
	names    map[string]string
	players  []fide.SearchPlayer
}

func (fp *fakeProvider) History(ctx context.Context, id string) ([]ratings.RatingPoint, error) {
	return []ratings.RatingPoint{
		{PeriodKey: "2025-01", Rating: ratings.ByType{Standard: intp(1900)}},
		{PeriodKey: "2025-02", Rating: ratings.ByType{Standard: intp(1950)}},
	}, nil
}

func (fp *fakeProvider) Compare(ctx context.Context, id1, id2 string) (ratings.ComparisonStats, error) {
	return ratings.ComparisonStats{
		"white_total_std": 3, "white_win_num_std": 1, "white_draw_num_std": 1,
		"black_total_std": 1, "black_win_num_std": 0, "black_draw_num_std": 1,
	}, nil
}

func (fp *fakeProvider) FirstName(ctx context.Context, id string) (string, error) {
	if name, ok := fp.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("no player %v", id)
}

func (fp *fakeProvider) Search(ctx context.Context, keyword string) ([]fide.SearchPlayer, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.searches = append(fp.searches, keyword)
	return fp.players, nil
}

func (fp *fakeProvider) searched() []string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]string(nil), fp.searches...)
}

// syncBuffer lets the test read output written by background goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (sb *syncBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Write(p)
}

func (sb *syncBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.String()
}

func TestSearchTable(t *testing.T) {
	out := searchTable([]fide.SearchPlayer{
		{ID: "1503014", Name: "Carlsen, Magnus", Title: "GM", Federation: "NOR", Standard: "2837"},
	})
	for _, want := range []string{"FIDE ID", "1503014", "Carlsen, Magnus", "NOR", "2837"} {
		if !strings.Contains(out, want) {
			t.Errorf("search table missing %q:\n%v", want, out)
		}
	}
	if got := searchTable(nil); got != "No players found.\n" {
		t.Errorf("empty search table = %q", got)
	}
}

func TestHistoryTable(t *testing.T) {
	hist := []ratings.RatingPoint{
		{PeriodKey: "2025-01", Rating: ratings.ByType{Standard: intp(2000)}, Games: ratings.ByType{Standard: intp(4)}},
		{PeriodKey: "2025-02"},
		{PeriodKey: "2025-03", Rating: ratings.ByType{Standard: intp(2010)}},
	}
	out := historyTable(hist, ratings.Standard)
	for _, want := range []string{"2025-02", noValue, "Peak", "2010", "2025-03"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%v", want, out)
		}
	}
}

func TestBreakdownTable(t *testing.T) {
	b, err := ratings.ComparisonRecord{WhiteTotal: 10, WhiteWins: 6, WhiteDraws: 2}.Breakdown()
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	out := breakdownTable(b)
	for _, want := range []string{"As White", "As Black", "Overall", "10"} {
		if !strings.Contains(out, want) {
			t.Errorf("breakdown table missing %q:\n%v", want, out)
		}
	}
	if got := breakdownTable(ratings.Breakdown{}); !strings.Contains(got, "No games") {
		t.Errorf("empty breakdown = %q", got)
	}
}

func TestPeakTable(t *testing.T) {
	players := []compare.Player{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "2"}}
	histories := []compare.PlayerHistory{
		{Player: players[0], History: []ratings.RatingPoint{
			{PeriodKey: "2024-01", Rating: ratings.ByType{Standard: intp(2100)}},
			{PeriodKey: "2024-02", Rating: ratings.ByType{Standard: intp(2080)}},
		}},
		{Player: players[1]},
	}
	out := peakTable(compare.BuildDashboard(players, histories, nil, ratings.Standard))
	for _, want := range []string{"Alpha", "2080", "2100", "2024-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("peak table missing %q:\n%v", want, out)
		}
	}
}

func newTestShell(t *testing.T, fp *fakeProvider, out *syncBuffer) *shell {
	t.Helper()
	sh := newShell(context.Background(), fp, fide.NewSearchCache(), out, 20*time.Millisecond)
	sh.list.Seed("id=1", compare.Player{})
	return sh
}

func TestShellAddRemove(t *testing.T) {
	fp := &fakeProvider{names: map[string]string{"1": "Alpha", "2": "Beta"}}
	out := &syncBuffer{}
	sh := newTestShell(t, fp, out)

	var copied string
	sh.shareBase = "https://example.org/dash"
	sh.copyLink = func(s string) { copied = s }

	input := "add 2\nadd 2\nremove 9\nlist\nshare\nquit\nadd 3\n"
	if err := sh.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := strings.Join(sh.list.IDs(), ","); got != "1,2" {
		t.Errorf("ids = %v, want 1,2", got)
	}
	text := out.String()
	for _, want := range []string{"added 2", "2 is already in the list", "9 is not in the list", "Beta"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%v", want, text)
		}
	}
	if copied != "https://example.org/dash?id=1%2C2" && copied != "https://example.org/dash?id=1,2" {
		t.Errorf("copied link = %q", copied)
	}

	d, ok := sh.latest.Value()
	if !ok {
		t.Fatal("no dashboard committed")
	}
	if len(d.Series) != 2 || len(d.Pairs) != 1 {
		t.Errorf("dashboard has %v series and %v pairs", len(d.Series), len(d.Pairs))
	}
}

func TestShellAddFromSearchResults(t *testing.T) {
	fp := &fakeProvider{players: []fide.SearchPlayer{{ID: "7", Name: "Gamma"}}}
	out := &syncBuffer{}
	sh := newTestShell(t, fp, out)

	sh.runSearch(context.Background(), "gam")
	sh.exec(context.Background(), "add 1")
	sh.wait()

	players := sh.list.Players()
	if len(players) != 2 || players[1].ID != "7" || players[1].Name != "Gamma" {
		t.Errorf("players = %+v", players)
	}
}

func TestShellSearchCacheHit(t *testing.T) {
	fp := &fakeProvider{}
	out := &syncBuffer{}
	sh := newTestShell(t, fp, out)
	sh.cache.Put("carlsen", []fide.SearchPlayer{{ID: "1503014", Name: "Carlsen, Magnus"}})

	sh.runSearch(context.Background(), "carlsen")
	if got := fp.searched(); len(got) != 0 {
		t.Errorf("provider searched %v despite cached result", got)
	}
	if !strings.Contains(out.String(), "Carlsen, Magnus") {
		t.Errorf("cached result not printed:\n%v", out.String())
	}
}

func TestShellSearchDebounced(t *testing.T) {
	fp := &fakeProvider{players: []fide.SearchPlayer{{ID: "7", Name: "Gamma"}}}
	out := &syncBuffer{}
	sh := newTestShell(t, fp, out)
	defer sh.wait()

	for _, kw := range []string{"g", "ga", "gam"} {
		sh.exec(context.Background(), "search "+kw)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(fp.searched()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if got := fp.searched(); len(got) != 1 || got[0] != "gam" {
		t.Errorf("searched %v, want only gam", got)
	}
}

// blockingSearch holds every search until its context ends.
type blockingSearch struct {
	*fakeProvider
	started chan struct{}
	once    sync.Once
}

func (bs *blockingSearch) Search(ctx context.Context, keyword string) ([]fide.SearchPlayer, error) {
	bs.once.Do(func() { close(bs.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestShellWaitCancelsRunningSearch(t *testing.T) {
	bs := &blockingSearch{fakeProvider: &fakeProvider{}, started: make(chan struct{})}
	out := &syncBuffer{}
	sh := newShell(context.Background(), bs, fide.NewSearchCache(), out, 10*time.Millisecond)

	sh.exec(context.Background(), "search carlsen")
	select {
	case <-bs.started:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never started")
	}

	sh.wait()
	after := out.String()
	time.Sleep(50 * time.Millisecond)
	if got := out.String(); got != after {
		t.Errorf("output written after wait returned: %q", strings.TrimPrefix(got, after))
	}
	if strings.Contains(after, "failed") {
		t.Errorf("canceled search reported as failure:\n%v", after)
	}

	// searches submitted after shutdown never run
	sh.exec(context.Background(), "search nakamura")
	time.Sleep(50 * time.Millisecond)
	if got := out.String(); got != after {
		t.Errorf("search ran after wait: %q", got)
	}
}

func TestShellType(t *testing.T) {
	fp := &fakeProvider{}
	out := &syncBuffer{}
	sh := newTestShell(t, fp, out)

	sh.exec(context.Background(), "type blitz")
	sh.exec(context.Background(), "type bogus")
	sh.wait()

	if sh.rt != ratings.Blitz {
		t.Errorf("rating type = %v, want blitz", sh.rt)
	}
	if !strings.Contains(out.String(), "unknown rating type") {
		t.Errorf("missing error for bogus type:\n%v", out.String())
	}
}
