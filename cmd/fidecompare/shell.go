/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/ratings"
	"github.com/mikeb26/fidecompare/web"
)

const shellHelp = `Commands:
  search <keyword>   search players (results appear once typing pauses)
  add <n|id>         add search result n, or a player by FIDE id
  remove <id>        remove a player
  type <t>           switch rating type: standard, rapid or blitz
  list               show the comparison list
  show               show the last loaded dashboard
  share              print the share link and copy it to the clipboard
  quit               exit
`

func handleShell(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	ids := fs.String("ids", "", "Comma separated FIDE ids to start with")
	parseFlags(fs, args)

	a := newApp(ctx, *configPath)
	sh := newShell(ctx, a.client, a.client.Searches(), os.Stdout, compare.DefaultDebounce)
	sh.shareBase = a.cfg.ShareBaseURL
	sh.copyLink = copyToClipboard
	if err := sh.list.Hydrate(ctx, idsQuery(*ids), a.defaultPlayer(), a.client); err != nil {
		log.Fatalf("Error resolving players: %v", err)
	}
	sh.refresh(ctx)

	if err := sh.Run(os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error reading input: %v", err)
	}
}

// shell is an interactive comparison list. Searches are debounced and
// dashboard reloads are superseded by newer ones, so only the latest
// results of either are ever printed.
type shell struct {
	provider web.Provider
	cache    *fide.SearchCache
	list     *compare.List
	loader   *compare.Loader
	latest   compare.Latest[compare.Dashboard]
	search   *compare.Debouncer[string]

	shareBase string
	copyLink  func(string)

	// ctx bounds the shell's lifetime. Debounced searches run under
	// searchCtx, which wait cancels.
	ctx          context.Context
	searchCtx    context.Context
	cancelSearch context.CancelFunc
	wg           sync.WaitGroup

	// closed is set by wait; no background work may start afterwards.
	lifeMu sync.Mutex
	closed bool

	mu      sync.Mutex
	out     io.Writer
	results []fide.SearchPlayer
	rt      ratings.RatingType
}

func newShell(ctx context.Context, provider web.Provider, cache *fide.SearchCache,
	out io.Writer, debounce time.Duration) *shell {

	sh := &shell{
		provider: provider,
		cache:    cache,
		list:     compare.NewList(compare.DefaultPalette(), nil),
		loader:   &compare.Loader{History: provider, Stats: provider, Logf: log.Printf},
		ctx:      ctx,
		out:      out,
		rt:       ratings.Standard,
	}
	sh.list.Logf = log.Printf
	sh.searchCtx, sh.cancelSearch = context.WithCancel(ctx)
	sh.search = compare.NewDebouncer(debounce, func(keyword string) {
		if !sh.track() {
			return
		}
		defer sh.wg.Done()
		sh.runSearch(sh.searchCtx, keyword)
	})
	return sh
}

// Run reads commands until EOF, quit or the shell's context ends, then waits
// for pending dashboard reloads. A search still waiting out its debounce
// interval at that point is dropped, and one already running is canceled.
// Nothing is printed after Run returns.
func (sh *shell) Run(in io.Reader) error {
	ctx := sh.ctx
	defer sh.wait()

	sh.printf("%v", shellHelp)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if !sh.exec(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

func (sh *shell) wait() {
	sh.search.Stop()
	sh.lifeMu.Lock()
	sh.closed = true
	sh.lifeMu.Unlock()
	sh.cancelSearch()
	sh.wg.Wait()
}

// track registers one unit of background work unless the shell is closing.
func (sh *shell) track() bool {
	sh.lifeMu.Lock()
	defer sh.lifeMu.Unlock()
	if sh.closed {
		return false
	}
	sh.wg.Add(1)
	return true
}

// exec runs one command line and reports whether the shell should continue.
func (sh *shell) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit":
		return false
	case "help", "?":
		sh.printf("%v", shellHelp)
	case "search":
		if arg == "" {
			sh.printf("usage: search <keyword>\n")
			break
		}
		sh.search.Submit(arg)
	case "add":
		sh.add(ctx, arg)
	case "remove", "rm":
		if sh.list.Remove(arg) {
			sh.refresh(ctx)
		} else {
			sh.printf("%v is not in the list\n", arg)
		}
	case "type":
		rt, err := ratings.ParseRatingType(arg)
		if err != nil {
			sh.printf("%v\n", err)
			break
		}
		sh.mu.Lock()
		sh.rt = rt
		sh.mu.Unlock()
		sh.refresh(ctx)
	case "list":
		for i, p := range sh.list.Players() {
			sh.printf("%2d. %v (%v) %v\n", i+1, playerLabel(p), p.ID, p.Color)
		}
	case "show":
		d, ok := sh.latest.Value()
		if !ok {
			sh.printf("dashboard still loading\n")
			break
		}
		sh.printf("%v", dashboardSummary(d))
	case "share":
		link, err := sh.list.ShareURL(sh.shareBase)
		if err != nil {
			sh.printf("%v\n", err)
			break
		}
		sh.printf("%v\n", link)
		if sh.copyLink != nil {
			sh.copyLink(link)
		}
	default:
		sh.printf("unknown command %q; try help\n", cmd)
	}
	return true
}

func (sh *shell) runSearch(ctx context.Context, keyword string) {
	players, ok := sh.cache.Get(keyword)
	if !ok {
		var err error
		players, err = sh.provider.Search(ctx, keyword)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			sh.printf("search %q failed: %v\n", keyword, err)
			return
		}
	}

	sh.mu.Lock()
	sh.results = players
	sh.mu.Unlock()

	sh.printf("%v", searchTable(players))
}

// add accepts either a 1-based index into the last search results or a
// FIDE id, whose name is then looked up.
func (sh *shell) add(ctx context.Context, arg string) {
	if arg == "" {
		sh.printf("usage: add <n|id>\n")
		return
	}

	result := compare.SearchResult{ID: arg, Name: arg}
	sh.mu.Lock()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(sh.results) {
		p := sh.results[n-1]
		result = compare.SearchResult{ID: p.ID, Name: p.Name}
	}
	sh.mu.Unlock()

	if !sh.list.Add(result) {
		sh.printf("%v is already in the list\n", result.ID)
		return
	}
	if result.Name == result.ID {
		if err := sh.list.ResolveNames(ctx, sh.provider); err != nil {
			sh.printf("%v\n", err)
		}
	}
	sh.printf("added %v\n", result.ID)
	sh.refresh(ctx)
}

// refresh reloads the dashboard in the background. A reload superseded by a
// later change is neither committed nor printed.
func (sh *shell) refresh(ctx context.Context) {
	sh.mu.Lock()
	rt := sh.rt
	sh.mu.Unlock()
	players := sh.list.Players()

	if !sh.track() {
		return
	}
	go func() {
		defer sh.wg.Done()
		d, committed := sh.loader.Refresh(ctx, &sh.latest, players, rt)
		if committed {
			sh.printf("%v", dashboardSummary(d))
		}
	}()
}

func (sh *shell) printf(format string, args ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}
