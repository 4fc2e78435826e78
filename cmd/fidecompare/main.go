/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/internal"
	"github.com/mikeb26/fidecompare/ratings"
	"github.com/mikeb26/fidecompare/report"
	"github.com/mikeb26/fidecompare/web"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

var commands = map[string]cmdHandler{
	"help":    handleHelp,
	"search":  handleSearch,
	"history": handleHistory,
	"peak":    handlePeak,
	"compare": handleCompare,
	"chart":   handleChart,
	"share":   handleShare,
	"serve":   handleServe,
	"shell":   handleShell,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

// app bundles what every command needs once flags are parsed.
type app struct {
	cfg     *internal.Config
	client  *fide.Client
	metrics *internal.FetchMetrics
}

func newApp(ctx context.Context, configPath string) *app {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	metrics, err := internal.NewFetchMetrics()
	if err != nil {
		log.Fatalf("Error creating metrics: %v", err)
	}

	fc := fide.ConfigFrom(cfg)
	fc.Observer = metrics
	return &app{cfg: cfg, client: fide.NewClient(ctx, fc), metrics: metrics}
}

func (a *app) defaultPlayer() compare.Player {
	return compare.Player{ID: a.cfg.DefaultPlayer.ID, Name: a.cfg.DefaultPlayer.Name}
}

// hydrate builds a comparison list from a comma separated id list, the same
// way the dashboard does from its URL.
func (a *app) hydrate(ctx context.Context, ids string) *compare.List {
	list := compare.NewList(compare.DefaultPalette(), nil)
	list.Logf = log.Printf
	if err := list.Hydrate(ctx, idsQuery(ids), a.defaultPlayer(), a.client); err != nil {
		log.Fatalf("Error resolving players: %v", err)
	}
	return list
}

// idsQuery turns a -ids flag into a list query; an unset flag leaves the
// id parameter out so the default player applies.
func idsQuery(ids string) string {
	if strings.TrimSpace(ids) == "" {
		return ""
	}
	return "id=" + url.QueryEscape(ids)
}

func (a *app) loader() *compare.Loader {
	return &compare.Loader{History: a.client, Stats: a.client, Logf: log.Printf}
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
}

func mustRatingType(s string) ratings.RatingType {
	rt, err := ratings.ParseRatingType(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return rt
}

func handleSearch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	keyword := fs.String("q", "", "Name or FIDE id to search for")
	parseFlags(fs, args)
	if *keyword == "" {
		*keyword = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(*keyword) == "" {
		fmt.Fprintln(os.Stderr, "Please provide a search keyword with -q.")
		fs.Usage()
		os.Exit(1)
	}

	a := newApp(ctx, *configPath)
	players, err := a.client.Search(ctx, *keyword)
	if err != nil {
		log.Fatalf("Error searching players: %v", err)
	}
	fmt.Print(searchTable(players))
}

func handleHistory(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	id := fs.String("id", "", "FIDE id of the player")
	typ := fs.String("type", "standard", "Rating type: standard, rapid or blitz")
	parseFlags(fs, args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "Please provide a player with -id.")
		fs.Usage()
		os.Exit(1)
	}
	rt := mustRatingType(*typ)

	a := newApp(ctx, *configPath)
	hist, err := a.client.History(ctx, *id)
	if err != nil {
		log.Fatalf("Error fetching history: %v", err)
	}
	if len(hist) == 0 {
		fmt.Println("No rating history available.")
		return
	}
	fmt.Print(historyTable(hist, rt))
}

func handlePeak(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("peak", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	ids := fs.String("ids", "", "Comma separated FIDE ids (default player if empty)")
	typ := fs.String("type", "standard", "Rating type: standard, rapid or blitz")
	parseFlags(fs, args)
	rt := mustRatingType(*typ)

	a := newApp(ctx, *configPath)
	list := a.hydrate(ctx, *ids)
	ld := a.loader()
	d := compare.BuildDashboard(list.Players(), ld.LoadHistories(ctx, list.Players()), nil, rt)
	fmt.Print(peakTable(d))
}

func handleCompare(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	id1 := fs.String("id1", "", "FIDE id of the first player")
	id2 := fs.String("id2", "", "FIDE id of the second player")
	typ := fs.String("type", "standard", "Rating type: standard, rapid or blitz")
	parseFlags(fs, args)
	if *id1 == "" || *id2 == "" {
		fmt.Fprintln(os.Stderr, "Please provide both -id1 and -id2.")
		fs.Usage()
		os.Exit(1)
	}
	rt := mustRatingType(*typ)

	a := newApp(ctx, *configPath)
	stats, err := a.client.Compare(ctx, *id1, *id2)
	if err != nil {
		log.Fatalf("Error fetching comparison: %v", err)
	}
	if stats == nil {
		fmt.Println("No comparison data.")
		return
	}

	b, err := stats.Record(rt).Breakdown()
	if err != nil {
		// inconsistent provider totals are shown as-is, not hidden
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fmt.Printf("%v vs %v (%v)\n", *id1, *id2, rt.Label())
	fmt.Print(breakdownTable(b))
}

func handleChart(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	ids := fs.String("ids", "", "Comma separated FIDE ids (default player if empty)")
	typ := fs.String("type", "standard", "Rating type: standard, rapid or blitz")
	out := fs.String("o", "fidecompare.html", "Output file, or - for stdout")
	parseFlags(fs, args)
	rt := mustRatingType(*typ)

	a := newApp(ctx, *configPath)
	list := a.hydrate(ctx, *ids)
	d := a.loader().Load(ctx, list.Players(), rt)

	shareURL, err := list.ShareURL(a.cfg.ShareBaseURL)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Error creating %v: %v", *out, err)
		}
		defer f.Close()
		w = f
	}
	if err := report.RenderDashboard(w, d, report.Options{ShareURL: shareURL}); err != nil {
		log.Fatalf("Error rendering chart: %v", err)
	}
	if *out != "-" {
		fmt.Printf("Wrote %v\n", *out)
	}
}

func handleShare(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	ids := fs.String("ids", "", "Comma separated FIDE ids")
	base := fs.String("base", "", "Dashboard base URL (defaults to share_base_url)")
	doCopy := fs.Bool("copy", false, "Copy the link to the clipboard")
	parseFlags(fs, args)

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *base == "" {
		*base = cfg.ShareBaseURL
	}

	list := compare.NewList(compare.DefaultPalette(), nil)
	list.Seed(idsQuery(*ids), compare.Player{ID: cfg.DefaultPlayer.ID, Name: cfg.DefaultPlayer.Name})
	link, err := list.ShareURL(*base)
	if err != nil {
		log.Fatalf("Error building link: %v", err)
	}
	fmt.Println(link)

	if *doCopy {
		copyToClipboard(link)
	}
}

// copyToClipboard never fails the command; a missing clipboard is only logged.
func copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		log.Printf("share: failed to copy link to clipboard: %v", err)
		return
	}
	fmt.Println("Link copied to clipboard.")
}

func handleServe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a config file")
	addr := fs.String("addr", "", "Listen address (defaults to listen_addr)")
	parseFlags(fs, args)

	a := newApp(ctx, *configPath)
	if *addr == "" {
		*addr = a.cfg.ListenAddr
	}

	srv := web.NewServer(a.client, web.Options{
		DefaultPlayer: a.defaultPlayer(),
		ShareBaseURL:  a.cfg.ShareBaseURL,
		Metrics:       a.metrics.Handler(),
	})
	if err := srv.ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error serving dashboard: %v", err)
	}
}
