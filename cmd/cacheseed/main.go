/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/internal"
)

// this program exists just to seed the http cache for a set of players

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	ids := flag.String("ids", "", "Comma separated FIDE ids (default player if empty)")
	pause := flag.Duration("pause", 2*time.Second, "Delay between provider requests")
	flag.Parse()

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("cacheseed: failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := fide.NewClient(ctx, fide.ConfigFrom(cfg))
	list := compare.NewList(compare.DefaultPalette(), nil)
	query := ""
	if *ids != "" {
		query = "id=" + *ids
	}
	list.Seed(query, compare.Player{ID: cfg.DefaultPlayer.ID, Name: cfg.DefaultPlayer.Name})
	players := list.Players()

	for _, p := range players {
		hist, err := client.History(ctx, p.ID)
		time.Sleep(*pause) // avoid pegging the provider
		if err != nil {
			// best effort
			continue
		}
		fmt.Printf("seeded %v history (%d periods)\n", p.ID, len(hist))
	}

	for _, pair := range compare.Pairs(players) {
		if ctx.Err() != nil {
			return
		}
		_, err := client.Compare(ctx, pair[0].ID, pair[1].ID)
		time.Sleep(*pause) // avoid pegging the provider
		if err != nil {
			// best effort
			continue
		}
		fmt.Printf("seeded %v vs %v\n", pair[0].ID, pair[1].ID)
	}
}
