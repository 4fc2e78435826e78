/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package compare

import (
	"context"

	"github.com/mikeb26/fidecompare/ratings"
	"golang.org/x/sync/errgroup"
)

type HistorySource interface {
	History(ctx context.Context, id string) ([]ratings.RatingPoint, error)
}

type StatsSource interface {
	Compare(ctx context.Context, id1, id2 string) (ratings.ComparisonStats, error)
}

// PlayerHistory is one player's fetched history, or the error that kept it
// from loading.
type PlayerHistory struct {
	Player  Player
	History []ratings.RatingPoint
	Err     error
}

// PairStats is the head-to-head record of A against B. Nil Stats with a nil
// Err means the provider has no data for the pair.
type PairStats struct {
	A     Player
	B     Player
	Stats ratings.ComparisonStats
	Err   error
}

const defaultConcurrency = 6

// Loader fans out provider requests for a set of players. A failure for one
// player or pair is recorded on its result and never affects the others.
type Loader struct {
	History     HistorySource
	Stats       StatsSource
	Concurrency int
	Logf        func(format string, args ...any)
}

func (ld *Loader) limit() int {
	if ld.Concurrency > 0 {
		return ld.Concurrency
	}
	return defaultConcurrency
}

// LoadHistories fetches every player's history, in player order.
func (ld *Loader) LoadHistories(ctx context.Context, players []Player) []PlayerHistory {
	out := make([]PlayerHistory, len(players))

	var g errgroup.Group
	g.SetLimit(ld.limit())
	for i, p := range players {
		g.Go(func() error {
			hist, err := ld.History.History(ctx, p.ID)
			if err != nil {
				ld.logf("compare.loadHistories: %v: %v", p.ID, err)
			}
			out[i] = PlayerHistory{Player: p, History: hist, Err: err}
			return nil
		})
	}
	g.Wait()

	return out
}

// Pairs returns every unordered pair of players, i before j.
func Pairs(players []Player) [][2]Player {
	var pairs [][2]Player
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			pairs = append(pairs, [2]Player{players[i], players[j]})
		}
	}
	return pairs
}

// LoadPairs fetches head-to-head statistics for all n*(n-1)/2 pairs.
func (ld *Loader) LoadPairs(ctx context.Context, players []Player) []PairStats {
	pairs := Pairs(players)
	out := make([]PairStats, len(pairs))
	if ld.Stats == nil {
		for i, pr := range pairs {
			out[i] = PairStats{A: pr[0], B: pr[1]}
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(ld.limit())
	for i, pr := range pairs {
		g.Go(func() error {
			stats, err := ld.Stats.Compare(ctx, pr[0].ID, pr[1].ID)
			if err != nil {
				ld.logf("compare.loadPairs: %v/%v: %v", pr[0].ID, pr[1].ID, err)
			}
			out[i] = PairStats{A: pr[0], B: pr[1], Stats: stats, Err: err}
			return nil
		})
	}
	g.Wait()

	return out
}

// Load fetches histories and pair statistics together and shapes them.
func (ld *Loader) Load(ctx context.Context, players []Player,
	rt ratings.RatingType) Dashboard {

	var histories []PlayerHistory
	var pairs []PairStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		histories = ld.LoadHistories(gctx, players)
		return nil
	})
	g.Go(func() error {
		pairs = ld.LoadPairs(gctx, players)
		return nil
	})
	g.Wait()

	return BuildDashboard(players, histories, pairs, rt)
}

// Refresh loads the dashboard for players as a new batch of latest and
// commits it unless a newer batch started meanwhile.
func (ld *Loader) Refresh(ctx context.Context, latest *Latest[Dashboard],
	players []Player, rt ratings.RatingType) (Dashboard, bool) {

	batchCtx, ticket := latest.Begin(ctx)
	d := ld.Load(batchCtx, players, rt)
	return d, latest.Commit(ticket, d)
}

func (ld *Loader) logf(format string, args ...any) {
	if ld.Logf != nil {
		ld.Logf(format, args...)
	}
}
