/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fide

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/mikeb26/fidecompare/internal"
	"github.com/mikeb26/fidecompare/ratings"
)

// History returns the player's rating history ordered by period. A missing id,
// an error status or an unreadable body mean no data and return an empty
// history; only transport failure and cancellation are errors.
func (client *Client) History(ctx context.Context,
	id string) ([]ratings.RatingPoint, error) {

	recs, err := client.historyRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	return ratings.NormalizeHistory(recs), nil
}

// FirstName returns the player name carried by the first history record the
// provider sends, or "" when there is none.
func (client *Client) FirstName(ctx context.Context, id string) (string, error) {
	recs, err := client.historyRecords(ctx, id)
	if err != nil {
		return "", err
	}
	for _, rec := range recs {
		if name, ok := rec["name"].(string); ok {
			if name = internal.NormalizeName(name); name != "" {
				return name, nil
			}
		}
	}
	return "", nil
}

func (client *Client) historyRecords(ctx context.Context,
	id string) ([]ratings.RawRecord, error) {

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	target := client.endpoint(HistoryEndpoint, url.Values{
		"event":  {id},
		"period": {"0"},
	})
	resp, err := client.get(ctx, client.dataClient, target, client.cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("fide.history %v: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("fide.history: no data for %v: status %d", id, resp.StatusCode)
		return nil, nil
	}

	var recs []ratings.RawRecord
	if !decodeJSON(resp.Body, &recs) {
		log.Printf("fide.history: no data for %v: malformed response", id)
		return nil, nil
	}

	return recs, nil
}
