/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package fide

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mikeb26/fidecompare/ratings"
)

// Compare fetches the head-to-head statistics of id1 against id2. A body
// that is not a non-empty JSON array of objects means the pair has no data
// and returns nil stats without error.
func (client *Client) Compare(ctx context.Context,
	id1, id2 string) (ratings.ComparisonStats, error) {

	id1, id2 = strings.TrimSpace(id1), strings.TrimSpace(id2)
	if id1 == "" || id2 == "" {
		return nil, nil
	}

	target := client.endpoint(CompareEndpoint, url.Values{
		"id1": {id1},
		"id2": {id2},
	})
	resp, err := client.get(ctx, client.dataClient, target, client.cfg.ComparePolicy)
	if err != nil {
		return nil, fmt.Errorf("fide.compare %v/%v: %w", id1, id2, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fide.compare %v/%v: %w", id1, id2,
			statusError("compare", resp))
	}

	var stats []ratings.ComparisonStats
	if !decodeJSON(resp.Body, &stats) || len(stats) == 0 {
		return nil, nil
	}

	return stats[0], nil
}
