/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent = "fidecompare/0.3.0 (+https://github.com/mikeb26/fidecompare)"

	DefaultProxyURL         = "https://no-cors.fly.dev"
	DefaultProviderURL      = "https://ratings.fide.com"
	DefaultPinnedFederation = "AUS"
	DefaultPlayerID         = "3267849"
	DefaultPlayerName       = "Nguyen Anh Kiet"
	DefaultListenAddr       = ":8080"
	DefaultShareBaseURL     = "http://localhost:8080/"
)
