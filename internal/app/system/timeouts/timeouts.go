// Package timeouts centralizes the deadlines handlers put on database
// work, so a slow Mongo round trip fails the request instead of holding a
// connection open indefinitely.
//
// Guidelines:
//   - Ping: health checks
//   - Short: single-document reads and targeted writes
//   - Medium: list queries, aggregate pipelines, document replaces
//   - Long: multi-step writes and the purge sweep
package timeouts

import "time"

const (
	Ping   = 2 * time.Second
	Short  = 5 * time.Second
	Medium = 10 * time.Second
	Long   = 30 * time.Second
)
