// Package tracker implements the HTTP client for the tracker service API,
// with request pacing, bounded retry with exponential backoff, a typed error
// taxonomy, and paginated listing helpers for queues, users, and groups.
package tracker
