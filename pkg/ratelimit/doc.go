// Package ratelimit provides client-side request pacing for outbound calls
// to the tracker API, with a one-way ratchet that permanently tightens the
// pacing whenever the remote service signals throttling.
package ratelimit
