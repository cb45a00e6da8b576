// Package audit drives the queue access audit: it enumerates queues, walks
// candidate subjects per queue, aggregates which permission types are granted
// through which mechanisms, and tracks queues the auditing principal is not
// allowed to inspect.
package audit
