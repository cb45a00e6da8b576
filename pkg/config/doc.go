// Package config loads and persists the trackeraudit configuration file:
// named organization contexts, run settings, and mail delivery options.
// OAuth tokens are kept out of the file and stored via the token store.
package config
