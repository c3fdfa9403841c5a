// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Trust Policy - these keys define the set of hosts the resolver is allowed to talk to.
const (
	TrustDomains         = "trust.domains"
	TrustAllowSubdomains = "trust.allow_subdomains"
)

// Page and Mirror Fetching - these keys bound every network read performed by the engine.
const (
	FetchTimeoutSeconds = "fetch.timeout_seconds"
	FetchMaxPageBytes   = "fetch.max_page_bytes"
	FetchMaxMirrorBytes = "fetch.max_mirror_bytes"
	FetchSpoofTLS       = "fetch.spoof_tls"
)

// Pattern Matching - these keys bound the work done by extraction regexes on hostile input.
const (
	MatchTimeoutMs      = "match.timeout_ms"
	MatchMaxInputBytes  = "match.max_input_bytes"
	MatchMaxScriptBytes = "match.max_script_bytes"
)

// Mirror Racing - these keys control the concurrent probing of redundant CDN mirrors.
const (
	MirrorsMax                 = "mirrors.max"
	MirrorsProbeTimeoutSeconds = "mirrors.probe_timeout_seconds"
	MirrorsRaceTimeoutSeconds  = "mirrors.race_timeout_seconds"
)

// Result Caching - these keys govern the short-lived stream URL cache.
const (
	CacheTTLMinutes = "cache.ttl_minutes"
)

// History Tracking - these keys configure the persistence of resolution history.
const (
	HistorySaveOnResolve = "history.save_on_resolve"
)

// Suggestions - these keys define completion behavior for previously resolved URLs.
const (
	SearchShowURLSuggestions = "search.show_url_suggestions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
