// Package keys holds the configuration key names read through viper.
package keys

// Terminal / environment keys
const (
	Port          string = "port"
	DebugLevel    string = "debug"
	DataDir       string = "data-dir"
	MediaDir      string = "media-dir"
	LogFile       string = "log-file"
	ExternalURL   string = "external-url"
	CookieFile    string = "cookie-file"
	CookieBrowser string = "cookie-browser-domain"
)

// Worker pool
const (
	Concurrency        string = "concurrency"
	OfficialFilter     string = "official-filter"
	ToolTimeout        string = "tool-timeout"
	SettingsCacheTTL   string = "settings-cache-ttl"
	MediaRootCacheTTL  string = "media-root-cache-ttl"
	StreamTokenTTL     string = "stream-token-cache-ttl"
	ConcurrencyRetries string = "concurrency-load-retries"
	ArtworkInterval    string = "artwork-request-interval"
)
