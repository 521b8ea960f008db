// Package conf holds the bootstrap configuration schema. Values are
// scanned from the YAML config file via the kratos config loader.
package conf

// Bootstrap is the root configuration document.
type Bootstrap struct {
	Data  *Data  `json:"data"`
	Quota *Quota `json:"quota"`
}

// Data configures the storage backends.
type Data struct {
	Redis *Redis      `json:"redis"`
	Cache *CacheStore `json:"cache"`
}

// Redis configures the cache connection.
type Redis struct {
	Network      string `json:"network"`
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// CacheStore configures entry lifetimes.
type CacheStore struct {
	// AnalysisTTLSeconds is the fixed lifetime of cached analyses.
	AnalysisTTLSeconds int `json:"analysis_ttl_seconds"`
	// SessionTTLSeconds is the sliding lifetime of sessions; each read
	// pushes the expiry forward.
	SessionTTLSeconds int `json:"session_ttl_seconds"`
}

// Quota configures per-user limits.
type Quota struct {
	// DailyScans caps scoring requests per user per UTC day. Zero or
	// negative disables enforcement.
	DailyScans int64 `json:"daily_scans"`
}
