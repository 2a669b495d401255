package model

// DefaultServerURL is the API base URL for github.com.
const DefaultServerURL = "https://api.github.com"

// ServerConfig identifies one GitHub-compatible API server. Multiple servers
// (github.com plus Enterprise instances) may coexist; each monitored pull
// request belongs to exactly one of them. Immutable after configuration load.
type ServerConfig struct {
	Name  string // Unique identifier used in PullRequestRef keys and logs.
	URL   string // API base URL, e.g. "https://api.github.com" or "https://github.example.com/api/v3".
	Token string // Personal access token for this server.
}

// IsEnterprise reports whether the server points at a non-github.com API.
func (s ServerConfig) IsEnterprise() bool {
	return s.URL != "" && s.URL != DefaultServerURL
}

// HasToken reports whether an authentication token is configured.
func (s ServerConfig) HasToken() bool {
	return s.Token != ""
}
