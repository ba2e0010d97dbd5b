package instance

import "os"

// EnvInstanceID overrides the process identifier used in logs.
const EnvInstanceID = "TERRITORIO_INSTANCE_ID"

// ID names this process: TERRITORIO_INSTANCE_ID, then the hostname, then "local".
func ID() string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
