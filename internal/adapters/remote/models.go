package remote

// LoginResponse represents the response returned by the management API upon successful authentication.
type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token  string `json:"token"`   // Bearer token used for authenticated requests
		UserID string `json:"user_id"` // ID of the authenticated user
	} `json:"data"`
}

// LoginPayload represents the payload used to authenticate with the management API.
type LoginPayload struct {
	Username string `json:"username"` // Username for authentication
	Password string `json:"password"` // Password for authentication
}

// ServerStatus describes the supervised server as reported by the management API.
type ServerStatus struct {
	Name       string `json:"name"`        // Display name of the server
	Version    string `json:"version"`     // Server software version
	MaxPlayers int    `json:"max_players"` // Configured player slot count
}

// StatusResponse wraps a ServerStatus in the API's response envelope.
type StatusResponse struct {
	Status string       `json:"status"`
	Data   ServerStatus `json:"data"`
}

// Player is a single connected player.
type Player struct {
	Name     string `json:"name"`      // Player display name
	JoinedAt string `json:"joined_at"` // RFC 3339 join timestamp
}

// PlayersResponse wraps the connected player list.
type PlayersResponse struct {
	Status string   `json:"status"`
	Data   []Player `json:"data"`
}

// ServerMetrics holds runtime metrics of the supervised server.
type ServerMetrics struct {
	UptimeSeconds int64   `json:"uptime_seconds"` // Seconds since the server process came up
	MemoryMB      float64 `json:"memory_mb"`      // Resident memory in megabytes
	CPUPercent    float64 `json:"cpu_percent"`    // CPU usage percentage
}

// MetricsResponse wraps ServerMetrics in the API's response envelope.
type MetricsResponse struct {
	Status string        `json:"status"`
	Data   ServerMetrics `json:"data"`
}

// ShutdownPayload is the body of a shutdown request.
type ShutdownPayload struct {
	DelaySeconds int    `json:"delay_seconds"` // Grace period before the server actually stops
	Message      string `json:"message"`       // Reason broadcast to connected players
}
