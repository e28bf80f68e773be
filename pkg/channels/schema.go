// pkg/channels/schema.go
package channels

// ChannelRegistry describes the external sales channels the routing engine
// can target: display metadata for the admin UI, the outbound export queue
// per channel, and the intake schema used to validate routing requests.
type ChannelRegistry struct {
	Version      string                 `json:"version"`
	LastUpdated  string                 `json:"lastUpdated"`
	Channels     []ChannelDefinition    `json:"channels"`
	IntakeSchema map[string]interface{} `json:"intakeSchema"`
}

// ChannelDefinition is one external sales destination.
type ChannelDefinition struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Kind        string   `json:"kind"` // live-auction, search-marketplace, retail-marketplace
	ExportQueue string   `json:"exportQueue"`
	MaxShipOz   int      `json:"maxShipOz,omitempty"`
	Enabled     bool     `json:"enabled"`
	Tags        []string `json:"tags,omitempty"`
}
