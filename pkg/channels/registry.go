// pkg/channels/registry.go
package channels

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads the channel registry from disk.
func LoadRegistry(path string) (*ChannelRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ChannelRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse channel registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the definition for a channel ID, or nil.
func (r *ChannelRegistry) Find(id string) *ChannelDefinition {
	for i := range r.Channels {
		if r.Channels[i].ID == id {
			return &r.Channels[i]
		}
	}
	return nil
}

// EnabledIDs returns the IDs of all enabled channels.
func (r *ChannelRegistry) EnabledIDs() []string {
	ids := make([]string, 0, len(r.Channels))
	for _, ch := range r.Channels {
		if ch.Enabled {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}
