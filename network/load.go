package network

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Load reads a network descriptor from a TOML file and validates it.
func Load(path string) (*Network, error) {
	var n Network
	if _, err := toml.DecodeFile(path, &n); err != nil {
		return nil, fmt.Errorf("decode network descriptor %s: %w", path, err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}
