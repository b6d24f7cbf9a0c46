package ports

import "go.trai.ch/relay/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds relay.yaml starting at cwd and walking up, and decodes it.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the directory containing relay.yaml.
	DiscoverRoot(cwd string) (string, error)
}
