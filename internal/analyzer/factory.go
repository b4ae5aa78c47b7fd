package analyzer

import (
	"fmt"

	"reportingest/internal/config"
	"reportingest/internal/port"
)

// ProviderFactory creates an Analyzer from the application config.
type ProviderFactory func(cfg *config.Config) (port.Analyzer, error)

// registry of analyzer provider factories, populated via RegisterProvider during bootstrap.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an analyzer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewAnalyzer creates the Analyzer selected by cfg.Analyzer.Provider.
func NewAnalyzer(cfg *config.Config) (port.Analyzer, error) {
	factory, ok := providers[cfg.Analyzer.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Analyzer.Provider)
	}
	return factory(cfg)
}
