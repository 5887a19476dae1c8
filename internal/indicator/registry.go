package indicator

import (
	"slices"
	"strings"
	"sync"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// IndicatorRegistry holds the configured indicators of one snapshot builder, keyed by type.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	// Require fails with ErrCodeIndicatorNotFound naming every type that is not registered.
	Require(names ...types.IndicatorType) error
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		mu:         sync.RWMutex{},
	}
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return indicator, nil
}

// Require checks that every named indicator is registered.
func (r *IndicatorRegistryV1) Require(names ...types.IndicatorType) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string

	for _, name := range names {
		if _, exists := r.indicators[name]; !exists {
			missing = append(missing, string(name))
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicators not registered: %s", strings.Join(missing, ", "))
}
