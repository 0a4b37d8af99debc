// Package features manages the per-tenant enablement of optional command
// modules. Flags persist in a YAML artifact rewritten whole on every toggle;
// a flag flip, the module load/unload, and the catalogue republish form one
// critical section per (tenant, feature) pair.
package features

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AesthetixDev/koko/internal/dispatch"
	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/metrics"
)

// commandTable is the slice of the dispatch registry the manager drives.
type commandTable interface {
	FeatureModules() []string
	SetModuleEnabled(tenantID int64, module string, enabled bool)
	ModuleEnabled(tenantID int64, module string) bool
	Catalogue(tenantID int64) []dispatch.Descriptor
}

// publisher re-advertises a tenant's interactive-command catalogue.
type publisher interface {
	PublishCommands(ctx context.Context, tenantID int64, commands []dispatch.Descriptor) error
}

// flagFile is the on-disk artifact shape. A feature absent from a tenant's
// map (or a tenant absent entirely) is enabled.
type flagFile struct {
	Tenants map[int64]map[string]bool `yaml:"tenants"`
}

type pairKey struct {
	tenantID int64
	feature  string
}

// Manager owns the FeatureFlagSet artifact and keeps it in lockstep with the
// live command table.
type Manager struct {
	path      string
	registry  commandTable
	publisher publisher

	mu    sync.Mutex // guards flags and the file
	flags flagFile

	locksMu sync.Mutex
	locks   map[pairKey]*sync.Mutex
}

func NewManager(path string, registry commandTable, publisher publisher) *Manager {
	return &Manager{
		path:      path,
		registry:  registry,
		publisher: publisher,
		flags:     flagFile{Tenants: make(map[int64]map[string]bool)},
		locks:     make(map[pairKey]*sync.Mutex),
	}
}

// ApplyStartup loads the artifact and applies it to the command table before
// dispatch becomes reachable. A missing file means all defaults. A malformed
// file is reported but non-fatal: the core comes up with every module
// enabled.
func (m *Manager) ApplyStartup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read feature flag file: %w", err)
	}

	var parsed flagFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		slog.Error("feature flag file malformed, falling back to defaults", "path", m.path, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrFlagFileInvalid, err)
	}
	if parsed.Tenants == nil {
		parsed.Tenants = make(map[int64]map[string]bool)
	}
	m.flags = parsed

	known := make(map[string]bool)
	for _, feature := range m.registry.FeatureModules() {
		known[feature] = true
	}
	for tenantID, features := range m.flags.Tenants {
		for feature, enabled := range features {
			if !known[feature] {
				slog.Warn("ignoring unknown feature in flag file", "tenant_id", tenantID, "feature", feature)
				continue
			}
			m.registry.SetModuleEnabled(tenantID, feature, enabled)
		}
	}
	return nil
}

// Enabled reports the persisted flag value, defaulting to enabled.
func (m *Manager) Enabled(tenantID int64, feature string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if features, ok := m.flags.Tenants[tenantID]; ok {
		if enabled, ok := features[feature]; ok {
			return enabled
		}
	}
	return true
}

// SetEnabled flips a feature for a tenant. The three steps - persist the
// flag, load/unload the module, republish the catalogue - either all succeed
// or the prior state is restored and the error returned. Toggles on the same
// (tenant, feature) pair serialize; different pairs proceed independently.
func (m *Manager) SetEnabled(ctx context.Context, tenantID int64, feature string, enabled bool) error {
	if !m.knownFeature(feature) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownFeature, feature)
	}

	lock := m.pairLock(pairKey{tenantID: tenantID, feature: feature})
	lock.Lock()
	defer lock.Unlock()

	prev := m.Enabled(tenantID, feature)
	if prev == enabled {
		return nil
	}

	if err := m.persist(tenantID, feature, enabled); err != nil {
		return err
	}

	m.registry.SetModuleEnabled(tenantID, feature, enabled)

	if err := m.publisher.PublishCommands(ctx, tenantID, m.registry.Catalogue(tenantID)); err != nil {
		// Roll the flag and the table back so state and catalogue never
		// diverge.
		m.registry.SetModuleEnabled(tenantID, feature, prev)
		if revertErr := m.persist(tenantID, feature, prev); revertErr != nil {
			slog.Error("failed to revert flag after publish failure",
				"tenant_id", tenantID, "feature", feature, "error", revertErr)
		}
		return fmt.Errorf("failed to republish command catalogue: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	metrics.FeatureTogglesTotal.WithLabelValues(feature, state).Inc()
	slog.InfoContext(ctx, "feature toggled", "tenant_id", tenantID, "feature", feature, "enabled", enabled)
	return nil
}

// Features lists the toggleable feature names.
func (m *Manager) Features() []string {
	return m.registry.FeatureModules()
}

func (m *Manager) knownFeature(feature string) bool {
	for _, name := range m.registry.FeatureModules() {
		if name == feature {
			return true
		}
	}
	return false
}

func (m *Manager) pairLock(key pairKey) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	if m.locks[key] == nil {
		m.locks[key] = &sync.Mutex{}
	}
	return m.locks[key]
}

// persist updates the in-memory set and rewrites the artifact, verifying the
// write by reading it back. On any failure the in-memory value is restored.
func (m *Manager) persist(tenantID int64, feature string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevTenant, hadTenant := m.flags.Tenants[tenantID]
	prevValue, hadValue := false, false
	if hadTenant {
		prevValue, hadValue = prevTenant[feature]
	}

	if m.flags.Tenants[tenantID] == nil {
		m.flags.Tenants[tenantID] = make(map[string]bool)
	}
	m.flags.Tenants[tenantID][feature] = enabled

	if err := m.writeAndVerify(tenantID, feature, enabled); err != nil {
		if hadValue {
			m.flags.Tenants[tenantID][feature] = prevValue
		} else {
			delete(m.flags.Tenants[tenantID], feature)
			if !hadTenant {
				delete(m.flags.Tenants, tenantID)
			}
		}
		return err
	}
	return nil
}

// writeAndVerify replaces the artifact atomically (temp file + rename) and
// reads it back to confirm the flag landed.
func (m *Manager) writeAndVerify(tenantID int64, feature string, enabled bool) error {
	data, err := yaml.Marshal(&m.flags)
	if err != nil {
		return fmt.Errorf("failed to encode feature flags: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create flag directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".features-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp flag file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write flag file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close flag file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("failed to replace flag file: %w", err)
	}

	written, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to verify flag file: %w", err)
	}
	var verify flagFile
	if err := yaml.Unmarshal(written, &verify); err != nil {
		return fmt.Errorf("failed to verify flag file: %w", err)
	}
	if got, ok := verify.Tenants[tenantID][feature]; !ok || got != enabled {
		return fmt.Errorf("flag file verification failed for tenant %d feature %q", tenantID, feature)
	}
	return nil
}
