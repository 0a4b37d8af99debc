package dispatch

import (
	"sort"
	"sync"
)

// Registry is the live command table. Commands register per module; tenants
// see the commands of every module not disabled for them. A module absent
// from a tenant's disabled set is enabled, so new tenants get everything by
// default.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string][]Command
	core     map[string]bool
	order    []string
	disabled map[int64]map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		modules:  make(map[string][]Command),
		core:     make(map[string]bool),
		disabled: make(map[int64]map[string]bool),
	}
}

// Register adds a module's commands to the table. Core modules cannot be
// toggled off and are excluded from FeatureModules.
func (r *Registry) Register(module string, core bool, cmds ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[module]; !exists {
		r.order = append(r.order, module)
	}
	r.modules[module] = append(r.modules[module], cmds...)
	if core {
		r.core[module] = true
	}
}

// FeatureModules lists the toggleable module names in registration order.
func (r *Registry) FeatureModules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		if !r.core[name] {
			names = append(names, name)
		}
	}
	return names
}

// SetModuleEnabled flips a feature module for one tenant. Core modules are
// ignored.
func (r *Registry) SetModuleEnabled(tenantID int64, module string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.core[module] {
		return
	}
	if enabled {
		if set, ok := r.disabled[tenantID]; ok {
			delete(set, module)
			if len(set) == 0 {
				delete(r.disabled, tenantID)
			}
		}
		return
	}
	if r.disabled[tenantID] == nil {
		r.disabled[tenantID] = make(map[string]bool)
	}
	r.disabled[tenantID][module] = true
}

// ModuleEnabled reports whether a module is active for the tenant.
func (r *Registry) ModuleEnabled(tenantID int64, module string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled[tenantID][module]
}

// Lookup finds a command by (group, name) among the modules enabled for the
// tenant.
func (r *Registry) Lookup(tenantID int64, group, name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range r.order {
		if r.disabled[tenantID][module] {
			continue
		}
		for _, cmd := range r.modules[module] {
			if cmd.Name == name && cmd.Group == group {
				return cmd, true
			}
		}
	}
	return Command{}, false
}

// ModuleCommands pairs a module name with its registered commands.
type ModuleCommands struct {
	Module   string
	Commands []Command
}

// CommandsByModule returns the commands enabled for the tenant grouped by
// module in registration order. Unlike Catalogue, the entries keep their
// permission and shape requirements so callers can filter per invoker.
func (r *Registry) CommandsByModule(tenantID int64) []ModuleCommands {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []ModuleCommands
	for _, module := range r.order {
		if r.disabled[tenantID][module] {
			continue
		}
		cmds := make([]Command, len(r.modules[module]))
		copy(cmds, r.modules[module])
		groups = append(groups, ModuleCommands{Module: module, Commands: cmds})
	}
	return groups
}

// Catalogue returns the tenant's externally-advertised command set, sorted by
// qualified name so republishing after a toggle round-trip is deterministic.
func (r *Registry) Catalogue(tenantID int64) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var catalogue []Descriptor
	for _, module := range r.order {
		if r.disabled[tenantID][module] {
			continue
		}
		for _, cmd := range r.modules[module] {
			catalogue = append(catalogue, Descriptor{
				Name:        cmd.Name,
				Group:       cmd.Group,
				Description: cmd.Description,
				Usage:       cmd.Usage,
			})
		}
	}
	sort.Slice(catalogue, func(i, j int) bool {
		if catalogue[i].Group != catalogue[j].Group {
			return catalogue[i].Group < catalogue[j].Group
		}
		return catalogue[i].Name < catalogue[j].Name
	})
	return catalogue
}
