package systems

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "visual", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry, in tick order.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Input
	r.Register(SystemInfo{ID: "steering", Name: "Steering", Description: "Points steerable fish at the cursor", Category: "input"})

	// Schools
	r.Register(SystemInfo{ID: "grouping", Name: "Grouping", Description: "Pairs fish that meet into schools", Category: "groups"})
	r.Register(SystemInfo{ID: "merge", Name: "Merge", Description: "Relabels schools that touched", Category: "groups"})
	r.Register(SystemInfo{ID: "track", Name: "Track", Description: "Frames fish that joined the player", Category: "groups"})

	// Physics and movement
	r.Register(SystemInfo{ID: "forces", Name: "Forces", Description: "Cohesion, alignment, separation, wander, friction", Category: "physics"})
	r.Register(SystemInfo{ID: "integrate", Name: "Integrate", Description: "Applies forces and moves fish", Category: "physics"})

	// Presentation
	r.Register(SystemInfo{ID: "camera", Name: "Camera", Description: "Eases the view toward the school", Category: "view"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Collects window statistics", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
