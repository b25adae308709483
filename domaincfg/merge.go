package domaincfg

// deepMerge overlays override onto base, returning a new map.
// Nested maps are merged key by key; arrays and scalars are replaced
// wholesale. Neither input is mutated.
func deepMerge(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range override {
		baseMap, baseOk := merged[key].(map[string]any)
		overrideMap, overrideOk := value.(map[string]any)
		if baseOk && overrideOk {
			merged[key] = deepMerge(baseMap, overrideMap)
			continue
		}
		merged[key] = value
	}
	return merged
}
