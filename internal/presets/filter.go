package presets

import "strings"

type FilterOptions struct {
	Kinds        []string
	Orientations []string
	FreeWords    string
}

func contains(hay []string, needle string) bool {
	for _, h := range hay {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// Filter keeps the presets matching every non-empty option. FreeWords are
// matched case-insensitively against the name, all words must match.
func Filter(presets []Preset, opt FilterOptions) []Preset {
	var out []Preset
	for _, p := range presets {
		if len(opt.Kinds) > 0 && !contains(opt.Kinds, p.Kind) {
			continue
		}
		if len(opt.Orientations) > 0 && !contains(opt.Orientations, p.Orientation()) {
			continue
		}
		if opt.FreeWords != "" {
			name := strings.ToLower(p.Name)
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				if !strings.Contains(name, strings.ToLower(k)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Find returns the first preset of the given kind whose name matches
// case-insensitively.
func Find(presets []Preset, kind, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Kind == kind && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
