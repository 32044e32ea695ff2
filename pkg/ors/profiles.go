package ors

import "github.com/rotisserie/eris"

// Travel-mode names accepted on the configuration surface.
const (
	ModeDriving = "driving"
	ModeWalking = "walking"
	ModeCycling = "cycling"
)

// profiles maps configuration travel modes to provider profile names.
var profiles = map[string]string{
	ModeDriving: "driving-car",
	ModeWalking: "foot-walking",
	ModeCycling: "cycling-regular",
}

// Profile resolves a configuration travel mode to the provider profile name.
// Provider-native profile names are passed through unchanged.
func Profile(mode string) (string, error) {
	if p, ok := profiles[mode]; ok {
		return p, nil
	}
	for _, p := range profiles {
		if p == mode {
			return p, nil
		}
	}
	return "", eris.Errorf("ors: unknown travel mode %q", mode)
}
