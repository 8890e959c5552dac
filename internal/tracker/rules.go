package tracker

import "slices"

// Rules controls which apps are recorded and under what name. Rules are
// hot-reloadable: the daemon swaps them when the config file changes.
type Rules struct {
	// Ignore lists app ids that are never recorded.
	Ignore []string
	// Rename maps raw app ids to display names.
	Rename map[string]string
}

// normalize returns the recorded name for a raw app id and whether the app
// should be recorded at all.
func (r Rules) normalize(app string) (string, bool) {
	if slices.Contains(r.Ignore, app) {
		return "", false
	}
	if renamed, ok := r.Rename[app]; ok && renamed != "" {
		return renamed, true
	}
	return app, true
}
