package curriculum

import (
	"fmt"
	"strings"
)

// validateTopics checks the catalogue for missing or colliding keys.
// Returns a combined error describing all problems found, or nil if valid.
func validateTopics(ts []Topic) error {
	var errs []string

	seen := make(map[string]string, len(ts)*2)
	claim := func(key, owner string) {
		k := strings.ToLower(key)
		if prev, ok := seen[k]; ok && prev != owner {
			errs = append(errs, fmt.Sprintf("topic %q collides with %q on key %q", owner, prev, key))
			return
		}
		seen[k] = owner
	}

	for _, t := range ts {
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("topic %q has no ID", t.Name))
			continue
		}
		if t.Name == "" {
			errs = append(errs, fmt.Sprintf("topic %q has no name", t.ID))
		}
		if t.Icon == "" {
			errs = append(errs, fmt.Sprintf("topic %q has no icon", t.ID))
		}
		claim(t.ID, t.ID)
		claim(t.Name, t.ID)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
