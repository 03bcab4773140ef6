package matchconf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/operator"
)

var nameCharset = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !nameCharset.MatchString(name) {
		return fmt.Errorf("name %q must match [A-Za-z0-9_]+", name)
	}
	return nil
}

// validateUniqueNames enforces case-insensitive uniqueness among sibling
// names within one container.
func validateUniqueNames(names []string) error {
	seen := make(map[string]string, len(names))
	for _, n := range names {
		lower := strings.ToLower(n)
		if prior, ok := seen[lower]; ok {
			return fmt.Errorf("duplicate name %q conflicts with %q (case-insensitive)", n, prior)
		}
		seen[lower] = n
	}
	return nil
}

// validateFilterOperatorRoots enforces that a filter's operator tree
// reaches only the "event" root: "_variables" and custom roots are
// rejected.
func validateFilterOperatorRoots(op operator.Operator) error {
	for _, a := range op.Accessors() {
		for _, root := range a.Roots() {
			if root != accessor.RootEvent {
				return fmt.Errorf("filter operator references %q, which is not permitted (filters see only the event)", root+".")
			}
		}
	}
	return nil
}
