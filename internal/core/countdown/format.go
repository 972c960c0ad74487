package countdown

import "fmt"

// Format renders remaining seconds as M:SS. Minutes are not wrapped into hours.
func Format(remaining int) string {
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%d:%02d", remaining/60, remaining%60)
}
