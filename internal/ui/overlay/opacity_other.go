//go:build !windows

package overlay

// applyNativeOpacity is a no-op where the driver offers no window alpha; the
// stage background carries Config.Opacity instead.
func (overlay *Window) applyNativeOpacity() {}
