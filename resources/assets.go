package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	iconFile     = "icon.svg"
	defaultsFile = "defaults.yaml"
)

//go:embed icon.svg defaults.yaml
var assetFS embed.FS

var cache sync.Map

// Icon returns the application icon.
func Icon() (fyne.Resource, error) {
	data, err := load(iconFile)
	if err != nil {
		return nil, err
	}
	return fyne.NewStaticResource(iconFile, data), nil
}

// MustIcon returns the application icon or panics on error.
func MustIcon() fyne.Resource {
	resource, err := Icon()
	if err != nil {
		panic(err)
	}
	return resource
}

// Defaults returns the built-in settings document.
func Defaults() ([]byte, error) {
	return load(defaultsFile)
}

func load(path string) ([]byte, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.([]byte), nil
	}

	data, err := assetFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	cache.Store(path, data)
	return data, nil
}
