package config

import "sync"

// RenderSettings holds values the viewer may change while running
type RenderSettings struct {
	mu        sync.RWMutex
	fpsLimit  int     // 0 means unlimited
	flySpeed  float32 // world units per second
	wireframe bool
}

var globalRenderSettings = &RenderSettings{
	fpsLimit: 60,
	flySpeed: 400,
}

// GetFPSLimit returns the current frame cap
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap; negative values disable it
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fpsLimit = max(limit, 0)
}

// GetFlySpeed returns the camera speed in world units per second
func GetFlySpeed() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.flySpeed
}

// SetFlySpeed sets the camera speed, clamped to a usable range
func SetFlySpeed(speed float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if speed < 10 {
		speed = 10
	}
	if speed > 20000 {
		speed = 20000
	}

	globalRenderSettings.flySpeed = speed
}

// GetWireframe reports whether terrain is drawn as lines
func GetWireframe() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.wireframe
}

// ToggleWireframe flips the wireframe flag and returns the new value
func ToggleWireframe() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.wireframe = !globalRenderSettings.wireframe
	return globalRenderSettings.wireframe
}
