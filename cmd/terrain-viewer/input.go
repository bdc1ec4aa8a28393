package main

import (
	"infworld/internal/config"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const mouseSensitivity = 0.1

func setupInputHandlers(window *glfw.Window, l *viewerLoop) {
	var lastX, lastY float64
	firstMouse := true
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if firstMouse {
			lastX, lastY = xpos, ypos
			firstMouse = false
		}
		dx := (xpos - lastX) * mouseSensitivity
		dy := (lastY - ypos) * mouseSensitivity
		lastX, lastY = xpos, ypos
		l.cam.Look(float32(dx), float32(dy))
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF:
			l.logger.Info("wireframe", "on", config.ToggleWireframe())
		case glfw.KeyEqual:
			config.SetFlySpeed(config.GetFlySpeed() * 2)
			l.logger.Info("fly speed", "units_per_s", config.GetFlySpeed())
		case glfw.KeyMinus:
			config.SetFlySpeed(config.GetFlySpeed() / 2)
			l.logger.Info("fly speed", "units_per_s", config.GetFlySpeed())
		}
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		l.cam.SetViewport(fbWidth, fbHeight)
	})
}
