package main

import (
	"log"
	"log/slog"
	"time"

	"infworld/internal/config"
	"infworld/internal/graphics"
	"infworld/internal/profiling"
	"infworld/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// minClearance keeps the camera above the level 0 surface.
const minClearance = 5

type viewerLoop struct {
	window   *glfw.Window
	terrain  *terrain.Manager
	renderer *graphics.TerrainRenderer
	cam      *graphics.Camera
	logger   *slog.Logger
	stop     *shutdown

	fpsLimiter *FPSLimiter
	lastTime   time.Time
	lastReport time.Time
	frames     int
}

func newViewerLoop(window *glfw.Window, m *terrain.Manager, r *graphics.TerrainRenderer, cam *graphics.Camera, logger *slog.Logger, stop *shutdown) *viewerLoop {
	return &viewerLoop{
		window:     window,
		terrain:    m,
		renderer:   r,
		cam:        cam,
		logger:     logger,
		stop:       stop,
		fpsLimiter: NewFPSLimiter(),
		lastTime:   time.Now(),
		lastReport: time.Now(),
	}
}

func (l *viewerLoop) Run() {
	gl.Enable(gl.DEPTH_TEST)
	for !l.window.ShouldClose() && !l.stop.Requested() {
		l.tick()
	}
}

func (l *viewerLoop) tick() {
	profiling.ResetFrame()
	startTick := time.Now()
	dt := startTick.Sub(l.lastTime).Seconds()
	l.lastTime = startTick

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	l.move(float32(dt))
	meshed := l.terrain.Update(l.terrain.Seed(), l.cam.Position.X(), l.cam.Position.Z())
	profiling.Count("viewer.meshed", int64(meshed))

	l.render()
	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()

	// Check if frame took too long (> 16ms)
	processingDuration := time.Since(startTick)
	if processingDuration > 16*time.Millisecond {
		log.Printf("Slow frame: %v. Top tasks: %s", processingDuration, profiling.TopN(5))
	}
	l.report(startTick)

	l.fpsLimiter.Wait()
}

func (l *viewerLoop) render() {
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if config.GetWireframe() {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	l.renderer.Render(l.cam)
}

// move flies the camera with WASD, space and shift.
func (l *viewerLoop) move(dt float32) {
	front := l.cam.Front()
	right := l.cam.Right()
	dir := mgl32.Vec3{}
	if l.window.GetKey(glfw.KeyW) == glfw.Press {
		dir = dir.Add(front)
	}
	if l.window.GetKey(glfw.KeyS) == glfw.Press {
		dir = dir.Sub(front)
	}
	if l.window.GetKey(glfw.KeyD) == glfw.Press {
		dir = dir.Add(right)
	}
	if l.window.GetKey(glfw.KeyA) == glfw.Press {
		dir = dir.Sub(right)
	}
	if l.window.GetKey(glfw.KeySpace) == glfw.Press {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if l.window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	if dir.Len() > 0 {
		l.cam.Position = l.cam.Position.Add(dir.Normalize().Mul(config.GetFlySpeed() * dt))
	}

	ground := l.terrain.HeightAt(l.cam.Position.X(), l.cam.Position.Z())
	if floor := max(ground, 0) + minClearance; l.cam.Position.Y() < floor {
		l.cam.Position[1] = floor
	}
}

// report logs frame rate and streaming state once per second.
func (l *viewerLoop) report(now time.Time) {
	l.frames++
	elapsed := now.Sub(l.lastReport)
	if elapsed < time.Second {
		return
	}
	pending := 0
	for i := 0; i < l.terrain.Levels(); i++ {
		pending += l.terrain.Level(i).Pending()
	}
	l.logger.Debug("frame stats",
		"fps", int(float64(l.frames)/elapsed.Seconds()+0.5),
		"x", l.cam.Position.X(), "y", l.cam.Position.Y(), "z", l.cam.Position.Z(),
		"pending", pending,
		"drawn", l.renderer.Drawn(),
		"meshed_total", profiling.TotalCount("terrain.meshed"),
	)
	l.frames = 0
	l.lastReport = now
}
