package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying camera with yaw/pitch look and its projection.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, farPlane float32) *Camera {
	return &Camera{
		Yaw:         -90,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   1.0,
		FarPlane:    farPlane,
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	p := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

// Right returns the unit vector to the right of the view direction in XZ.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Look turns the camera by the given degrees; pitch stays within +-89.
func (c *Camera) Look(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
