// Package preview renders top-down shaded images of the terrain.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"infworld/internal/config"
	"infworld/internal/meshing"
	"infworld/internal/profiling"
	"infworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var sunDir = mgl32.Vec3{-0.57735, -0.57735, -0.57735}

// Options selects the area to render.
type Options struct {
	// Center is the middle chunk in the grid of Level.
	Center world.ChunkCoord
	// Radius is the number of chunks drawn on each side of Center.
	Radius  int
	Level   int
	Workers int
}

// Size returns the side length in pixels of an image rendered with prec.
func (o Options) Size(prec int) int {
	return (2*o.Radius + 1) * prec
}

// Render meshes the chunks around o.Center and shades one pixel per grid
// cell. Image x follows world x and image y follows world z.
func Render(ctx context.Context, seed *world.Seed, cfg config.Terrain, o Options) (*image.RGBA, error) {
	defer profiling.Track("preview.Render")()

	if o.Radius < 0 {
		return nil, fmt.Errorf("preview: negative radius %d", o.Radius)
	}
	if o.Level < 0 || o.Level >= cfg.LODLevels {
		return nil, fmt.Errorf("preview: level %d out of range [0,%d)", o.Level, cfg.LODLevels)
	}

	side := 2*o.Radius + 1
	prec := cfg.Prec
	img := image.NewRGBA(image.Rect(0, 0, side*prec, side*prec))

	pool := meshing.NewWorkerPool(ctx, o.Workers, side*side)
	defer pool.Shutdown()
	results := make(chan meshing.MeshResult, side*side)

	for k := 0; k < side*side; k++ {
		ok := pool.SubmitJob(meshing.MeshJob{
			Seed:       seed,
			Coord:      o.Center.Add(k%side-o.Radius, k/side-o.Radius),
			MaxHeight:  cfg.MaxHeight,
			ChunkScale: cfg.LevelScale(o.Level),
			Prec:       prec,
			Tag:        k,
			ResultChan: results,
		})
		if !ok {
			return nil, fmt.Errorf("preview: mesh queue full")
		}
	}

	for range side * side {
		select {
		case r := <-results:
			x0 := (r.Tag % side) * prec
			y0 := (r.Tag / side) * prec
			paintChunk(img, r.Payload, x0, y0)
			profiling.Count("preview.chunks", 1)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return img, nil
}

// paintChunk draws the first prec x prec vertices of p; the last row and
// column repeat the neighbour's first ones.
func paintChunk(img *image.RGBA, p *meshing.ChunkPayload, x0, y0 int) {
	for i := 0; i < p.Prec; i++ {
		for j := 0; j < p.Prec; j++ {
			img.SetRGBA(x0+i, y0+j, Shade(p.Height(i, j), p.Normal(i, j)))
		}
	}
}

// Colorize maps a normalized height to the terrain palette.
func Colorize(h float32) color.RGBA {
	switch {
	case h < 0:
		t := mgl32.Clamp(h*40+1, 0, 1)
		return lerpColor(color.RGBA{26, 51, 115, 255}, color.RGBA{194, 179, 128, 255}, t)
	case h < 0.02:
		return color.RGBA{194, 179, 128, 255}
	case h < 0.35:
		return lerpColor(color.RGBA{64, 128, 51, 255}, color.RGBA{51, 97, 38, 255}, h/0.35)
	case h < 0.6:
		return color.RGBA{115, 107, 102, 255}
	}
	return color.RGBA{242, 242, 247, 255}
}

// Shade lights the palette color of h with normal n.
func Shade(h float32, n mgl32.Vec3) color.RGBA {
	c := Colorize(h)
	light := max(n.Dot(sunDir.Mul(-1)), 0)*0.8 + 0.2
	return color.RGBA{
		R: uint8(float32(c.R) * light),
		G: uint8(float32(c.G) * light),
		B: uint8(float32(c.B) * light),
		A: 255,
	}
}

func lerpColor(a, b color.RGBA, t float32) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// Upscale enlarges img by an integer factor with Catmull-Rom filtering.
func Upscale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Label writes text in the top-left corner on a dark strip.
func Label(img draw.Image, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 8
	strip := image.Rect(0, 0, width, face.Height+6).Intersect(img.Bounds())
	draw.Draw(img, strip, image.NewUniform(color.RGBA{0, 0, 0, 160}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(4, face.Ascent+3),
	}
	d.DrawString(text)
}
