// Package viewer shows the playing avatar in a resizable ebiten window.
package viewer

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/camera"
	"vrm-pose-player/internal/playback"
	"vrm-pose-player/internal/raster"
	"vrm-pose-player/internal/skeleton"
	"vrm-pose-player/internal/texture"
)

// Background is the window clear color.
var Background = [3]uint8{0x20, 0x22, 0x28}

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
	TPS    int // updates per second, default 60
	Debug  bool
	Logger zerolog.Logger
}

// Game is the ebiten game: Update advances playback, Draw paints the posed
// avatar, Layout follows the window size.
type Game struct {
	avatar   *avatar.Avatar
	session  *playback.Session
	tex      texture.Resolver
	renderer *raster.Renderer
	cam      camera.Camera
	opts     Options
	log      zerolog.Logger

	width, height int
	pix           []byte
	img           *ebiten.Image
}

// New builds a game over a loaded avatar and frames the camera on its rest
// pose.
func New(a *avatar.Avatar, session *playback.Session, tex texture.Resolver, opts Options) *Game {
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}
	g := &Game{
		avatar:   a,
		session:  session,
		tex:      tex,
		renderer: raster.NewRenderer(),
		cam:      camera.New(opts.Width, opts.Height),
		opts:     opts,
		log:      opts.Logger,
		width:    opts.Width,
		height:   opts.Height,
	}
	if lo, hi, ok := skeleton.Bounds(skeleton.Pose(a)); ok {
		g.cam.Frame(lo, hi)
		g.log.Debug().Floats64("min", lo[:]).Floats64("max", hi[:]).Msg("Camera framed")
	}
	return g
}

// Run opens the window and blocks until it closes.
func Run(g *Game) error {
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.opts.TPS)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	g.session.Tick(1 / float64(g.opts.TPS))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	meshes := skeleton.Pose(g.avatar)
	fb := g.renderer.Draw(meshes, g.avatar.Materials, g.tex, g.cam, g.width, g.height)

	if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Width, fb.Height)
	}
	g.pix = compose(g.pix, fb, Background)
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)

	if g.opts.Debug {
		c := g.session.Cursor()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("file %d frame %d  %.0f fps", c.File, c.Frame, ebiten.ActualFPS()))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.resize(outsideWidth, outsideHeight)
	return g.width, g.height
}

// resize updates the camera aspect; the frame buffer follows on the next Draw.
func (g *Game) resize(w, h int) {
	if w <= 0 || h <= 0 || (w == g.width && h == g.height) {
		return
	}
	g.width, g.height = w, h
	g.cam.SetAspect(w, h)
	g.log.Debug().Int("width", w).Int("height", h).Msg("Viewport resized")
}

// Camera returns the current camera.
func (g *Game) Camera() camera.Camera {
	return g.cam
}

// compose flattens the straight-alpha frame buffer over an opaque background,
// reusing dst when it is large enough.
func compose(dst []byte, fb *raster.FrameBuffer, bg [3]uint8) []byte {
	n := len(fb.Color)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i += 4 {
		a := uint32(fb.Color[i+3])
		inv := 255 - a
		dst[i] = uint8((uint32(fb.Color[i])*a + uint32(bg[0])*inv + 127) / 255)
		dst[i+1] = uint8((uint32(fb.Color[i+1])*a + uint32(bg[1])*inv + 127) / 255)
		dst[i+2] = uint8((uint32(fb.Color[i+2])*a + uint32(bg[2])*inv + 127) / 255)
		dst[i+3] = 255
	}
	return dst
}
