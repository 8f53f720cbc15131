package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/config"
	"github.com/guyo13/osdlabel-sub000/internal/export"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/overlay"
	"github.com/guyo13/osdlabel-sub000/internal/raster"
	"github.com/guyo13/osdlabel-sub000/internal/render"
	"github.com/guyo13/osdlabel-sub000/internal/viewer"
)

type viewCmd struct {
	*root
	fs      *flag.FlagSet
	image   string
	context string
	load    string
	save    string
	width   int
	height  int

	store *annotation.Store
}

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	c := &viewCmd{root: r.subcommand("view"), fs: fs}
	fs.StringVar(&c.image, "image", "", "image file to annotate (png or jpeg)")
	fs.StringVar(&c.context, "context", "", "annotation context id from the profile")
	fs.StringVar(&c.load, "load", "", "export document to load on start")
	fs.StringVar(&c.save, "save", "annotations.json", "export document written when pressing 'e'")
	fs.IntVar(&c.width, "width", 1024, "initial window width")
	fs.IntVar(&c.height, "height", 768, "initial window height")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *viewCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *viewCmd) Run() error {
	if c.image == "" {
		return &UsageError{of: c}
	}
	f, err := os.Open(c.image)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.image, err)
	}
	decoded, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.image, err)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, decoded.Bounds().Dx(), decoded.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), decoded, decoded.Bounds().Min, draw.Src)

	c.store = annotation.NewStore()
	if c.load != "" {
		data, err := os.ReadFile(c.load)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.load, err)
		}
		if _, err := export.Apply(c.store, data); err != nil {
			return fmt.Errorf("%s: %w", c.load, err)
		}
	}

	driver.Main(func(s screen.Screen) { c.main(s, rgba) })
	return nil
}

// profileEvent delivers a reloaded profile into the window loop.
type profileEvent struct {
	profile *config.Profile
}

func (c *viewCmd) main(s screen.Screen, img *image.RGBA) {
	width, height := c.width, c.height
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "osdlabel"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	eng := raster.NewEngine()
	port := viewer.NewPort(width, height)
	opts := []overlay.Option{overlay.WithDefaultStyle(c.profile.CanvasStyle())}
	if mod, err := c.profile.Modifier(); err == nil {
		opts = append(opts, overlay.WithPassthrough(mod))
	}
	ov := overlay.New(c.store, eng, port, opts...)
	if c.context != "" {
		ctx := c.profile.ContextByID(c.context)
		if ctx == nil {
			log.Printf("unknown context %q, annotation tools disabled", c.context)
		}
		ov.SetContext(ctx)
	}

	port.OnAnimation(func() { w.Send(paint.Event{}) })
	c.store.On(func(annotation.EventType, annotation.Annotation) { w.Send(paint.Event{}) })
	selected := overlay.SelectionNone
	ov.OnSelect(func(id string) {
		selected = id
		w.Send(paint.Event{})
	})

	port.Open(filepath.Base(c.image), img.Bounds())
	ov.SetMode(overlay.ModeAnnotation)

	if path := config.NewLoader(version, configPathOverride).GetConfigPath(); path != "" {
		watcher, werr := config.NewWatcher(path, func(p *config.Profile) {
			w.Send(profileEvent{profile: p})
		})
		if werr != nil {
			log.Printf("profile watch: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case profileEvent:
			c.profile = e.profile
			if c.context != "" {
				ov.SetContext(e.profile.ContextByID(c.context))
			}
			w.Send(paint.Event{})
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			port.SetViewSize(width, height)
			w.Send(paint.Event{})
		case key.Event:
			if c.handleKey(e, ov) {
				w.Send(paint.Event{})
			}
		case mouse.Event:
			if !ov.HandlePointer(e) {
				port.HandlePointer(e)
			}
			w.Send(paint.Event{})
		case paint.Event:
			drawView(s, w, width, height, img, eng, port, ov, selected)
		}
	}
}

func (c *viewCmd) handleKey(e key.Event, ov *overlay.Overlay) bool {
	if e.Direction == key.DirPress && e.Code == key.CodeTab {
		if ov.Mode() == overlay.ModeAnnotation {
			ov.SetMode(overlay.ModeNavigation)
		} else {
			ov.SetMode(overlay.ModeAnnotation)
		}
		return true
	}
	if e.Direction == key.DirPress && e.Rune == 'e' && e.Modifiers == 0 {
		if err := c.saveExport(); err != nil {
			log.Printf("export: %v", err)
		}
		return true
	}
	return ov.HandleKey(e)
}

func (c *viewCmd) saveExport() error {
	data, err := export.Serialize(c.store, time.Now().UTC())
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(c.save, data, 0o644); err != nil {
		return err
	}
	c.notifyExport(c.save)
	return nil
}

var (
	backdropCache *image.RGBA
	checkerLight  = color.RGBA{0xe6, 0xe6, 0xe6, 0xff}
	checkerDark   = color.RGBA{0xc8, 0xc8, 0xc8, 0xff}
)

func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawView(s screen.Screen, w screen.Window, width, height int, img *image.RGBA, eng *raster.Engine, port *viewer.Port, ov *overlay.Overlay, selected string) {
	b, err := s.NewBuffer(image.Point{width, height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA())
	m := port.Transform()
	render.DrawPageShadow(b.RGBA(), surfaceBounds(m, img.Bounds()), render.DefaultShadowOptions())
	xdraw.NearestNeighbor.Transform(b.RGBA(), f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}, img, img.Bounds(), draw.Over, nil)
	eng.Render(b.RGBA())
	drawStatus(b.RGBA(), ov, selected, height)

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// surfaceBounds maps the image bounds through the viewport transform and
// returns the axis-aligned box around the result.
func surfaceBounds(m geometry.Matrix, r image.Rectangle) image.Rectangle {
	corners := []geometry.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
	p0 := m.Apply(corners[0])
	minX, minY, maxX, maxY := p0.X, p0.Y, p0.X, p0.Y
	for _, c := range corners[1:] {
		p := m.Apply(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(minX), int(minY), int(maxX), int(maxY))
}

func drawStatus(dst *image.RGBA, ov *overlay.Overlay, selected string, height int) {
	parts := []string{ov.Mode().String()}
	if t := ov.ActiveTool(); t != nil {
		parts = append(parts, "tool: "+t.Name())
	}
	if selected != overlay.SelectionNone {
		parts = append(parts, "selected: "+selected)
	}
	if ctx := ov.Context(); ctx != nil {
		parts = append(parts, "context: "+ctx.ID)
		statuses := ov.ToolStatuses()
		types := make([]geometry.ShapeType, 0, len(statuses))
		for t := range statuses {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			st := statuses[t]
			if st.MaxCount != nil {
				parts = append(parts, fmt.Sprintf("%s %d/%d", t, st.CurrentCount, *st.MaxCount))
			}
		}
	}
	line := strings.Join(parts, "  |  ")
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	wpx := d.MeasureString(line).Ceil()
	rect := image.Rect(4, height-22, 12+wpx, height-4)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	d.Dot = fixed.P(rect.Min.X+4, rect.Max.Y-5)
	d.DrawString(line)
}
