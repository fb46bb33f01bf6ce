package camera_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/dynamo"
)

const eps = 1e-6

var _ = Describe("Camera", func() {
	var cam *camera.Camera

	BeforeEach(func() {
		cam = camera.New(800, 600)
	})

	It("starts at the origin with unit zoom", func() {
		x, y := cam.Focus()
		Expect(x).To(BeZero())
		Expect(y).To(BeZero())
		Expect(cam.Zoom()).To(Equal(1.0))

		sx, sy := cam.WorldToScreen(0, 0)
		Expect(sx).To(Equal(400.0))
		Expect(sy).To(Equal(300.0))
	})

	Describe("round trip", func() {
		It("inverts WorldToScreen over random camera states", func() {
			rng := rand.New(rand.NewSource(1))
			for i := 0; i < 500; i++ {
				cam.Reset()
				cam.Pan(rng.Float64()*2000-1000, rng.Float64()*2000-1000)
				cam.SetZoom(0.1 + rng.Float64()*9.9)

				wx, wy := rng.Float64()*4000-2000, rng.Float64()*4000-2000
				sx, sy := cam.WorldToScreen(wx, wy)
				gx, gy := cam.ScreenToWorld(sx, sy)
				Expect(gx).To(BeNumerically("~", wx, eps))
				Expect(gy).To(BeNumerically("~", wy, eps))
			}
		})
	})

	Describe("ZoomAt", func() {
		It("zooms about the screen center without moving the focus", func() {
			cam.ZoomAt(400, 300, 2)

			x, y := cam.Focus()
			Expect(x).To(BeNumerically("~", 0, eps))
			Expect(y).To(BeNumerically("~", 0, eps))
			Expect(cam.Zoom()).To(Equal(2.0))
		})

		It("keeps the world point under the cursor fixed", func() {
			rng := rand.New(rand.NewSource(2))
			for i := 0; i < 500; i++ {
				cam.Reset()
				cam.Pan(rng.Float64()*600-300, rng.Float64()*600-300)
				cam.SetZoom(0.2 + rng.Float64()*4)

				sx, sy := rng.Float64()*800, rng.Float64()*600
				wx, wy := cam.ScreenToWorld(sx, sy)
				cam.ZoomAt(sx, sy, 0.5+rng.Float64()*1.5)

				ax, ay := cam.ScreenToWorld(sx, sy)
				Expect(ax).To(BeNumerically("~", wx, eps))
				Expect(ay).To(BeNumerically("~", wy, eps))
			}
		})

		It("keeps the anchor when the zoom saturates", func() {
			cam.SetZoom(9)
			wx, wy := cam.ScreenToWorld(100, 50)
			cam.ZoomAt(100, 50, 4)

			Expect(cam.Zoom()).To(Equal(camera.DefaultMaxZoom))
			ax, ay := cam.ScreenToWorld(100, 50)
			Expect(ax).To(BeNumerically("~", wx, eps))
			Expect(ay).To(BeNumerically("~", wy, eps))
		})

		It("ignores non-positive factors", func() {
			cam.ZoomAt(10, 10, 0)
			cam.ZoomAt(10, 10, -2)
			Expect(cam.Zoom()).To(Equal(1.0))
		})
	})

	Describe("Pan", func() {
		It("moves the focus against the drag scaled by zoom", func() {
			cam.SetZoom(2)
			cam.Pan(10, -5)

			x, y := cam.Focus()
			Expect(x).To(BeNumerically("~", -5, eps))
			Expect(y).To(BeNumerically("~", 2.5, eps))
		})
	})

	Describe("zoom constraints", func() {
		It("clamps SetZoom to the defaults", func() {
			cam.SetZoom(100)
			Expect(cam.Zoom()).To(Equal(camera.DefaultMaxZoom))
			cam.SetZoom(0.001)
			Expect(cam.Zoom()).To(Equal(camera.DefaultMinZoom))
		})

		It("re-clamps the current zoom when narrowed", func() {
			cam.SetZoom(8)
			Expect(cam.SetZoomConstraints(0.5, 4)).To(Succeed())
			Expect(cam.Zoom()).To(Equal(4.0))

			lo, hi := cam.ZoomConstraints()
			Expect(lo).To(Equal(0.5))
			Expect(hi).To(Equal(4.0))
		})

		DescribeTable("rejects invalid ranges",
			func(lo, hi float64) {
				err := cam.SetZoomConstraints(lo, hi)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
				a, b := cam.ZoomConstraints()
				Expect(a).To(Equal(camera.DefaultMinZoom))
				Expect(b).To(Equal(camera.DefaultMaxZoom))
			},
			Entry("zero min", 0.0, 1.0),
			Entry("negative min", -1.0, 1.0),
			Entry("max below min", 2.0, 1.0),
		)
	})

	Describe("Reset", func() {
		It("restores focus and zoom but keeps the screen size", func() {
			cam.Pan(100, 100)
			cam.SetZoom(3)
			cam.SetScreenSize(1024, 768)
			cam.Reset()

			x, y := cam.Focus()
			Expect(x).To(BeZero())
			Expect(y).To(BeZero())
			Expect(cam.Zoom()).To(Equal(1.0))
			w, h := cam.ScreenSize()
			Expect(w).To(Equal(1024.0))
			Expect(h).To(Equal(768.0))
		})
	})

	Describe("viewport", func() {
		It("spans the screen in world units", func() {
			cam.SetZoom(2)
			b := cam.ViewportBounds()
			Expect(b.MinX).To(BeNumerically("~", -200, eps))
			Expect(b.MaxX).To(BeNumerically("~", 200, eps))
			Expect(b.MinY).To(BeNumerically("~", -150, eps))
			Expect(b.MaxY).To(BeNumerically("~", 150, eps))
			Expect(b.Width()).To(BeNumerically("~", 400, eps))
			Expect(b.Height()).To(BeNumerically("~", 300, eps))
		})

		It("tests visibility with a world-space margin", func() {
			Expect(cam.IsPointVisible(0, 0, 0)).To(BeTrue())
			Expect(cam.IsPointVisible(399, 299, 0)).To(BeTrue())
			Expect(cam.IsPointVisible(410, 0, 0)).To(BeFalse())
			Expect(cam.IsPointVisible(410, 0, 20)).To(BeTrue())
			Expect(cam.IsPointVisible(0, -320, 10)).To(BeFalse())
		})
	})

	It("exports shader uniforms", func() {
		cam.Pan(-20, 40)
		cam.SetZoom(0.5)
		focus, zoom := cam.Uniforms()
		Expect(focus).To(Equal(mgl32.Vec2{20, -40}))
		Expect(zoom).To(Equal(float32(0.5)))

		s := cam.State()
		Expect(s.FocusX).To(Equal(20.0))
		Expect(s.Zoom).To(Equal(0.5))
		Expect(s.Width).To(Equal(800.0))
	})
})
