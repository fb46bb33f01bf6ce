package input_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plife/internal/camera"
	"github.com/san-kum/plife/internal/input"
)

// fakeSource records subscriptions and forwards events while subscribed.
type fakeSource struct {
	handler  input.Handler
	detaches int
}

func (s *fakeSource) Subscribe(h input.Handler) func() {
	s.handler = h
	return func() {
		s.handler = nil
		s.detaches++
	}
}

func (s *fakeSource) down(x, y float64) {
	if s.handler != nil {
		s.handler.PointerDown(x, y)
	}
}

func (s *fakeSource) move(x, y float64) {
	if s.handler != nil {
		s.handler.PointerMove(x, y)
	}
}

func (s *fakeSource) up() {
	if s.handler != nil {
		s.handler.PointerUp()
	}
}

func (s *fakeSource) wheel(x, y, dy float64) {
	if s.handler != nil {
		s.handler.Wheel(x, y, dy)
	}
}

const eps = 1e-9

var _ = Describe("Mapper", func() {
	var (
		cam    *camera.Camera
		mapper *input.Mapper
		src    *fakeSource
	)

	BeforeEach(func() {
		cam = camera.New(800, 600)
		mapper = input.NewMapper(cam)
		src = &fakeSource{}
		mapper.Attach(src)
	})

	AfterEach(func() {
		mapper.Dispose()
	})

	It("starts idle", func() {
		Expect(mapper.State()).To(Equal(input.Idle))
		Expect(mapper.Attached()).To(BeTrue())
	})

	DescribeTable("pans by the drag delta over zoom",
		func(zoom float64) {
			cam.SetZoom(zoom)

			src.down(100, 100)
			Expect(mapper.State()).To(Equal(input.Dragging))
			src.move(110, 95)
			src.up()

			Expect(mapper.State()).To(Equal(input.Idle))
			x, y := cam.Focus()
			Expect(x).To(BeNumerically("~", -10/zoom, eps))
			Expect(y).To(BeNumerically("~", 5/zoom, eps))
		},
		Entry("unit zoom", 1.0),
		Entry("zoomed in", 2.0),
		Entry("zoomed out", 0.5),
	)

	It("accumulates consecutive moves from the last position", func() {
		src.down(0, 0)
		src.move(5, 0)
		src.move(12, 3)
		src.up()

		x, y := cam.Focus()
		Expect(x).To(BeNumerically("~", -12, eps))
		Expect(y).To(BeNumerically("~", -3, eps))
	})

	It("ignores moves while idle but tracks the cursor", func() {
		src.move(300, 200)
		x, y := cam.Focus()
		Expect(x).To(BeZero())
		Expect(y).To(BeZero())

		cx, cy := mapper.Cursor()
		Expect(cx).To(Equal(300.0))
		Expect(cy).To(Equal(200.0))
	})

	It("does not pan on press alone", func() {
		src.down(50, 50)
		src.up()
		x, y := cam.Focus()
		Expect(x).To(BeZero())
		Expect(y).To(BeZero())
	})

	Describe("wheel", func() {
		It("zooms in on positive delta about the cursor", func() {
			wx, wy := cam.ScreenToWorld(600, 100)
			src.wheel(600, 100, 1)

			Expect(cam.Zoom()).To(BeNumerically("~", input.WheelZoomIn, eps))
			ax, ay := cam.ScreenToWorld(600, 100)
			Expect(ax).To(BeNumerically("~", wx, 1e-6))
			Expect(ay).To(BeNumerically("~", wy, 1e-6))
		})

		It("zooms out on negative delta", func() {
			src.wheel(400, 300, -3)
			Expect(cam.Zoom()).To(BeNumerically("~", input.WheelZoomOut, eps))
		})

		It("ignores a zero delta", func() {
			src.wheel(400, 300, 0)
			Expect(cam.Zoom()).To(Equal(1.0))
		})

		It("works mid-drag without changing state", func() {
			src.down(10, 10)
			src.wheel(10, 10, 1)
			Expect(mapper.State()).To(Equal(input.Dragging))
		})
	})

	Describe("Dispose", func() {
		It("detaches once and is idempotent", func() {
			mapper.Dispose()
			mapper.Dispose()

			Expect(src.detaches).To(Equal(1))
			Expect(mapper.Attached()).To(BeFalse())
		})

		It("stops camera mutation afterwards", func() {
			src.down(0, 0)
			mapper.Dispose()
			Expect(mapper.State()).To(Equal(input.Idle))

			src.move(50, 50)
			src.wheel(0, 0, 1)
			x, y := cam.Focus()
			Expect(x).To(BeZero())
			Expect(y).To(BeZero())
			Expect(cam.Zoom()).To(Equal(1.0))
		})

		It("detaches the previous source on re-attach", func() {
			other := &fakeSource{}
			mapper.Attach(other)

			Expect(src.detaches).To(Equal(1))
			Expect(src.handler).To(BeNil())
			Expect(other.handler).NotTo(BeNil())
		})
	})

	It("reports state names", func() {
		Expect(input.Idle.String()).To(Equal("idle"))
		Expect(input.Dragging.String()).To(Equal("dragging"))
	})
})
