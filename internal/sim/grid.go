package sim

import "math"

// grid buckets particles into cells at least one sensing radius wide, so any
// pair within range sits in the same or an adjacent cell.
type grid struct {
	cols, rows   int
	cellW, cellH float64
	halfW, halfH float64

	cellOf []int32 // particle -> cell
	start  []int32 // cell -> offset into items, len cols*rows+1
	items  []int32 // particle indices sorted by cell
}

// rebuild sizes the grid for the current world and re-buckets p. The cell
// count never exceeds the particle count, so a sensing radius that is tiny
// next to the world only makes cells coarser, never more numerous.
func (g *grid) rebuild(p *Particles, width, height, radius float64) {
	n := p.Len()
	limit := max(n, 1)

	cols := math.Floor(width / radius)
	rows := math.Floor(height / radius)
	cols = min(max(cols, 1), float64(limit))
	rows = min(max(rows, 1), math.Max(1, math.Floor(float64(limit)/cols)))
	g.cols, g.rows = int(cols), int(rows)
	g.cellW = width / float64(g.cols)
	g.cellH = height / float64(g.rows)
	g.halfW, g.halfH = width/2, height/2

	cells := g.cols * g.rows
	if cap(g.cellOf) < n {
		g.cellOf = make([]int32, n)
		g.items = make([]int32, n)
	}
	g.cellOf = g.cellOf[:n]
	g.items = g.items[:n]
	if cap(g.start) < cells+1 {
		g.start = make([]int32, cells+1)
	}
	g.start = g.start[:cells+1]
	clear(g.start)

	for i := 0; i < n; i++ {
		c := g.cell(p.Pos[i*2], p.Pos[i*2+1])
		g.cellOf[i] = int32(c)
		g.start[c+1]++
	}
	for c := 0; c < cells; c++ {
		g.start[c+1] += g.start[c]
	}

	// fill using a moving cursor per cell; start is restored afterwards
	for i := 0; i < n; i++ {
		c := g.cellOf[i]
		g.items[g.start[c]] = int32(i)
		g.start[c]++
	}
	for c := cells; c > 0; c-- {
		g.start[c] = g.start[c-1]
	}
	g.start[0] = 0
}

// cell clamps out-of-world coordinates to the border cells. Clamping keeps
// cells adjacent for in-range pairs, which matters after a world shrink.
func (g *grid) cell(x, y float64) int {
	cx := int(math.Floor((x + g.halfW) / g.cellW))
	cy := int(math.Floor((y + g.halfH) / g.cellH))
	cx = min(max(cx, 0), g.cols-1)
	cy = min(max(cy, 0), g.rows-1)
	return cy*g.cols + cx
}

// neighbors visits every particle in the 3x3 block around i's cell.
func (g *grid) neighbors(i int, visit func(j int)) {
	c := int(g.cellOf[i])
	cx, cy := c%g.cols, c/g.cols

	for y := max(cy-1, 0); y <= min(cy+1, g.rows-1); y++ {
		for x := max(cx-1, 0); x <= min(cx+1, g.cols-1); x++ {
			nc := y*g.cols + x
			for _, j := range g.items[g.start[nc]:g.start[nc+1]] {
				visit(int(j))
			}
		}
	}
}
