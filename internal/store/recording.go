package store

// Recording is a table of named scalar series sampled at shared times.
type Recording struct {
	Names []string
	Times []float64
	Rows  [][]float64
}

func NewRecording(names ...string) *Recording {
	return &Recording{Names: names}
}

// Append adds one row. Names missing from values record as zero.
func (r *Recording) Append(t float64, values map[string]float64) {
	row := make([]float64, len(r.Names))
	for i, name := range r.Names {
		row[i] = values[name]
	}
	r.Times = append(r.Times, t)
	r.Rows = append(r.Rows, row)
}

func (r *Recording) Len() int { return len(r.Times) }

// Series returns the column for name, or nil if it is not recorded.
func (r *Recording) Series(name string) []float64 {
	col := -1
	for i, n := range r.Names {
		if n == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[col]
	}
	return out
}

// Last returns the final row keyed by name.
func (r *Recording) Last() map[string]float64 {
	out := make(map[string]float64, len(r.Names))
	if len(r.Rows) == 0 {
		return out
	}
	last := r.Rows[len(r.Rows)-1]
	for i, name := range r.Names {
		out[name] = last[i]
	}
	return out
}
