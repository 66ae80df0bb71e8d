package species

// Matrix is a square relation matrix indexed [from][to]. The asymmetry is
// intentional: species i may chase species j while j flees i.
type Matrix struct {
	n int
	v []float64
}

// NewMatrix creates an n-by-n matrix filled via fill (nil = zeros).
func NewMatrix(n int, fill func(i, j int) float64) Matrix {
	m := Matrix{n: n, v: make([]float64, n*n)}
	if fill != nil {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				m.v[i*n+j] = fill(i, j)
			}
		}
	}
	return m
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int { return m.n }

// At returns the entry for the ordered pair (from, to).
// Callers must validate indices at the registry boundary.
func (m *Matrix) At(from, to int) float64 { return m.v[from*m.n+to] }

// Set stores the entry for the ordered pair (from, to).
func (m *Matrix) Set(from, to int, val float64) { m.v[from*m.n+to] = val }

// Resize changes the dimension to n. The existing min(n, old)×min(n, old)
// submatrix is preserved; new rows and columns are filled via fill
// (nil = zeros). Shrinking truncates.
func (m *Matrix) Resize(n int, fill func(i, j int) float64) {
	if n == m.n {
		return
	}
	next := make([]float64, n*n)
	keep := m.n
	if n < keep {
		keep = n
	}
	for i := 0; i < keep; i++ {
		copy(next[i*n:i*n+keep], m.v[i*m.n:i*m.n+keep])
	}
	if fill != nil {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i < keep && j < keep {
					continue
				}
				next[i*n+j] = fill(i, j)
			}
		}
	}
	m.n = n
	m.v = next
}

// Fill overwrites every entry via fill.
func (m *Matrix) Fill(fill func(i, j int) float64) {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			m.v[i*m.n+j] = fill(i, j)
		}
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() Matrix {
	c := Matrix{n: m.n, v: make([]float64, len(m.v))}
	copy(c.v, m.v)
	return c
}

// Rows returns the matrix as a fresh [][]float64, for serialization.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for i := 0; i < m.n; i++ {
		rows[i] = make([]float64, m.n)
		copy(rows[i], m.v[i*m.n:(i+1)*m.n])
	}
	return rows
}

// SetRows loads entries from rows, padding missing entries via fill and
// truncating oversized input. The matrix keeps its current dimension.
func (m *Matrix) SetRows(rows [][]float64, fill func(i, j int) float64) {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i < len(rows) && j < len(rows[i]) {
				m.v[i*m.n+j] = rows[i][j]
			} else if fill != nil {
				m.v[i*m.n+j] = fill(i, j)
			} else {
				m.v[i*m.n+j] = 0
			}
		}
	}
}
