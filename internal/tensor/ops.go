package tensor

// Add adds src to dst element-wise.
func Add(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// Axpy computes dst += alpha * x.
func Axpy(dst []float32, alpha float32, x []float32) {
	for i := range dst {
		dst[i] += alpha * x[i]
	}
}

// Scale multiplies every element of x by alpha.
func Scale(x []float32, alpha float32) {
	for i := range x {
		x[i] *= alpha
	}
}

// Dot computes the dot product of a and b.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// MatVec computes dst = w * x.
func MatVec(dst []float32, w *Mat, x []float32) {
	if len(dst) < w.R || len(x) < w.C {
		panic("matvec shape mismatch")
	}
	for i := range w.R {
		dst[i] = Dot(w.Row(i), x[:w.C])
	}
}

// MatTVec computes dst = wᵀ * x.
func MatTVec(dst []float32, w *Mat, x []float32) {
	if len(dst) < w.C || len(x) < w.R {
		panic("matvec shape mismatch")
	}
	clear(dst[:w.C])
	for i := range w.R {
		if x[i] == 0 {
			continue
		}
		Axpy(dst[:w.C], x[i], w.Row(i))
	}
}

// AddOuter computes w += alpha * a bᵀ.
func AddOuter(w *Mat, alpha float32, a, b []float32) {
	if len(a) < w.R || len(b) < w.C {
		panic("outer product shape mismatch")
	}
	for i := range w.R {
		if a[i] == 0 {
			continue
		}
		Axpy(w.Row(i), alpha*a[i], b[:w.C])
	}
}
