// Package zeroize provides scoped erasure of secret byte buffers.
//
// Toxic-waste scalars (τ, α, β, γ, δ and their ceremony-round analogues)
// must be overwritten before the function holding them returns. Rather
// than relying on every call site to remember this, callers acquire a
// guard and defer its Release, which runs even on an error return path.
package zeroize

// Zeroizer is implemented by any value that owns secret bytes it can
// overwrite in place.
type Zeroizer interface {
	Zeroize()
}

// Bytes overwrites b with zeros. It is not optimised away by the
// compiler for the slice lengths this package is used with (a handful
// of field elements), so no assembly barrier is needed.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Guard scrubs every registered Zeroizer when released. Acquire one
// guard per toxic-scalar scope:
//
//	g := zeroize.NewGuard()
//	defer g.Release()
//	tau, alpha, beta := sampleToxicWaste()
//	g.Track(&tau, &alpha, &beta)
type Guard struct {
	items []Zeroizer
}

// NewGuard returns an empty scrubbing guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Track registers zeroizers to scrub when the guard is released.
func (g *Guard) Track(z ...Zeroizer) {
	g.items = append(g.items, z...)
}

// Release scrubs every tracked zeroizer. Safe to call multiple times.
func (g *Guard) Release() {
	for _, z := range g.items {
		z.Zeroize()
	}
	g.items = nil
}
