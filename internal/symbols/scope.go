package symbols

import (
	"quartz/internal/source"
)

// ScopeStack holds temporary generic-parameter bindings. Frames nest with
// instantiation depth; inner frames shadow outer ones.
//
// Every Push must be paired with a Release on all exit paths; Guard makes the
// pairing defer-friendly and safe against early returns.
type ScopeStack struct {
	frames []frame
}

type frame struct {
	bindings []Binding
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

// Guard restores the stack to its pre-Push depth when released. Releasing
// twice is a no-op.
type Guard struct {
	st       *ScopeStack
	depth    int
	released bool
}

// Push opens a new frame with the provided bindings and returns its guard.
func (st *ScopeStack) Push(bindings ...Binding) *Guard {
	depth := len(st.frames)
	st.frames = append(st.frames, frame{bindings: bindings})
	return &Guard{st: st, depth: depth}
}

// Release pops every frame opened since the guard was taken, including frames
// leaked by panicking or early-returning callees.
func (g *Guard) Release() {
	if g == nil || g.released || g.st == nil {
		return
	}
	g.released = true
	if g.depth < len(g.st.frames) {
		g.st.frames = g.st.frames[:g.depth]
	}
}

// Lookup finds the innermost binding for name.
func (st *ScopeStack) Lookup(name source.StringID) (*Binding, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		fr := &st.frames[i]
		for j := len(fr.bindings) - 1; j >= 0; j-- {
			if fr.bindings[j].Name == name {
				return &fr.bindings[j], true
			}
		}
	}
	return nil, false
}

// Visible reports whether name is a currently bound generic parameter.
func (st *ScopeStack) Visible(name source.StringID) bool {
	_, ok := st.Lookup(name)
	return ok
}

// Depth returns the number of open frames.
func (st *ScopeStack) Depth() int {
	return len(st.frames)
}
