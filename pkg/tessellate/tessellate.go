// Package tessellate approximates exact boundary representations with
// welded triangle meshes. Every edge of the solid is sampled once and
// both adjacent faces triangulate against those samples, so the mesh of
// a closed solid is itself closed: no cracks along shared edges.
package tessellate

import (
	"fmt"
	"math"
	"runtime"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/kernel"
	"github.com/castorlab/castor/pkg/poly"
	"github.com/castorlab/castor/pkg/topo"
)

// Triangulate meshes the solid so that the chord deviation from the
// exact surfaces stays within maxDeviation; zero or negative selects the
// default. Faces are triangulated concurrently and merged in face order,
// so the output is deterministic for a given solid.
func Triangulate(s *topo.Solid, maxDeviation float64) (*kernel.Mesh, error) {
	if maxDeviation <= 0 {
		maxDeviation = base.DefaultTessellationTolerance
	}
	if s.IsEmpty() {
		return &kernel.Mesh{}, nil
	}

	samples := sampleEdges(s, maxDeviation)
	faceTris := make([][][3]v3.Vec, len(s.Faces))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for fi := range s.Faces {
		fid := topo.FaceID(fi)
		g.Go(func() error {
			tris, err := faceTriangles(s, fid, samples)
			if err != nil {
				return err
			}
			orientOutward(s, fid, tris)
			faceTris[fi] = tris
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return weld(faceTris), nil
}

// edgeSample is the shared polyline approximation of one edge. Closed
// edges repeat their first point at the end.
type edgeSample struct {
	pts []v3.Vec
}

func sampleEdges(s *topo.Solid, dev float64) []edgeSample {
	out := make([]edgeSample, len(s.Edges))
	for ei, e := range s.Edges {
		var ts []float64
		switch c := e.Curve.(type) {
		case geom.Circle:
			step := geom.ChordAngle(c.Radius, dev)
			n := int(math.Ceil(math.Abs(e.T1-e.T0) / step))
			if n < 8 {
				n = 8
			}
			ts = linspace(e.T0, e.T1, n)
		case geom.Polyline:
			// Break at every control point inside the window.
			ts = append(ts, e.T0)
			for t := math.Floor(e.T0) + 1; t < e.T1; t++ {
				if t > e.T0 {
					ts = append(ts, t)
				}
			}
			ts = append(ts, e.T1)
		default:
			ts = []float64{e.T0, e.T1}
		}
		pts := make([]v3.Vec, len(ts))
		for i, t := range ts {
			pts[i] = e.PointAt(t)
		}
		out[ei] = edgeSample{pts: pts}
	}
	return out
}

func faceTriangles(s *topo.Solid, fid topo.FaceID, samples []edgeSample) ([][3]v3.Vec, error) {
	f := s.Faces[fid]
	if isPeriodicBand(s, f) {
		return bandTriangles(f, samples)
	}
	return chartTriangles(f, samples)
}

// isPeriodicBand matches faces covering the full u period of a periodic
// surface between two closed-edge wires. Those have no single-valued
// parameter-space image and mesh as a ring strip instead.
func isPeriodicBand(s *topo.Solid, f topo.Face) bool {
	if ok, _ := f.Surface.PeriodicU(); !ok {
		return false
	}
	wires := f.Wires()
	if len(wires) != 2 {
		return false
	}
	for _, w := range wires {
		if len(w) != 1 || !s.Edges[w[0].Edge].Closed {
			return false
		}
	}
	return true
}

// bandTriangles stitches the two boundary rings of a full-period face.
// The rings may be sampled at different densities (a cone band's circles
// differ in radius); the stitch always advances whichever ring's next
// vertex comes first in u.
func bandTriangles(f topo.Face, samples []edgeSample) ([][3]v3.Vec, error) {
	_, period := f.Surface.PeriodicU()
	wires := f.Wires()

	type ring struct {
		pts []v3.Vec
		us  []float64
		v   float64
	}
	rings := make([]ring, 2)
	for i, w := range wires {
		smp := samples[w[0].Edge].pts
		pts := append([]v3.Vec(nil), smp[:len(smp)-1]...)
		if len(pts) < 3 {
			return nil, fmt.Errorf("%w: degenerate boundary ring", base.ErrTopology)
		}
		us := make([]float64, len(pts))
		var ref float64
		for k, p := range pts {
			uv := f.Surface.Project(p)
			if k > 0 {
				uv.X = unwrap(uv.X, ref, period)
			}
			ref = uv.X
			us[k] = uv.X
		}
		if us[len(us)-1] < us[0] {
			reverseVecs(pts)
			reverseFloats(us)
		}
		rings[i] = ring{pts: pts, us: us, v: f.Surface.Project(pts[0]).Y}
	}
	bot, top := rings[0], rings[1]
	if bot.v > top.v {
		bot, top = top, bot
	}

	// Shift the top ring's u window next to the bottom's.
	for top.us[0] < bot.us[0]-period/2 {
		for k := range top.us {
			top.us[k] += period
		}
	}
	for top.us[0] >= bot.us[0]+period/2 {
		for k := range top.us {
			top.us[k] -= period
		}
	}

	// Close both rings by repeating the first vertex one period on.
	nb, nt := len(bot.pts), len(top.pts)
	bp := append(append([]v3.Vec(nil), bot.pts...), bot.pts[0])
	bu := append(append([]float64(nil), bot.us...), bot.us[0]+period)
	tp := append(append([]v3.Vec(nil), top.pts...), top.pts[0])
	tu := append(append([]float64(nil), top.us...), top.us[0]+period)

	out := make([][3]v3.Vec, 0, nb+nt)
	i, j := 0, 0
	for i < nb || j < nt {
		if j >= nt || (i < nb && bu[i+1] <= tu[j+1]) {
			out = append(out, [3]v3.Vec{bp[i], bp[i+1], tp[j]})
			i++
		} else {
			out = append(out, [3]v3.Vec{tp[j+1], tp[j], bp[i]})
			j++
		}
	}
	return out, nil
}

// chartTriangles flattens a face into its surface's parameter space and
// ear-clips it there. Boundary vertices come from the shared edge
// samples, so adjacent faces agree exactly.
func chartTriangles(f topo.Face, samples []edgeSample) ([][3]v3.Vec, error) {
	periodic, period := f.Surface.PeriodicU()

	var loops [][]v2.Vec
	for _, w := range f.Wires() {
		var uv []v2.Vec
		var ref float64
		haveRef := false
		for _, oe := range w {
			pts := samples[oe.Edge].pts
			if oe.Reversed {
				pts = reversedVecs(pts)
			}
			// Drop each segment's last point; the next segment repeats it.
			for k := 0; k+1 < len(pts); k++ {
				q := f.Surface.Project(pts[k])
				if periodic && haveRef {
					q.X = unwrap(q.X, ref, period)
				}
				ref, haveRef = q.X, true
				uv = append(uv, q)
			}
		}
		if len(uv) < 3 {
			return nil, fmt.Errorf("%w: face wire degenerates in parameter space", base.ErrTopology)
		}
		loops = append(loops, uv)
	}

	verts, tris := poly.EarClip(loops[0], loops[1:])
	out := make([][3]v3.Vec, 0, len(tris))
	for _, tr := range tris {
		a := f.Surface.Point(verts[tr[0]].X, verts[tr[0]].Y)
		b := f.Surface.Point(verts[tr[1]].X, verts[tr[1]].Y)
		c := f.Surface.Point(verts[tr[2]].X, verts[tr[2]].Y)
		if b.Sub(a).Cross(c.Sub(a)).Length() < 1e-18 {
			continue
		}
		out = append(out, [3]v3.Vec{a, b, c})
	}
	return out, nil
}

// orientOutward flips any triangle whose winding disagrees with the
// face's outward normal.
func orientOutward(s *topo.Solid, fid topo.FaceID, tris [][3]v3.Vec) {
	f := s.Faces[fid]
	for i, tr := range tris {
		n := tr[1].Sub(tr[0]).Cross(tr[2].Sub(tr[0]))
		centroid := tr[0].Add(tr[1]).Add(tr[2]).DivScalar(3)
		uv := f.Surface.Project(centroid)
		out := f.Surface.Normal(uv.X, uv.Y)
		if !f.SameSense {
			out = out.Neg()
		}
		if n.Dot(out) < 0 {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
	}
}

// weld merges the per-face triangle soups into one indexed mesh, fusing
// coincident vertices and averaging their normals.
func weld(faceTris [][][3]v3.Vec) *kernel.Mesh {
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := lo.Neg()
	for _, tris := range faceTris {
		for _, tr := range tris {
			for _, p := range tr {
				lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
				hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
			}
		}
	}
	cell := 1e-7 * hi.Sub(lo).Length()
	if cell < 1e-12 {
		cell = 1e-12
	}

	type cellKey [3]int64
	keyOf := func(p v3.Vec) cellKey {
		return cellKey{
			int64(math.Floor(p.X / cell)),
			int64(math.Floor(p.Y / cell)),
			int64(math.Floor(p.Z / cell)),
		}
	}

	lookup := make(map[cellKey][]uint32)
	var positions []v3.Vec
	var normals []v3.Vec
	intern := func(p v3.Vec) uint32 {
		k := keyOf(p)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, idx := range lookup[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
						if positions[idx].Sub(p).Length() <= cell {
							return idx
						}
					}
				}
			}
		}
		idx := uint32(len(positions))
		positions = append(positions, p)
		normals = append(normals, v3.Vec{})
		lookup[k] = append(lookup[k], idx)
		return idx
	}

	mesh := &kernel.Mesh{}
	for _, tris := range faceTris {
		for _, tr := range tris {
			i0 := intern(tr[0])
			i1 := intern(tr[1])
			i2 := intern(tr[2])
			if i0 == i1 || i1 == i2 || i0 == i2 {
				continue
			}
			mesh.Indices = append(mesh.Indices, i0, i1, i2)
			// Cross product magnitude is twice the area, so summing raw
			// cross products gives area-weighted vertex normals.
			n := tr[1].Sub(tr[0]).Cross(tr[2].Sub(tr[0]))
			normals[i0] = normals[i0].Add(n)
			normals[i1] = normals[i1].Add(n)
			normals[i2] = normals[i2].Add(n)
		}
	}

	mesh.Vertices = make([]float32, 0, 3*len(positions))
	mesh.Normals = make([]float32, 0, 3*len(positions))
	for i, p := range positions {
		mesh.Vertices = append(mesh.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		n := normals[i]
		if n.Length() < 1e-18 {
			n = v3.Vec{Z: 1}
		} else {
			n = n.Normalize()
		}
		mesh.Normals = append(mesh.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return mesh
}

func linspace(t0, t1 float64, n int) []float64 {
	out := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		out[i] = t0 + (t1-t0)*float64(i)/float64(n)
	}
	out[n] = t1
	return out
}

func unwrap(u, ref, period float64) float64 {
	for u-ref > period/2 {
		u -= period
	}
	for u-ref < -period/2 {
		u += period
	}
	return u
}

func reverseVecs(pts []v3.Vec) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func reversedVecs(pts []v3.Vec) []v3.Vec {
	out := append([]v3.Vec(nil), pts...)
	reverseVecs(out)
	return out
}

func reverseFloats(ts []float64) {
	for i, j := 0, len(ts)-1; i < j; i, j = i+1, j-1 {
		ts[i], ts[j] = ts[j], ts[i]
	}
}
