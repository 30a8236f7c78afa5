package topo

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/poly"
)

// SolidVolume returns the signed volume enclosed by all shells, via the
// divergence theorem over a coarse facetization. Outer shells contribute
// positive volume, interior voids negative.
func SolidVolume(s *Solid) float64 {
	var sum float64
	for si := range s.Shells {
		sum += ShellVolume(s, si)
	}
	return sum
}

// ShellVolume returns the signed volume of one shell. Positive means the
// shell's outward normals point away from the enclosed material, i.e. an
// outer boundary; negative marks a void.
func ShellVolume(s *Solid, shell int) float64 {
	var sum float64
	for _, fid := range s.Shells[shell].Faces {
		for _, tri := range FaceFacets(s, fid) {
			sum += tri[0].Dot(tri[1].Cross(tri[2])) / 6
		}
	}
	return sum
}

// FaceFacets returns a coarse outward-oriented facetization of a face,
// suitable for volume and classification queries but not for export;
// tessellation quality is the tessellate package's concern.
func FaceFacets(s *Solid, id FaceID) [][3]v3.Vec {
	ch, err := s.FaceChart(id)
	if err != nil {
		return nil
	}
	if ch.Periodic {
		return periodicFacets(ch)
	}
	verts, tris := poly.EarClip(ch.Region.Outer.Points(), holeLoops(ch.Region.Holes))
	curved, _ := ch.Surface.PeriodicU()
	out := make([][3]v3.Vec, 0, len(tris))
	for _, t := range tris {
		tri := [3]v2.Vec{verts[t[0]], verts[t[1]], verts[t[2]]}
		var flat [][3]v2.Vec
		if curved {
			refineChartTri(tri, 6, &flat)
		} else {
			flat = [][3]v2.Vec{tri}
		}
		for _, ft := range flat {
			a := surfPoint(ch, ft[0])
			b := surfPoint(ch, ft[1])
			c := surfPoint(ch, ft[2])
			if ch.Flipped {
				b, c = c, b
			}
			out = append(out, [3]v3.Vec{a, b, c})
		}
	}
	return out
}

// refineChartTri splits a chart triangle until its angular (u) span is
// below the chart resolution, so lifting its vertices to a curved surface
// tracks the curvature. Rulings along v are straight on every curved kind,
// so only the u span matters.
func refineChartTri(tri [3]v2.Vec, depth int, out *[][3]v2.Vec) {
	span := math.Max(math.Abs(tri[0].X-tri[1].X),
		math.Max(math.Abs(tri[1].X-tri[2].X), math.Abs(tri[0].X-tri[2].X)))
	if depth == 0 || span <= chartAngleStep {
		*out = append(*out, tri)
		return
	}
	m01 := tri[0].Add(tri[1]).DivScalar(2)
	m12 := tri[1].Add(tri[2]).DivScalar(2)
	m20 := tri[2].Add(tri[0]).DivScalar(2)
	refineChartTri([3]v2.Vec{tri[0], m01, m20}, depth-1, out)
	refineChartTri([3]v2.Vec{m01, tri[1], m12}, depth-1, out)
	refineChartTri([3]v2.Vec{m20, m12, tri[2]}, depth-1, out)
	refineChartTri([3]v2.Vec{m01, m12, m20}, depth-1, out)
}

func periodicFacets(ch *Chart) [][3]v3.Vec {
	cols := int(math.Ceil(ch.Period / chartAngleStep))
	if cols < 8 {
		cols = 8
	}
	v0, v1 := ch.VRange[0], ch.VRange[1]
	out := make([][3]v3.Vec, 0, 2*cols)
	for k := 0; k < cols; k++ {
		ua := ch.Period * float64(k) / float64(cols)
		ub := ch.Period * float64(k+1) / float64(cols)
		p00 := ch.Surface.Point(ua, v0)
		p10 := ch.Surface.Point(ub, v0)
		p01 := ch.Surface.Point(ua, v1)
		p11 := ch.Surface.Point(ub, v1)
		t1 := [3]v3.Vec{p00, p10, p11}
		t2 := [3]v3.Vec{p00, p11, p01}
		if ch.Flipped {
			t1[1], t1[2] = t1[2], t1[1]
			t2[1], t2[2] = t2[2], t2[1]
		}
		out = append(out, t1, t2)
	}
	return out
}

func surfPoint(ch *Chart, uv v2.Vec) v3.Vec {
	return ch.Surface.Point(uv.X, uv.Y)
}

func holeLoops(holes []poly.Loop) [][]v2.Vec {
	out := make([][]v2.Vec, len(holes))
	for i, h := range holes {
		out[i] = h.Points()
	}
	return out
}
