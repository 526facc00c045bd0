package materialize

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/kensetsu/pkg/meshtex"
)

// WriteOBJ writes m as a Wavefront OBJ object. Indices are grouped into
// triangles; a trailing incomplete triangle is dropped. Normals and UVs
// are referenced per vertex when their counts match the vertex count.
// Nothing is written if an index addresses no vertex.
func WriteOBJ(w io.Writer, name string, m *meshtex.Mesh) error {
	if err := checkIndices(m); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# kensetsu mesh: %d vertices, %d triangles\n", len(m.Vertices), m.TriangleCount())
	fmt.Fprintf(bw, "o %s\n", name)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, vt := range m.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", vt.X, vt.Y)
	}
	for _, vn := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", vn.X, vn.Y, vn.Z)
	}

	hasUV := len(m.UVs) > 0 && len(m.UVs) == len(m.Vertices)
	hasNormal := len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)

	for i := 0; i+2 < len(m.Indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range m.Indices[i : i+3] {
			n := idx + 1
			switch {
			case hasUV && hasNormal:
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", n, n)
			case hasNormal:
				fmt.Fprintf(bw, " %d//%d", n, n)
			default:
				fmt.Fprintf(bw, " %d", n)
			}
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}
