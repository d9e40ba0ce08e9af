package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/engine/loader/obj"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

// objKey identifies a unique position/uv/normal combination of a face corner.
type objKey struct {
	pos, uv, norm int
}

// LoadOBJ loads a Wavefront OBJ file. Material libraries are not read;
// textures come from the configuration instead.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ decodes an OBJ stream into a single triangle list mesh.
// Polygons are split into fans with their counter-clockwise winding
// reversed. Face corners sharing the same v/vt/vn triple share one vertex,
// and texture V is flipped to a top-left origin.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	// The leading object statement gives faces that precede any o/g line
	// an owner.
	src := io.MultiReader(strings.NewReader("o "+name+"\n"), r)
	dec, err := obj.DecodeReader(src, strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("decode obj: %w", err)
	}

	b := objBuilder{dec: dec, seen: make(map[objKey]uint32)}
	for _, o := range dec.Objects {
		for _, face := range o.Faces {
			if err := b.addFace(face); err != nil {
				return nil, fmt.Errorf("object %q: %w", o.Name, err)
			}
		}
	}
	if len(b.indices) == 0 {
		return nil, ErrNoGeometry
	}

	mesh := NewMesh(name, b.vertices, b.indices, TriangleList)
	if !mesh.hasNormals() {
		mesh.CalculateSmoothNormals()
	}
	ComputeTangents(mesh)
	return mesh, nil
}

// objBuilder flattens decoded faces into an indexed vertex list.
type objBuilder struct {
	dec      *obj.Decoder
	vertices []Vertex
	indices  []uint32
	seen     map[objKey]uint32
}

func (b *objBuilder) addFace(face obj.Face) error {
	if len(face.Vertices) < 3 {
		return fmt.Errorf("face needs at least 3 corners, got %d", len(face.Vertices))
	}
	nPos := len(b.dec.Vertices) / 3
	nUV := len(b.dec.Uvs) / 2
	nNorm := len(b.dec.Normals) / 3

	corners := make([]uint32, len(face.Vertices))
	for i, p := range face.Vertices {
		if p < 0 || p >= nPos {
			return fmt.Errorf("position %d of %d: %w", p+1, nPos, ErrIndexOutOfRange)
		}
		key := objKey{pos: p, uv: -1, norm: -1}
		// Missing vt/vn come back as an out-of-range marker.
		if i < len(face.Uvs) && face.Uvs[i] >= 0 && face.Uvs[i] < nUV {
			key.uv = face.Uvs[i]
		}
		if i < len(face.Normals) && face.Normals[i] >= 0 && face.Normals[i] < nNorm {
			key.norm = face.Normals[i]
		}
		corners[i] = b.vertex(key)
	}

	for i := 1; i+1 < len(corners); i++ {
		b.indices = append(b.indices, corners[0], corners[i+1], corners[i])
	}
	return nil
}

// vertex returns the index of the vertex for key, appending it on first use.
func (b *objBuilder) vertex(key objKey) uint32 {
	if idx, ok := b.seen[key]; ok {
		return idx
	}
	pos := b.dec.Vertices[3*key.pos:]
	v := Vertex{Position: math3d.V3(float64(pos[0]), float64(pos[1]), float64(pos[2]))}
	if key.uv >= 0 {
		uv := b.dec.Uvs[2*key.uv:]
		v.UV = math3d.V2(float64(uv[0]), 1-float64(uv[1]))
	}
	if key.norm >= 0 {
		n := b.dec.Normals[3*key.norm:]
		v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
	}
	idx := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v)
	b.seen[key] = idx
	return idx
}
