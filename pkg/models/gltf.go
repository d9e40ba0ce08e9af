package models

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	GenerateTangents bool
	LoadImages       bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		GenerateTangents: true,
		LoadImages:       true,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// primitive is the geometry of one glTF primitive before merging.
type primitive struct {
	vertices []Vertex
	indices  []uint32
	strip    bool
	material *int
}

// Load loads a GLTF or GLB file and returns a Mesh.
// A file holding a single strip primitive keeps strip topology; everything
// else is merged into one triangle list. GLTF front faces are
// counter-clockwise, so the winding is reversed on the way in.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var prims []primitive
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			prim, ok, err := readPrimitive(doc, p)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			if ok {
				prims = append(prims, prim)
			}
		}
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGeometry)
	}

	var mesh *Mesh
	if len(prims) == 1 && prims[0].strip {
		idx := ReverseWinding(prims[0].indices, TriangleStrip)
		mesh = NewMesh(filepath.Base(path), prims[0].vertices, idx, TriangleStrip)
	} else {
		mesh = NewMesh(filepath.Base(path), nil, nil, TriangleList)
		for _, p := range prims {
			base := uint32(len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, p.vertices...)
			idx := p.indices
			if p.strip {
				idx = StripToList(idx)
			}
			idx = ReverseWinding(idx, TriangleList)
			for _, i := range idx {
				mesh.Indices = append(mesh.Indices, base+i)
			}
		}
		mesh.ResetOut()
		mesh.CalculateBounds()
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	if l.CalculateNormals && !mesh.hasNormals() {
		mesh.CalculateSmoothNormals()
	}
	if l.GenerateTangents && !hasTangents(prims) {
		ComputeTangents(mesh)
	}

	if l.LoadImages && prims[0].material != nil {
		mesh.Material, err = readMaterial(doc, *prims[0].material, filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("material: %w", err)
		}
	}

	return mesh, nil
}

func hasTangents(prims []primitive) bool {
	for _, p := range prims {
		for _, v := range p.vertices {
			if v.Tangent.LenSq() > 1e-6 {
				return true
			}
		}
	}
	return false
}

// readPrimitive extracts geometry from a GLTF primitive. Non-triangle
// primitives report ok=false.
func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (primitive, bool, error) {
	var prim primitive
	switch p.Mode {
	case gltf.PrimitiveTriangles:
	case gltf.PrimitiveTriangleStrip:
		prim.strip = true
	default:
		// Skip points, lines and fans
		return prim, false, nil
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return prim, false, nil
	}

	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return prim, false, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if normals, err = readVec3Accessor(doc, idx); err != nil {
			return prim, false, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = readVec2Accessor(doc, idx); err != nil {
			return prim, false, fmt.Errorf("read uvs: %w", err)
		}
	}

	var tangents []math3d.Vec3
	if idx, ok := p.Attributes[gltf.TANGENT]; ok {
		if tangents, err = readTangentAccessor(doc, idx); err != nil {
			return prim, false, fmt.Errorf("read tangents: %w", err)
		}
	}

	prim.vertices = make([]Vertex, len(positions))
	for i, pos := range positions {
		v := Vertex{Position: pos}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// GLTF UVs already have a top-left origin, matching image rows.
			v.UV = uvs[i]
		}
		if i < len(tangents) {
			v.Tangent = tangents[i]
		}
		prim.vertices[i] = v
	}

	if p.Indices != nil {
		prim.indices, err = readIndices(doc, *p.Indices)
		if err != nil {
			return prim, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, vertices are used in order
		prim.indices = make([]uint32, len(positions))
		for i := range prim.indices {
			prim.indices[i] = uint32(i)
		}
	}
	prim.material = p.Material

	return prim, true, nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

// readTangentAccessor reads VEC4 tangents and drops the handedness sign.
func readTangentAccessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec4, 4)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2]).Normalize()
	}
	return result, nil
}

// readFloatAccessor reads n float32 components per element.
func readFloatAccessor(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([][4]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrIndexOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([][4]float64, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+n*4 > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		for j := range n {
			result[i][j] = float64(readFloat32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrIndexOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		switch size {
		case 1:
			result[i] = uint32(data[offset])
		case 2:
			result[i] = uint32(data[offset]) | uint32(data[offset+1])<<8
		case 4:
			result[i] = uint32(data[offset]) |
				uint32(data[offset+1])<<8 |
				uint32(data[offset+2])<<16 |
				uint32(data[offset+3])<<24
		}
	}
	return result, nil
}

// accessorBytes resolves the buffer backing an accessor, the byte offset of
// its first element and its stride. gltf.Open has already loaded external
// and data-URI buffers into Buffer.Data.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (data []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	stride = bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

// readMaterial decodes the textures of a glTF material: the base color
// texture becomes the diffuse map and the normal texture the normal map.
// Core glTF has no specular or gloss maps; those come from the caller.
func readMaterial(doc *gltf.Document, idx int, dir string) (Material, error) {
	if idx < 0 || idx >= len(doc.Materials) {
		return Material{}, fmt.Errorf("material %d: %w", idx, ErrIndexOutOfRange)
	}
	m := doc.Materials[idx]
	out := Material{Name: m.Name}

	var err error
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			if out.Diffuse, err = textureImage(doc, pbr.BaseColorTexture.Index, dir); err != nil {
				return out, fmt.Errorf("base color: %w", err)
			}
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		if out.Normal, err = textureImage(doc, *m.NormalTexture.Index, dir); err != nil {
			return out, fmt.Errorf("normal: %w", err)
		}
	}
	return out, nil
}

// textureImage decodes the image a glTF texture points at.
func textureImage(doc *gltf.Document, texIdx int, dir string) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d: %w", texIdx, ErrIndexOutOfRange)
	}
	src := doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return nil, nil
	}
	img := doc.Images[*src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("image buffer has no data")
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case strings.HasPrefix(img.URI, "data:"):
		_, payload, ok := strings.Cut(img.URI, ";base64,")
		if !ok {
			return nil, fmt.Errorf("image data URI is not base64")
		}
		var err error
		if data, err = base64.StdEncoding.DecodeString(payload); err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
	case img.URI != "":
		// External texture file
		var err error
		if data, err = os.ReadFile(filepath.Join(dir, img.URI)); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	return DecodeImage(bytes.NewReader(data))
}
