package models

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.GenerateTangents {
		t.Error("GenerateTangents should default to true")
	}
	if !loader.LoadImages {
		t.Error("LoadImages should default to true")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("model.fbx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.fbx) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadFloat32(t *testing.T) {
	// 1.5 = 0x3FC00000, little-endian
	if got := readFloat32([]byte{0x00, 0x00, 0xC0, 0x3F}); got != 1.5 {
		t.Errorf("readFloat32 = %v, want 1.5", got)
	}
}

func TestLoadGLBStrip(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, -1, 0}, {1, -1, 0}, {-1, 1, 0}, {1, 1, 0},
	})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{
		{0, 1}, {1, 1}, {0, 0}, {1, 0},
	})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Mode:       gltf.PrimitiveTriangleStrip,
		}},
	}}

	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	mesh, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if mesh.Topology != TriangleStrip {
		t.Errorf("Topology = %v, want strip", mesh.Topology)
	}
	// Reversing the winding prepends one degenerate triangle.
	if mesh.TriangleCount() != 3 {
		t.Errorf("TriangleCount = %d, want 3", mesh.TriangleCount())
	}
	if len(mesh.Out) != len(mesh.Vertices) {
		t.Errorf("len(Out) = %d, want %d", len(mesh.Out), len(mesh.Vertices))
	}

	// Generated normals face +Z for a quad that is counter-clockwise in the file.
	if n := mesh.Vertices[0].Normal; math.Abs(n.Z-1) > 1e-6 {
		t.Errorf("normal = %v, want +Z", n)
	}
	// U runs along +X so the generated tangent does too.
	if tg := mesh.Vertices[0].Tangent; math.Abs(tg.X-1) > 1e-6 {
		t.Errorf("tangent = %v, want +X", tg)
	}
}
