package gr2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/larian-tools/assetcore/math32"
)

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func TestLoadUncompressedSection(t *testing.T) {
	var body bytes.Buffer
	sectionPayload := []byte("hello gr2 section data")

	var buf bytes.Buffer
	buf.WriteString("GR2\x00")
	writeU32(&buf, 1)                        // version
	writeU32(&buf, 0)                        // file size (unused by reader)
	writeU32(&buf, 1)                        // section count
	writeU32(&buf, 0)                        // root section
	writeU32(&buf, 0)                        // root offset

	// section header
	writeU32(&buf, sectionCompressionNone)
	writeU32(&buf, 0)
	writeU32(&buf, uint32(len(sectionPayload)))
	writeU32(&buf, uint32(len(sectionPayload)))
	writeU32(&buf, 0)

	body.Write(sectionPayload)
	buf.Write(body.Bytes())

	doc, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.SectionBase) != 1 || doc.SectionBase[0] != 0 {
		t.Fatalf("unexpected section base: %v", doc.SectionBase)
	}
	if !bytes.Equal(doc.Data, sectionPayload) {
		t.Fatalf("section data mismatch: %q", doc.Data)
	}
}

func TestResolveNullPointer(t *testing.T) {
	d := &Document{SectionBase: []int{0}, Data: make([]byte, 8)}
	if _, ok := d.Resolve(Pointer{Section: -1}); ok {
		t.Fatal("expected null pointer to fail resolution")
	}
	if _, ok := d.Resolve(Pointer{Section: 5}); ok {
		t.Fatal("expected out-of-range section to fail resolution")
	}
	if abs, ok := d.Resolve(Pointer{Section: 0, Offset: 4}); !ok || abs != 4 {
		t.Fatalf("expected resolution to offset 4, got %d, %v", abs, ok)
	}
}

func TestDecodeQTangentIdentity(t *testing.T) {
	// identity quaternion packed as (0,0,0,32767) should leave the
	// reference axes unrotated, with a positive handedness sign.
	normal, tangent := DecodeQTangent([4]int16{0, 0, 0, 32767})

	wantNormal := math32.Vector3{X: 0, Y: 0, Z: 1}
	if !closeVec(normal, wantNormal) {
		t.Fatalf("normal = %+v, want %+v", normal, wantNormal)
	}
	if tangent[3] != 1 {
		t.Fatalf("tangent.w = %v, want 1", tangent[3])
	}
	if !closeF(tangent[0], 1) || !closeF(tangent[1], 0) || !closeF(tangent[2], 0) {
		t.Fatalf("tangent xyz = %v, want (1,0,0)", tangent)
	}
}

func TestDecodeQTangentNegativeHandedness(t *testing.T) {
	_, tangent := DecodeQTangent([4]int16{0, 0, 0, -32767})
	if tangent[3] != -1 {
		t.Fatalf("tangent.w = %v, want -1", tangent[3])
	}
}

func TestToGLTFFlipsWinding(t *testing.T) {
	m := &MeshData{
		Vertices: []Vertex{{Position: math32.Vector3{X: 1, Y: 2, Z: 3}}},
		Indices:  []uint32{0, 1, 2},
	}
	verts, indices := ToGLTF(m)
	if verts[0].Position.X != -1 {
		t.Fatalf("expected X negated, got %v", verts[0].Position.X)
	}
	if indices[0] != 0 || indices[1] != 2 || indices[2] != 1 {
		t.Fatalf("winding not flipped: %v", indices)
	}
}

func TestToGLTFZeroesUnweightedJoints(t *testing.T) {
	m := &MeshData{
		Vertices: []Vertex{{
			BoneIndices: [4]byte{3, 7, 9, 2},
			BoneWeights: [4]byte{255, 0, 128, 0},
		}},
		Indices: []uint32{0, 1, 2},
	}
	verts, _ := ToGLTF(m)
	want := [4]byte{3, 0, 9, 0}
	if verts[0].BoneIndices != want {
		t.Fatalf("joints = %v, want %v", verts[0].BoneIndices, want)
	}
}

func TestBoneLocalAndWorldTransform(t *testing.T) {
	b := &Bone{
		Name:        "root",
		Translation: math32.Vector3{X: 1, Y: 2, Z: 3},
		Rotation:    math32.Quaternion{X: 0, Y: 0, Z: 0, W: 1},
		ScaleShear:  math32.Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	local := b.LocalTransform()
	if local[12] != 1 || local[13] != 2 || local[14] != 3 {
		t.Fatalf("local transform translation = %v", []float32{local[12], local[13], local[14]})
	}

	b.InverseWorldTransform = *math32.NewMatrix4().Identity()
	world, err := b.WorldTransform()
	if err != nil {
		t.Fatalf("WorldTransform: %v", err)
	}
	if *world != *math32.NewMatrix4().Identity() {
		t.Fatalf("world transform = %v, want identity", world)
	}
}

func closeF(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-4
}

func closeVec(a, b math32.Vector3) bool {
	return closeF(a.X, b.X) && closeF(a.Y, b.Y) && closeF(a.Z, b.Z)
}
