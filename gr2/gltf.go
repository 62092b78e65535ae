package gr2

import "github.com/larian-tools/assetcore/math32"

// GLTFVertex is a mesh vertex after the engine's coordinate-convention
// fix-up, ready for glTF emission.
type GLTFVertex struct {
	Position    math32.Vector3
	Normal      math32.Vector3
	Tangent     [4]float32
	UV          [2]float32
	Color       [4]byte
	BoneIndices [4]byte
	BoneWeights [4]byte
}

// ToGLTF converts a decoded MeshData into glTF-convention vertices and
// a triangle-winding-corrected index buffer.
//
// The fix-up negates position.x and normal.x, and flips triangle
// winding (0,1,2 -> 0,2,1) to compensate. Normal.y/z are also mirrored
// while tangent.y/z are left alone; this asymmetry matches the
// reference exporter exactly and is not a transcription error.
// Joint indices are zeroed wherever the matching weight is zero,
// since glTF requires joint 0 to be a valid (if unused) bone.
func ToGLTF(m *MeshData) ([]GLTFVertex, []uint32) {
	verts := make([]GLTFVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		normal, tangent := DecodeQTangent(v.QTangent)

		joints := v.BoneIndices
		for j, w := range v.BoneWeights {
			if w == 0 {
				joints[j] = 0
			}
		}

		verts[i] = GLTFVertex{
			Position:    math32.Vector3{X: -v.Position.X, Y: v.Position.Y, Z: v.Position.Z},
			Normal:      math32.Vector3{X: -normal.X, Y: -normal.Y, Z: -normal.Z},
			Tangent:     [4]float32{-tangent[0], tangent[1], tangent[2], tangent[3]},
			UV:          v.UV,
			Color:       v.Color,
			BoneIndices: joints,
			BoneWeights: v.BoneWeights,
		}
	}

	indices := make([]uint32, len(m.Indices))
	copy(indices, m.Indices)
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
	return verts, indices
}
