package gr2

import (
	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/math32"
)

// Vertex is one decoded mesh vertex (§3.4).
type Vertex struct {
	Position    math32.Vector3
	UV          [2]float32
	Color       [4]byte
	QTangent    [4]int16
	BoneIndices [4]byte
	BoneWeights [4]byte
}

// MeshData is a fully decoded mesh, extracted from the GR2 pointer
// graph (§3.4).
type MeshData struct {
	Name           string
	Vertices       []Vertex
	Indices        []uint32
	Is32BitIndices bool
}

// Bone is one skeleton joint (§3.4).
type Bone struct {
	Name                  string
	ParentIndex           int32
	Translation           math32.Vector3
	Rotation              math32.Quaternion
	ScaleShear            math32.Matrix3 // row-major 3x3
	InverseWorldTransform math32.Matrix4 // row-major 4x4
}

// LocalTransform composes this bone's translation, rotation and the
// diagonal of its scale/shear matrix into a single local transform,
// discarding off-diagonal shear (§3.4 models shear but the compose
// path here only needs axis scale).
func (b *Bone) LocalTransform() *math32.Matrix4 {
	scale := math32.Vector3{X: b.ScaleShear[0], Y: b.ScaleShear[4], Z: b.ScaleShear[8]}
	m := math32.NewMatrix4()
	m.Compose(&b.Translation, &b.Rotation, &scale)
	return m
}

// WorldTransform inverts the decoded inverse-world matrix to recover
// this bone's world-space transform.
func (b *Bone) WorldTransform() (*math32.Matrix4, error) {
	world := math32.NewMatrix4()
	if err := world.GetInverse(&b.InverseWorldTransform); err != nil {
		return nil, &apperr.GR2MissingAssets{Path: b.Name}
	}
	return world, nil
}

// Skeleton is a fully decoded skeleton (§3.4).
type Skeleton struct {
	Name  string
	Bones []Bone
}

// gr2 record field layout. The on-disk object layout is whatever the
// exporter tool that wrote the file used; the fields this reader
// cares about are reached by fixed byte offsets within each record,
// matching the concatenated-section address space described in §3.4.
const (
	meshNameOff     = 0
	meshVertexCount = 8
	meshVertexData  = 12
	meshIndexCount  = 20
	meshIndexData   = 24
	meshIndexWidth  = 32 // 0 = u16, 1 = u32

	vertexStride = 4*3 + 4*2 + 4 + 4*2 + 4 + 4 // position+uv+color+qtangent+boneIdx+boneWeight

	skelNameOff   = 0
	skelBoneCount = 8
	skelBoneData  = 12

	boneNameOff       = 0
	boneParentOff     = 8
	boneTranslateOff  = 12
	boneRotationOff   = 24
	boneScaleShearOff = 40
	boneInvWorldOff   = 76
	boneRecordSize    = 140
)

func (d *Document) readString(off int) string {
	p := d.readPointer(off)
	abs, ok := d.Resolve(p)
	if !ok {
		return ""
	}
	end := abs
	for end < len(d.Data) && d.Data[end] != 0 {
		end++
	}
	return string(d.Data[abs:end])
}

// LoadMesh decodes the Mesh record at p into a MeshData.
func (d *Document) LoadMesh(p Pointer) (*MeshData, error) {
	abs, ok := d.Resolve(p)
	if !ok {
		return nil, &apperr.GR2MissingAssets{Path: "mesh pointer"}
	}

	m := &MeshData{Name: d.readString(abs + meshNameOff)}
	vcount := int(d.readUint32(abs + meshVertexCount))
	vdataPtr := d.readPointer(abs + meshVertexData)
	vabs, ok := d.Resolve(vdataPtr)
	if !ok {
		return nil, &apperr.GR2MissingAssets{Path: m.Name}
	}

	m.Vertices = make([]Vertex, vcount)
	for i := range m.Vertices {
		o := vabs + i*vertexStride
		v := &m.Vertices[i]
		v.Position = math32.Vector3{X: d.readFloat32(o), Y: d.readFloat32(o + 4), Z: d.readFloat32(o + 8)}
		v.UV = [2]float32{d.readFloat32(o + 12), d.readFloat32(o + 16)}
		copy(v.Color[:], d.Data[o+20:o+24])
		for j := 0; j < 4; j++ {
			v.QTangent[j] = int16(d.readUint32(o+24+2*j) & 0xFFFF)
		}
		copy(v.BoneIndices[:], d.Data[o+32:o+36])
		copy(v.BoneWeights[:], d.Data[o+36:o+40])
	}

	icount := int(d.readUint32(abs + meshIndexCount))
	idataPtr := d.readPointer(abs + meshIndexData)
	iabs, ok := d.Resolve(idataPtr)
	if !ok {
		return nil, &apperr.GR2MissingAssets{Path: m.Name}
	}
	m.Is32BitIndices = d.readUint32(abs+meshIndexWidth) != 0
	m.Indices = make([]uint32, icount)
	for i := range m.Indices {
		if m.Is32BitIndices {
			m.Indices[i] = d.readUint32(iabs + i*4)
		} else {
			lo := iabs + i*2
			m.Indices[i] = uint32(d.Data[lo]) | uint32(d.Data[lo+1])<<8
		}
	}
	return m, nil
}

// LoadSkeleton decodes the Skeleton record at p into a Skeleton.
func (d *Document) LoadSkeleton(p Pointer) (*Skeleton, error) {
	abs, ok := d.Resolve(p)
	if !ok {
		return nil, &apperr.GR2MissingAssets{Path: "skeleton pointer"}
	}

	s := &Skeleton{Name: d.readString(abs + skelNameOff)}
	count := int(d.readUint32(abs + skelBoneCount))
	boneDataPtr := d.readPointer(abs + skelBoneData)
	babs, ok := d.Resolve(boneDataPtr)
	if !ok {
		return nil, &apperr.GR2MissingAssets{Path: s.Name}
	}

	s.Bones = make([]Bone, count)
	for i := range s.Bones {
		o := babs + i*boneRecordSize
		b := &s.Bones[i]
		b.Name = d.readString(o + boneNameOff)
		b.ParentIndex = int32(d.readUint32(o + boneParentOff))
		b.Translation = math32.Vector3{
			X: d.readFloat32(o + boneTranslateOff),
			Y: d.readFloat32(o + boneTranslateOff + 4),
			Z: d.readFloat32(o + boneTranslateOff + 8),
		}
		b.Rotation = math32.Quaternion{
			X: d.readFloat32(o + boneRotationOff),
			Y: d.readFloat32(o + boneRotationOff + 4),
			Z: d.readFloat32(o + boneRotationOff + 8),
			W: d.readFloat32(o + boneRotationOff + 12),
		}
		for j := 0; j < 9; j++ {
			b.ScaleShear[j] = d.readFloat32(o + boneScaleShearOff + 4*j)
		}
		for j := 0; j < 16; j++ {
			b.InverseWorldTransform[j] = d.readFloat32(o + boneInvWorldOff + 4*j)
		}
	}
	return s, nil
}

// LoadAssets walks the root object, returning every Mesh and Skeleton
// it directly references. Returns GR2MissingAssets if neither is
// present, per §4.6/§7's asset-level error taxonomy.
func (d *Document) LoadAssets(path string) ([]*MeshData, []*Skeleton, error) {
	rootAbs, ok := d.Resolve(d.Root)
	if !ok {
		return nil, nil, &apperr.GR2MissingAssets{Path: path}
	}

	// root object: { mesh_count u32; meshes ptr; skeleton_count u32; skeletons ptr }
	meshCount := int(d.readUint32(rootAbs))
	meshesPtr := d.readPointer(rootAbs + 4)
	skelCount := int(d.readUint32(rootAbs + 12))
	skelsPtr := d.readPointer(rootAbs + 16)

	var meshes []*MeshData
	if meshCount > 0 {
		mabs, ok := d.Resolve(meshesPtr)
		if ok {
			for i := 0; i < meshCount; i++ {
				mp := d.readPointer(mabs + i*8)
				m, err := d.LoadMesh(mp)
				if err != nil {
					return nil, nil, err
				}
				meshes = append(meshes, m)
			}
		}
	}

	var skeletons []*Skeleton
	if skelCount > 0 {
		sabs, ok := d.Resolve(skelsPtr)
		if ok {
			for i := 0; i < skelCount; i++ {
				sp := d.readPointer(sabs + i*8)
				s, err := d.LoadSkeleton(sp)
				if err != nil {
					return nil, nil, err
				}
				skeletons = append(skeletons, s)
			}
		}
	}

	if len(meshes) == 0 && len(skeletons) == 0 {
		return nil, nil, &apperr.GR2MissingAssets{Path: path}
	}
	return meshes, skeletons, nil
}
