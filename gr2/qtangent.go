package gr2

import "github.com/larian-tools/assetcore/math32"

// DecodeQTangent converts a packed QTangent into a normal and a
// 4-component tangent (xyz + handedness sign).
func DecodeQTangent(packed [4]int16) (normal math32.Vector3, tangent [4]float32) {
	q := math32.Quaternion{
		X: float32(packed[0]) / 32767.0,
		Y: float32(packed[1]) / 32767.0,
		Z: float32(packed[2]) / 32767.0,
		W: float32(packed[3]) / 32767.0,
	}

	n := (&math32.Vector3{X: 0, Y: 0, Z: 1}).ApplyQuaternion(&q)
	t := (&math32.Vector3{X: 1, Y: 0, Z: 0}).ApplyQuaternion(&q)

	w := float32(1)
	if q.W < 0 {
		w = -1
	}
	return *n, [4]float32{t.X, t.Y, t.Z, w}
}
