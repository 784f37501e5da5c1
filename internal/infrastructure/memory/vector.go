package memory

import (
	"encoding/binary"
	"math"

	"github.com/doeshing/termind/internal/infrastructure/embedding"
)

// encodeVector packs float32 values little-endian.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, bool) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, true
}

func cosineDistance(a, b []float32) (float64, error) {
	return embedding.CosineDistance(a, b)
}
