package param

import "math"

func logf(x float32) float32  { return float32(math.Log(float64(x))) }
func expf(x float32) float32  { return float32(math.Exp(float64(x))) }
func sqrtf(x float32) float32 {
	if x < 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
