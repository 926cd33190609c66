package scene

import "github.com/arbobendik/FlexLight-sub000/types"

// Number of floats used by each light in the buffer generated by
// Scene.LightBuffer.
const LightStride = 6

// LightSource is a point light. A nil Intensity or Variation selects the
// scene default.
type LightSource struct {
	Position types.Vec3

	Intensity *float32
	Variation *float32
}

// Create a light at position with the scene defaults.
func NewLight(x, y, z float32) LightSource {
	return LightSource{Position: types.XYZ(x, y, z)}
}

// Override the intensity.
func (l LightSource) WithIntensity(i float32) LightSource {
	l.Intensity = &i
	return l
}

// Override the position variation.
func (l LightSource) WithVariation(v float32) LightSource {
	l.Variation = &v
	return l
}

// Pack all lights, LightStride floats per light: position, intensity,
// variation and a zero pad.
func (s *Scene) LightBuffer() []float32 {
	out := make([]float32, 0, LightStride*len(s.Lights))
	for _, l := range s.Lights {
		intensity := s.DefaultLightIntensity
		if l.Intensity != nil {
			intensity = *l.Intensity
		}
		variation := s.DefaultLightVariation
		if l.Variation != nil {
			variation = *l.Variation
		}
		out = append(out, l.Position[0], l.Position[1], l.Position[2], intensity, variation, 0)
	}
	return out
}
