package timeseries

// NDVI fill values are clipped to the physically plausible range;
// interpolation across a cloud gap can otherwise overshoot.
const (
	ndviFillMin = -0.2
	ndviFillMax = 0.95
)

// FillIndex returns one index column with gaps between observations
// filled by linear interpolation over day distance. Days before the
// first or after the last observation stay nil; observed values pass
// through unchanged. The records themselves are not modified, so the
// engine keeps seeing real observations only.
func (s *Series) FillIndex(f IndexField) []*float64 {
	out := make([]*float64, len(s.Records))

	prev := -1
	for i := range s.Records {
		v := s.Records[i].Index(f)
		if v == nil {
			continue
		}
		out[i] = Float(clipFill(f, *v))

		if prev >= 0 && i-prev > 1 {
			lo := *s.Records[prev].Index(f)
			hi := *v
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				out[j] = Float(clipFill(f, lo+(hi-lo)*frac))
			}
		}
		prev = i
	}

	return out
}

// FillCoverage reports the fraction of grid days that carry a value
// for the index after interpolation.
func (s *Series) FillCoverage(f IndexField) float64 {
	if len(s.Records) == 0 {
		return 0
	}
	filled := s.FillIndex(f)
	n := 0
	for _, v := range filled {
		if v != nil {
			n++
		}
	}
	return float64(n) / float64(len(filled))
}

func clipFill(f IndexField, v float64) float64 {
	if f != FieldNDVI {
		return v
	}
	if v < ndviFillMin {
		return ndviFillMin
	}
	if v > ndviFillMax {
		return ndviFillMax
	}
	return v
}
