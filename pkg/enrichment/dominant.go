package enrichment

// DefaultNeutralThreshold is the neutral score above which neutral wins outright.
const DefaultNeutralThreshold = 0.70

// DominantEmotion picks the representative emotion of a score mapping.
// Neutral is chosen only when its score exceeds neutralThreshold; otherwise
// the highest non-neutral label wins, ties going to the earlier label in
// Labels. It returns nil for a nil mapping.
func DominantEmotion(emotions map[Label]float64, neutralThreshold float64) *Dominant {
	if emotions == nil {
		return nil
	}
	if n := emotions[Neutral]; n > neutralThreshold {
		return &Dominant{Label: Neutral, Score: n}
	}

	var best *Dominant
	for _, label := range Labels {
		if label == Neutral {
			continue
		}
		score, ok := emotions[label]
		if !ok {
			continue
		}
		if best == nil || score > best.Score {
			best = &Dominant{Label: label, Score: score}
		}
	}
	if best == nil {
		return &Dominant{Label: Neutral, Score: emotions[Neutral]}
	}
	return best
}
