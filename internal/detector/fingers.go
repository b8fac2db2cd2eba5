package detector

// FingerTips lists the tips checked by CountExtendedFingers: index, middle,
// ring and pinky. The thumb is not counted.
var FingerTips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// CountExtendedFingers returns how many of the four non-thumb fingers are
// raised. A finger is raised when its tip sits higher on screen (smaller Y)
// than the joint two positions below it in the chain.
//
// No orientation correction is applied: a sideways or upside-down hand is
// miscounted.
func CountExtendedFingers(h *HandLandmarks) int {
	count := 0
	for _, tip := range FingerTips {
		if h.Points[tip].Y < h.Points[tip-2].Y {
			count++
		}
	}
	return count
}
