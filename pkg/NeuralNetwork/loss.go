package NeuralNetwork

import "math"

// BCE is the mean binary cross-entropy of probabilities yPred against 0/1
// targets, with its gradient w.r.t. each prediction.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		p := math.Min(math.Max(yPred[i], 1e-12), 1-1e-12)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return s / float64(n), grad
}

// LogLoss is the cross-entropy of raw score z (log-odds) for a 0/1 target,
// computed from z directly so saturated scores stay finite.
func LogLoss(z, y float64) float64 {
	if y > 0.5 {
		return -LogSigmoid(z)
	}
	return -LogSigmoid(-z)
}
