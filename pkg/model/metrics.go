package model

// Accuracy is the fraction of positions where yPred matches yTrue.
func Accuracy(yTrue []int, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// Score predicts X with a fitted classifier and returns its accuracy against y.
func Score(c Classifier, X [][]float64, y []int) float64 {
	return Accuracy(y, c.Predict(X))
}
