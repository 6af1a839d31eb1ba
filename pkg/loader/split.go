package loader

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TrainTestSplit shuffles 0..n-1 with rnd and cuts off ceil(n*testRatio)
// indices for the test set. Both sides get at least one row when n >= 2.
func TrainTestSplit(n int, testRatio float64, rnd *rand.Rand) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("loader: need at least 2 rows to split, got %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("loader: test ratio %v outside (0,1)", testRatio)
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	nTest = max(1, min(nTest, n-1))

	indices := rnd.Perm(n)
	test = append([]int(nil), indices[:nTest]...)
	train = append([]int(nil), indices[nTest:]...)
	return train, test, nil
}

// StratifiedKFold assigns every row to one of k test folds so that each fold
// keeps roughly the overall class proportions. Rows are not shuffled: within a
// class, earlier rows land in earlier folds.
func StratifiedKFold(y []int, k int) ([][]int, error) {
	n := len(y)
	if k < 2 {
		return nil, fmt.Errorf("loader: need at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("loader: %d folds for %d rows", k, n)
	}

	classes := uniqueSorted(y)
	enc := make(map[int]int, len(classes))
	for i, c := range classes {
		enc[c] = i
	}

	// Deal the label-sorted rows round-robin to get per-fold class quotas.
	order := make([]int, n)
	for i, v := range y {
		order[i] = enc[v]
	}
	sort.Ints(order)
	alloc := make([][]int, k)
	for f := range alloc {
		alloc[f] = make([]int, len(classes))
		for i := f; i < n; i += k {
			alloc[f][order[i]]++
		}
	}

	folds := make([][]int, k)
	next := make([]int, len(classes)) // current fold per class
	used := make([]int, len(classes)) // quota used in that fold
	for i, v := range y {
		c := enc[v]
		for used[c] >= alloc[next[c]][c] {
			next[c]++
			used[c] = 0
		}
		folds[next[c]] = append(folds[next[c]], i)
		used[c]++
	}
	return folds, nil
}

// TrainIndices returns every row index not in folds[test], ascending.
func TrainIndices(folds [][]int, test int) []int {
	var out []int
	for f, idx := range folds {
		if f != test {
			out = append(out, idx...)
		}
	}
	sort.Ints(out)
	return out
}

func uniqueSorted(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
