package analysis

import (
	"fmt"
	"sort"

	"github.com/kakaka820/Titanic/pkg/core"
	"github.com/kakaka820/Titanic/pkg/model"
)

// RankFeatures fits a seeded random forest on the whole dataset and returns
// every feature's importance, highest first. Equal scores keep column order.
func RankFeatures(ds *core.Dataset, trees int, seed int64) ([]Importance, error) {
	rf := model.NewRandomForest(model.WithNEstimators(trees), model.WithForestSeed(seed))
	if err := rf.Fit(ds.X, ds.Y); err != nil {
		return nil, fmt.Errorf("analysis: ranking features: %w", err)
	}
	scores := rf.FeatureImportances()
	out := make([]Importance, len(ds.Features))
	for j, f := range ds.Features {
		out[j] = Importance{Feature: f, Importance: scores[j]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })
	return out, nil
}
