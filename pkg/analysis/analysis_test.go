package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakaka820/Titanic/pkg/data"
)

const csvHeader = "PassengerId,HomePlanet,CryoSleep,Cabin,Destination,Age,VIP,RoomService,FoodCourt,ShoppingMall,Spa,VRDeck,Name,Transported\n"

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvHeader+strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

// syntheticRows builds n passengers where cryosleep and zero spending drive
// the label, roughly like the real data.
func syntheticRows(n int, seed int64) []string {
	rnd := rand.New(rand.NewSource(seed))
	planets := []string{"Earth", "Europa", "Mars"}
	dests := []string{"TRAPPIST-1e", "55 Cancri e", "PSO J318.5-22"}
	decks := []string{"A", "B", "C", "F", "G"}
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		cryo := rnd.Float64() < 0.35
		spend := 0.0
		if !cryo {
			spend = float64(rnd.Intn(3000))
		}
		transported := cryo || (spend < 500 && rnd.Float64() < 0.6)
		age := fmt.Sprintf("%d", 1+rnd.Intn(70))
		if rnd.Float64() < 0.05 {
			age = ""
		}
		planet := planets[rnd.Intn(len(planets))]
		if rnd.Float64() < 0.05 {
			planet = ""
		}
		side := "P"
		if rnd.Intn(2) == 1 {
			side = "S"
		}
		rows = append(rows, fmt.Sprintf("%04d_%02d,%s,%s,%s/%d/%s,%s,%s,%s,%g,0,,0,0,Name %d,%s",
			i/2+1, i%2+1, planet, data.FormatBool(cryo), decks[rnd.Intn(len(decks))], i, side,
			dests[rnd.Intn(len(dests))], age, data.FormatBool(rnd.Float64() < 0.03),
			spend, i, data.FormatBool(transported)))
	}
	return rows
}

var modelOrder = []string{"Logistic Regression", "Random Forest", "Gradient Boosting", "SVM"}

func TestRunFourRowScenario(t *testing.T) {
	path := writeCSV(t,
		"0001_01,Europa,False,B/0/P,TRAPPIST-1e,39,False,0,0,0,0,0,Maham Ofracculy,False",
		"0002_01,Earth,False,F/0/S,TRAPPIST-1e,,False,109,9,25,549,44,Juanna Vines,True",
		"0003_01,,False,A/0/S,TRAPPIST-1e,58,True,43,3576,0,6715,49,Altark Susent,False",
		"0003_02,Europa,False,A/0/S,TRAPPIST-1e,33,False,0,1283,371,3329,193,Solam Susent,True",
	)

	res, err := NewAnalyzer(DefaultOptions(), nil, nil).RunFile(context.Background(), path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(&buf))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc, 3)
	for _, k := range []string{"importances", "metrics", "suggestedFeatures"} {
		assert.Contains(t, doc, k)
	}

	var metrics []map[string]interface{}
	require.NoError(t, json.Unmarshal(doc["metrics"], &metrics))
	require.Len(t, metrics, 4)
	for i, m := range metrics {
		assert.Equal(t, modelOrder[i], m["model"])
		assert.Contains(t, m, "accuracy")
		assert.Contains(t, m, "cv_score")
	}
	assert.Len(t, res.SuggestedFeatures, 5)
}

func TestRunProperties(t *testing.T) {
	path := writeCSV(t, syntheticRows(120, 1)...)

	rec := &recorder{}
	res, err := NewAnalyzer(DefaultOptions(), nil, rec).RunFile(context.Background(), path)
	require.NoError(t, err)

	total := 0.0
	for i, imp := range res.Importances {
		total += imp.Importance
		if i > 0 {
			assert.LessOrEqual(t, imp.Importance, res.Importances[i-1].Importance)
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	require.Len(t, res.SuggestedFeatures, 5)
	for i, f := range res.SuggestedFeatures {
		assert.Equal(t, res.Importances[i].Feature, f)
	}

	require.Len(t, res.Metrics, 4)
	for i, m := range res.Metrics {
		assert.Equal(t, modelOrder[i], m.Model)
		assert.GreaterOrEqual(t, m.Accuracy, 0.0)
		assert.LessOrEqual(t, m.Accuracy, 1.0)
		assert.GreaterOrEqual(t, m.CVScore, 0.0)
		assert.LessOrEqual(t, m.CVScore, 1.0)
	}
	assert.Len(t, rec.metrics, 4)
	assert.Equal(t, 1, rec.runs)
}

func TestRankFeaturesDeterministic(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), nil, nil)
	ps, err := data.LoadPassengers(writeCSV(t, syntheticRows(60, 2)...))
	require.NoError(t, err)
	require.NoError(t, a.Prepare(ps))
	ds, err := a.Encode(ps)
	require.NoError(t, err)

	first, err := RankFeatures(ds, 50, 42)
	require.NoError(t, err)
	second, err := RankFeatures(ds, 50, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, ds.NumFeatures())
}

func TestRunErrors(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), nil, nil)

	_, err := a.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = a.Run(context.Background(), []data.Passenger{{PassengerID: "1"}})
	assert.ErrorIs(t, err, ErrTooFewRows)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("PassengerId,Age\n1,2\n2,3\n"), 0o644))
	_, err = a.RunFile(context.Background(), path)
	assert.ErrorIs(t, err, data.ErrMissingColumn)
}

func TestNewResultFewFeatures(t *testing.T) {
	res := NewResult([]Importance{{"a", 0.7}, {"b", 0.3}}, nil, 5)
	assert.Equal(t, []string{"a", "b"}, res.SuggestedFeatures)

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(&buf))
	assert.JSONEq(t,
		`{"importances":[{"feature":"a","importance":0.7},{"feature":"b","importance":0.3}],"metrics":[],"suggestedFeatures":["a","b"]}`,
		buf.String())
}

func TestSummarize(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), nil, nil)
	summary, err := a.Explore(writeCSV(t,
		"0001_01,Europa,False,B/0/P,TRAPPIST-1e,39,False,0,0,0,0,0,A,False",
		"0002_01,Earth,True,F/0/S,TRAPPIST-1e,,False,0,0,0,0,0,B,True",
		"0002_02,Earth,True,F/1/S,55 Cancri e,5,False,0,0,0,0,0,C,True",
		"0003_01,Mars,False,,TRAPPIST-1e,31,True,1500,0,0,0,0,D,False",
	))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalPassengers)
	assert.Equal(t, 2, summary.TransportedCount)
	assert.Equal(t, 0.5, summary.TransportedRate)

	names := make([]string, len(summary.Features))
	byName := map[string]FeatureStats{}
	for i, f := range summary.Features {
		names[i] = f.Feature
		byName[f.Feature] = f
	}
	assert.Equal(t, []string{"CryoSleep", "HomePlanet", "Destination", "VIP", "Age",
		"GroupSize", "CabinDeck", "CabinSide", "SpendingFlag", "TotalSpent"}, names)

	cryo := byName["CryoSleep"].Data
	require.Len(t, cryo, 2)
	assert.Equal(t, LabelStats{Label: "False", Transported: 0, NotTransported: 2, Total: 2, Rate: 0}, cryo[0])
	assert.Equal(t, LabelStats{Label: "True", Transported: 2, NotTransported: 0, Total: 2, Rate: 1}, cryo[1])

	// missing age imputes to the median 31
	age := byName["Age"].Data
	require.Len(t, age, 2)
	assert.Equal(t, "0-10", age[0].Label)
	assert.Equal(t, "30-40", age[1].Label)
	assert.Equal(t, 3, age[1].Total)
	assert.Equal(t, 0.33, age[1].Rate)

	groups := byName["GroupSize"].Data
	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Label)
	assert.Equal(t, "2", groups[1].Label)

	spend := byName["TotalSpent"].Data
	require.Len(t, spend, 2)
	assert.Equal(t, "0-1000", spend[0].Label)
	assert.Equal(t, "1000-2000", spend[1].Label)

	deck := byName["CabinDeck"].Data
	assert.Equal(t, "Unknown", deck[len(deck)-1].Label)
}

func TestCompareCancelled(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), nil, nil)
	ps, err := data.LoadPassengers(writeCSV(t, syntheticRows(20, 3)...))
	require.NoError(t, err)
	require.NoError(t, a.Prepare(ps))
	ds, err := a.Encode(ps)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmp := &Comparator{Candidates: DefaultCandidates(), Folds: 5, TestRatio: 0.2, SplitSeed: 42}
	_, err = cmp.Compare(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

type recorder struct {
	runs    int
	metrics []Metric
}

func (r *recorder) ObserveRun(time.Duration) { r.runs++ }
func (r *recorder) ObserveMetric(m Metric)   { r.metrics = append(r.metrics, m) }
