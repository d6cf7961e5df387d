package features

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrEmptyDataset is returned when a split leaves no training or no test rows.
var ErrEmptyDataset = errors.New("dataset too small to split")

// Classifier is any tabular learner. Fit must not keep references to X.
type Classifier interface {
	Fit(X [][]float64, y []int) (Predictor, error)
}

// Predictor is a trained model.
type Predictor interface {
	Predict(X [][]float64) []int
	// Report renders an evaluation of the model against labeled rows.
	Report(X [][]float64, y []int) string
}

// SplitOptions controls the train/test split.
type SplitOptions struct {
	TestFraction float64
	Seed         uint64
}

func DefaultSplit() SplitOptions { return SplitOptions{TestFraction: 0.2, Seed: 42} }

// TrainResult is what a training run produced.
type TrainResult struct {
	Model     Predictor
	TrainSize int
	TestSize  int
	Accuracy  float64
	Report    string
}

// Split shuffles row indices with a seeded source and cuts off the test
// rows. The test share is rounded up.
func Split(d Dataset, opts SplitOptions) (train, test Dataset, err error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("test fraction %v must be in (0, 1)", opts.TestFraction)
	}
	n := d.Len()
	nTest := int(math.Ceil(opts.TestFraction * float64(n)))
	if n < 2 || nTest >= n {
		return Dataset{}, Dataset{}, fmt.Errorf("%d rows: %w", n, ErrEmptyDataset)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	idx := rng.Perm(n)
	for k, i := range idx {
		dst := &train
		if k < nTest {
			dst = &test
		}
		dst.X = append(dst.X, d.X[i])
		dst.Y = append(dst.Y, d.Y[i])
	}
	return train, test, nil
}

// Train splits d, fits clf on the training rows and evaluates on the rest.
func Train(d Dataset, clf Classifier, opts SplitOptions) (TrainResult, error) {
	train, test, err := Split(d, opts)
	if err != nil {
		return TrainResult{}, err
	}
	model, err := clf.Fit(train.X, train.Y)
	if err != nil {
		return TrainResult{}, fmt.Errorf("fitting classifier: %w", err)
	}
	pred := model.Predict(test.X)
	var hits int
	for i, p := range pred {
		if p == test.Y[i] {
			hits++
		}
	}
	return TrainResult{
		Model:     model,
		TrainSize: train.Len(),
		TestSize:  test.Len(),
		Accuracy:  float64(hits) / float64(test.Len()),
		Report:    model.Report(test.X, test.Y),
	}, nil
}
