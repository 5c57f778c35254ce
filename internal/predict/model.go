package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrNoSamples        = errors.New("no training samples")
	ErrFeatureMismatch  = errors.New("feature count does not match model")
	ErrInvalidTestRatio = errors.New("test ratio must be in (0,1)")
)

// TrainOptions control gradient descent. Zero values take the defaults.
type TrainOptions struct {
	LearningRate float64 // 0.1
	Epochs       int     // 500
	L2           float64 // 0.001, negative disables
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.LearningRate <= 0 {
		o.LearningRate = 0.1
	}
	if o.Epochs <= 0 {
		o.Epochs = 500
	}
	if o.L2 < 0 {
		o.L2 = 0
	} else if o.L2 == 0 {
		o.L2 = 0.001
	}
	return o
}

// Metrics summarise a model on a held-out set.
type Metrics struct {
	N        int     `json:"n"`
	Accuracy float64 `json:"accuracy"`
	LogLoss  float64 `json:"log_loss"`
	Brier    float64 `json:"brier"`
}

// LogisticModel predicts the radiant win probability from Features.Vector.
type LogisticModel struct {
	Features  []string       `json:"features"`
	Weights   []float64      `json:"weights"`
	Bias      float64        `json:"bias"`
	TrainedAt time.Time      `json:"trained_at"`
	TrainN    int            `json:"train_n"`
	Test      *Metrics       `json:"test,omitempty"`
	Duration  *DurationModel `json:"duration,omitempty"`
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Train fits a logistic regression with batch gradient descent.
func Train(samples []Sample, opts TrainOptions) (*LogisticModel, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	opts = opts.withDefaults()
	dim := len(samples[0].X)
	for i, s := range samples {
		if len(s.X) != dim {
			return nil, fmt.Errorf("sample %d: %w", i, ErrFeatureMismatch)
		}
	}

	m := &LogisticModel{Weights: make([]float64, dim), TrainN: len(samples)}
	if dim == len(FeatureNames) {
		m.Features = append([]string(nil), FeatureNames...)
	}
	n := float64(len(samples))
	grad := make([]float64, dim)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for _, s := range samples {
			diff := m.raw(s.X) - s.label()
			for j, x := range s.X {
				grad[j] += diff * x
			}
			gradBias += diff
		}
		for j := range m.Weights {
			m.Weights[j] -= opts.LearningRate * (grad[j]/n + opts.L2*m.Weights[j])
		}
		m.Bias -= opts.LearningRate * gradBias / n
	}
	m.TrainedAt = time.Now().UTC()
	return m, nil
}

func (m *LogisticModel) raw(x []float64) float64 {
	z := m.Bias
	for j, w := range m.Weights {
		z += w * x[j]
	}
	return sigmoid(z)
}

// Predict returns the radiant win probability.
func (m *LogisticModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(x), len(m.Weights))
	}
	return m.raw(x), nil
}

// Save writes the model as indented JSON, creating the directory.
func (m *LogisticModel) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model %s has no weights", path)
	}
	return &m, nil
}

// TrainTestSplit shuffles with a fixed seed and returns (train, test).
// The test set gets at least one sample when there are two or more.
func TrainTestSplit(samples []Sample, testRatio float64, seed int64) ([]Sample, []Sample, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, ErrInvalidTestRatio
	}
	if len(samples) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2, got %d", ErrNoSamples, len(samples))
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(samples))
	nTest := int(math.Round(float64(len(samples)) * testRatio))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= len(samples) {
		nTest = len(samples) - 1
	}
	test := make([]Sample, 0, nTest)
	train := make([]Sample, 0, len(samples)-nTest)
	for i, p := range perm {
		if i < nTest {
			test = append(test, samples[p])
		} else {
			train = append(train, samples[p])
		}
	}
	return train, test, nil
}

// Evaluate scores the model on samples. Probabilities are clipped for the log loss.
func Evaluate(m *LogisticModel, samples []Sample) (Metrics, error) {
	met := Metrics{N: len(samples)}
	if len(samples) == 0 {
		return met, ErrNoSamples
	}
	const eps = 1e-15
	correct := 0
	for _, s := range samples {
		p, err := m.Predict(s.X)
		if err != nil {
			return met, err
		}
		y := s.label()
		if (p >= 0.5) == s.RadiantWin {
			correct++
		}
		pc := math.Min(math.Max(p, eps), 1-eps)
		met.LogLoss -= y*math.Log(pc) + (1-y)*math.Log(1-pc)
		met.Brier += (p - y) * (p - y)
	}
	n := float64(len(samples))
	met.Accuracy = float64(correct) / n
	met.LogLoss /= n
	met.Brier /= n
	return met, nil
}
