package finance

import (
	"errors"
	"testing"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

func TestClassifyRiskBands(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	cases := []struct {
		name       string
		stability  int
		horizon    float64
		loss       float64
		wantBand   int
		wantLabel  string
		wantEquity float64
	}{
		{"lowest answers", 1, 0, 0, 1, domain.BandConservative, 0.20},
		{"score exactly 0.30", 5, 0, 0, 2, domain.BandModerateConservative, 0.35},
		{"mid answers", 1, 10, 0.5, 3, domain.BandModerate, 0.50},
		{"score exactly 0.70", 5, 10, 0.25, 4, domain.BandAggressive, 0.70},
		{"highest answers", 5, 10, 1, 4, domain.BandAggressive, 0.70},
	}
	for _, tc := range cases {
		assessment, err := e.ClassifyRisk(tc.stability, tc.horizon, tc.loss)
		if err != nil {
			t.Fatalf("%s: ClassifyRisk failed: %v", tc.name, err)
		}
		if assessment.Band != tc.wantBand {
			t.Errorf("%s: Expected band %d, got %d", tc.name, tc.wantBand, assessment.Band)
		}
		if assessment.BandLabel != tc.wantLabel {
			t.Errorf("%s: Expected label %q, got %q", tc.name, tc.wantLabel, assessment.BandLabel)
		}
		if assessment.MaxEquityShare != tc.wantEquity {
			t.Errorf("%s: Expected equity share %g, got %g", tc.name, tc.wantEquity, assessment.MaxEquityShare)
		}
		if assessment.Status != domain.StatusSuccess {
			t.Errorf("%s: Expected success status, got %s", tc.name, assessment.Status)
		}
	}
}

func TestClassifyRiskHorizonContributionCaps(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	atCap, err := e.ClassifyRisk(3, 10, 0.5)
	if err != nil {
		t.Fatalf("ClassifyRisk failed: %v", err)
	}
	beyondCap, err := e.ClassifyRisk(3, 50, 0.5)
	if err != nil {
		t.Fatalf("ClassifyRisk failed: %v", err)
	}
	if atCap.Score != beyondCap.Score {
		t.Errorf("Expected identical scores beyond the 10-year cap, got %g and %g", atCap.Score, beyondCap.Score)
	}
}

func TestClassifyRiskMonotonicity(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	stabilities := []int{1, 2, 3, 4, 5}
	horizons := []float64{0, 2, 5, 8, 10, 20}
	losses := []float64{0, 0.25, 0.5, 0.75, 1}

	band := func(stability int, horizon, loss float64) int {
		a, err := e.ClassifyRisk(stability, horizon, loss)
		if err != nil {
			t.Fatalf("ClassifyRisk(%d, %g, %g) failed: %v", stability, horizon, loss, err)
		}
		return a.Band
	}

	for _, h := range horizons {
		for _, l := range losses {
			for i := 1; i < len(stabilities); i++ {
				if band(stabilities[i], h, l) < band(stabilities[i-1], h, l) {
					t.Errorf("Band decreased raising stability %d->%d at horizon %g, loss %g", stabilities[i-1], stabilities[i], h, l)
				}
			}
		}
	}
	for _, s := range stabilities {
		for _, l := range losses {
			for i := 1; i < len(horizons); i++ {
				if band(s, horizons[i], l) < band(s, horizons[i-1], l) {
					t.Errorf("Band decreased raising horizon %g->%g at stability %d, loss %g", horizons[i-1], horizons[i], s, l)
				}
			}
		}
	}
	for _, s := range stabilities {
		for _, h := range horizons {
			for i := 1; i < len(losses); i++ {
				if band(s, h, losses[i]) < band(s, h, losses[i-1]) {
					t.Errorf("Band decreased raising loss reaction %g->%g at stability %d, horizon %g", losses[i-1], losses[i], s, h)
				}
			}
		}
	}
}

func TestClassifyRiskRejectsBadInputs(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	cases := []struct {
		name      string
		stability int
		horizon   float64
		loss      float64
	}{
		{"stability below range", 0, 5, 0.5},
		{"stability above range", 6, 5, 0.5},
		{"negative horizon", 3, -1, 0.5},
		{"loss below range", 3, 5, -0.1},
		{"loss above range", 3, 5, 1.1},
	}
	for _, tc := range cases {
		if _, err := e.ClassifyRisk(tc.stability, tc.horizon, tc.loss); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: Expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}
