package kalman

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algoparity/parity-go/internal/domain"
)

// With zero covariance, zero process noise, and R=1, the gain collapses to
// [0,0] and the update is pure prediction. These cases hold exactly in
// floating point.
func TestStep_ZeroCovariancePureInertia(t *testing.T) {
	t.Parallel()

	out := Step(Inputs{
		State:            [2]float64{1, 0},
		Measurement:      1,
		MeasurementNoise: 1,
	})
	assert.Equal(t, [2]float64{1, 0}, out.State)
	assert.Equal(t, [4]float64{0, 0, 0, 0}, out.Covariance)

	out = Step(Inputs{
		State:            [2]float64{2, 1},
		Measurement:      3,
		MeasurementNoise: 1,
	})
	assert.Equal(t, [2]float64{3, 1}, out.State)
	assert.Equal(t, [4]float64{0, 0, 0, 0}, out.Covariance)
}

func TestStep_IdentityCovariance(t *testing.T) {
	t.Parallel()

	// P = I, Q = 0, R = 1: P_pred = [[2,1],[1,1]], S = 3, K = [2/3, 1/3].
	out := Step(Inputs{
		State:            [2]float64{0, 0},
		Measurement:      0,
		Covariance:       [4]float64{1, 0, 0, 1},
		MeasurementNoise: 1,
	})

	assert.Equal(t, [2]float64{0, 0}, out.State)
	assert.InDelta(t, 2.0/3.0, out.Covariance[0], 1e-15)
	assert.InDelta(t, 1.0/3.0, out.Covariance[1], 1e-15)
	assert.InDelta(t, 1.0/3.0, out.Covariance[2], 1e-15)
	assert.InDelta(t, 2.0/3.0, out.Covariance[3], 1e-15)
}

func TestStep_JosephFormSymmetry(t *testing.T) {
	t.Parallel()

	out := Step(Inputs{
		State:            [2]float64{1.5, -0.3},
		Measurement:      2.1,
		Covariance:       [4]float64{0.5, 0.1, 0.1, 0.2},
		MeasurementNoise: 0.25,
		ProcessNoise:     0.01,
	})

	assert.InDelta(t, out.Covariance[1], out.Covariance[2], 1e-12,
		"Joseph form keeps the covariance symmetric")
	assert.Greater(t, out.Covariance[0], 0.0)
	assert.Greater(t, out.Covariance[3], 0.0)
}

func TestStep_GainPullsTowardMeasurement(t *testing.T) {
	t.Parallel()

	// Large covariance and small R: the estimate should land near the
	// measurement rather than the prediction.
	out := Step(Inputs{
		State:            [2]float64{0, 0},
		Measurement:      10,
		Covariance:       [4]float64{100, 0, 0, 100},
		MeasurementNoise: 0.01,
	})
	assert.InDelta(t, 10, out.State[0], 0.01)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	inputs := map[string]domain.Vector{
		FieldState:            domain.Vectorf(1, 0),
		FieldMeasurement:      domain.Scalarf(1),
		FieldCovariance:       domain.Vectorf(0, 0, 0, 0),
		FieldMeasurementNoise: domain.Scalarf(1),
		FieldProcessNoise:     domain.Scalarf(0),
	}

	out, err := Evaluate(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, domain.Vectorf(1, 0), out[FieldUpdatedState])
	assert.Equal(t, domain.Vectorf(0, 0, 0, 0), out[FieldUpdatedCovariance])
}

func TestEvaluate_InputValidation(t *testing.T) {
	t.Parallel()

	base := func() map[string]domain.Vector {
		return map[string]domain.Vector{
			FieldState:            domain.Vectorf(1, 0),
			FieldMeasurement:      domain.Scalarf(1),
			FieldCovariance:       domain.Vectorf(0, 0, 0, 0),
			FieldMeasurementNoise: domain.Scalarf(1),
			FieldProcessNoise:     domain.Scalarf(0),
		}
	}

	missing := base()
	delete(missing, FieldMeasurement)
	_, err := Evaluate(context.Background(), missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "measurement")

	badShape := base()
	badShape[FieldState] = domain.Vectorf(1, 0, 0)
	_, err = Evaluate(context.Background(), badShape)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 elements")

	badCov := base()
	badCov[FieldCovariance] = domain.Vectorf(0, 0)
	_, err = Evaluate(context.Background(), badCov)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 elements")
}

func TestReference(t *testing.T) {
	t.Parallel()

	a := Reference()
	assert.Equal(t, "kalman-reference", a.ID())
	assert.Equal(t, domain.RoleReference, a.Role())
}
