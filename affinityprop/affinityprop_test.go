package affinityprop

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/mdaiter/domsetLibrary/internal/parallel"
)

func TestRunSymmetricPairConverges(t *testing.T) {
	prev := parallel.Factor
	parallel.Factor = 1
	defer func() { parallel.Factor = prev }()

	s := mat.NewDense(2, 2, []float64{
		0, 0.8,
		0.8, 0,
	})
	result := Run(s, Config{NumIter: 50, Lambda: 0.5})

	n, _ := result.R.Dims()
	test.That(t, n, test.ShouldEqual, 2)

	e00 := result.R.At(0, 0) + result.A.At(0, 0)
	e01 := result.R.At(0, 1) + result.A.At(0, 1)
	e10 := result.R.At(1, 0) + result.A.At(1, 0)
	e11 := result.R.At(1, 1) + result.A.At(1, 1)

	// A symmetric similarity matrix should produce a symmetric E matrix.
	test.That(t, e00, test.ShouldAlmostEqual, e11, 1e-9)
	test.That(t, e01, test.ShouldAlmostEqual, e10, 1e-9)
}

func TestRunDeterministicUnderSequentialMode(t *testing.T) {
	prev := parallel.Factor
	parallel.Factor = 1
	defer func() { parallel.Factor = prev }()

	s := mat.NewDense(3, 3, []float64{
		0, 0.5, 0.2,
		0.5, 0, 0.6,
		0.2, 0.6, 0,
	})
	r1 := Run(s, Config{NumIter: 10, Lambda: 0.6})
	r2 := Run(s, Config{NumIter: 10, Lambda: 0.6})

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test.That(t, r1.R.At(i, j), test.ShouldEqual, r2.R.At(i, j))
			test.That(t, r1.A.At(i, j), test.ShouldEqual, r2.A.At(i, j))
		}
	}
}
