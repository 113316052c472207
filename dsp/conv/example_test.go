package conv_test

import (
	"fmt"

	"github.com/eteq/saga-salt/dsp/conv"
)

func ExampleBoxcar() {
	flux := []float64{0, 0, 3, 0, 0}
	smoothed, _ := conv.Boxcar(flux, 3)
	fmt.Println(smoothed)

	// Output:
	// [0 3 3 3 0]
}

func ExampleFindPeak() {
	scores := []float64{0.1, 0.7, 0.3, 0.7}
	idx, v := conv.FindPeak(scores)
	fmt.Printf("peak %.1f at %d\n", v, idx)

	// Output:
	// peak 0.7 at 1
}
