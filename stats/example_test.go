package stats_test

import (
	"fmt"

	"github.com/eteq/saga-salt/stats"
)

func ExampleDescribe() {
	s := stats.Describe([]float64{1, 2, 3, 4})
	fmt.Printf("mean=%.1f median=%.1f max=%.0f@%d\n", s.Mean, s.Median, s.Max, s.MaxPos)

	// Output:
	// mean=2.5 median=2.5 max=4@3
}
