package plan

import (
	"errors"
	"fmt"
	"slices"
)

var errCycle = errors.New("cycle detected")

// topoSort orders the nodes 0..n-1 so that every node comes after the nodes
// depsFn returns for it. Among ready nodes the smallest index goes first.
//
// On a cycle the nodes that could be ordered are returned with errCycle; the
// rest are the cycle members and whatever depends on them.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	pending := make([]int, n)
	dependents := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			pending[i]++
			dependents[d] = append(dependents[d], i)
		}
	}

	var ready []int

	for i, c := range pending {
		if c == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, j := range dependents[next] {
			if pending[j]--; pending[j] > 0 {
				continue
			}

			at, _ := slices.BinarySearch(ready, j)
			ready = slices.Insert(ready, at, j)
		}
	}

	if len(order) < n {
		return order, errCycle
	}

	return order, nil
}
