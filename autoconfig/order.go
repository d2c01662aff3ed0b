package autoconfig

import (
	"github.com/kbukum/multimongo/errors"
)

// Order sorts configurations so every After/Before constraint holds. Among
// configurations that are free to go next, registration order wins.
func Order(configs []*Configuration) ([]*Configuration, error) {
	index := make(map[string]int, len(configs))
	for i, c := range configs {
		index[c.Name] = i
	}

	successors := make([][]int, len(configs))
	indegree := make([]int, len(configs))
	edge := func(from, to int) {
		successors[from] = append(successors[from], to)
		indegree[to]++
	}
	for i, c := range configs {
		for _, name := range c.After {
			if j, ok := index[name]; ok {
				edge(j, i)
			}
		}
		for _, name := range c.Before {
			if j, ok := index[name]; ok {
				edge(i, j)
			}
		}
	}

	done := make([]bool, len(configs))
	ordered := make([]*Configuration, 0, len(configs))
	for len(ordered) < len(configs) {
		next := -1
		for i := range configs {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, c := range configs {
				if !done[i] {
					stuck = append(stuck, c.Name)
				}
			}
			return nil, errors.OrderingCycle(stuck)
		}
		done[next] = true
		ordered = append(ordered, configs[next])
		for _, s := range successors[next] {
			indegree[s]--
		}
	}
	return ordered, nil
}
