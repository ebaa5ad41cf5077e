package effects

import "slices"

// SortWithDependencies orders modifiers that share one layer following rule 613.8.
//
// Modifier A depends on B when B's modification can change a characteristic A's filter
// selects on. A dependent modifier waits until just after everything it depends on has
// applied; independent modifiers apply in timestamp order. Modifiers caught in a
// dependency loop (a strongly connected component) ignore their mutual dependencies and
// apply in timestamp order as a block (rule 613.8b).
//
// The result depends on the exact modifier set and must be recomputed when it changes.
func SortWithDependencies(mods []Modifier) []Modifier {
	ordered := SortByTimestamp(mods)
	n := len(ordered)
	if n < 2 {
		return ordered
	}

	reads := make([]CharacteristicSet, n)
	writes := make([]CharacteristicSet, n)
	for i, m := range ordered {
		reads[i] = FilterDependencies(m.Filter)
		writes[i] = ModificationEffects(m.Modification)
	}

	// dependsOn[a] lists every b that must apply before a, in timestamp order.
	dependsOn := make([][]int, n)
	for a := range ordered {
		if reads[a].Empty() {
			continue
		}
		for b := range ordered {
			if a != b && writes[b].Intersects(reads[a]) {
				dependsOn[a] = append(dependsOn[a], b)
			}
		}
	}

	comp, comps := stronglyConnected(dependsOn)

	// Condense: a component waits for every other component one of its members depends on.
	waitsFor := make([]map[int]struct{}, len(comps))
	unblocks := make([][]int, len(comps))
	for c := range comps {
		waitsFor[c] = make(map[int]struct{})
	}
	for a, deps := range dependsOn {
		for _, b := range deps {
			ca, cb := comp[a], comp[b]
			if ca == cb {
				continue
			}
			if _, seen := waitsFor[ca][cb]; !seen {
				waitsFor[ca][cb] = struct{}{}
				unblocks[cb] = append(unblocks[cb], ca)
			}
		}
	}

	// Kahn's algorithm, always releasing the ready component whose earliest member has
	// the earliest timestamp. Members are indices into the timestamp-sorted slice, so
	// the smallest index is the earliest timestamp.
	pending := make([]int, len(comps))
	for c := range comps {
		pending[c] = len(waitsFor[c])
	}
	done := make([]bool, len(comps))
	out := make([]Modifier, 0, n)
	for emitted := 0; emitted < len(comps); emitted++ {
		next := -1
		for c := range comps {
			if done[c] || pending[c] > 0 {
				continue
			}
			if next < 0 || comps[c][0] < comps[next][0] {
				next = c
			}
		}
		if next < 0 {
			// Unreachable: the condensation is acyclic. Fall back to timestamp order for
			// whatever is left rather than looping.
			for c := range comps {
				if !done[c] {
					for _, i := range comps[c] {
						out = append(out, ordered[i])
					}
				}
			}
			return out
		}
		done[next] = true
		for _, i := range comps[next] {
			out = append(out, ordered[i])
		}
		for _, c := range unblocks[next] {
			pending[c]--
		}
	}
	return out
}

// stronglyConnected runs Tarjan's algorithm over the dependency graph. It returns each
// node's component and the components themselves with members in ascending order.
func stronglyConnected(edges [][]int) ([]int, [][]int) {
	n := len(edges)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack   []int
		comps   [][]int
		counter int
	)

	var visit func(v int)
	visit = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var members []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp[w] = len(comps)
			members = append(members, w)
			if w == v {
				break
			}
		}
		slices.Sort(members)
		comps = append(comps, members)
	}

	for v := 0; v < n; v++ {
		if index[v] < 0 {
			visit(v)
		}
	}
	return comp, comps
}
