package transaction

import "bpkg/pkg"

// SortDeps returns the queued records in execution order: every package
// comes after the packages it depends on within the transaction. Insertion
// order (depth-first pre-order from the resolver) is the tie-breaker, so
// the result is deterministic.
func SortDeps(t *Transaction) ([]*pkg.Record, error) {
	recs := t.UnsortedDeps
	if len(recs) <= 1 {
		return append([]*pkg.Record(nil), recs...), nil
	}

	// Map pkgnames and provided virtual names to their queue index.
	byName := make(map[string]int, len(recs))
	for i, rec := range recs {
		byName[rec.Pkgname] = i
		for _, provides := range rec.Provides {
			if vname, err := pkg.PkgverName(provides); err == nil {
				if _, taken := byName[vname]; !taken {
					byName[vname] = i
				}
			}
		}
	}

	// Kahn's algorithm over intra-transaction run_depends edges.
	dependents := make([][]int, len(recs))
	inDegree := make([]int, len(recs))
	for i, rec := range recs {
		for _, pattern := range rec.RunDepends {
			name, err := pkg.PatternName(pattern)
			if err != nil {
				continue
			}
			j, ok := byName[name]
			if !ok || j == i {
				continue
			}
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	queue := make([]int, 0, len(recs))
	for i := range recs {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	result := make([]*pkg.Record, 0, len(recs))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		result = append(result, recs[i])

		for _, j := range dependents[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(result) != len(recs) {
		for i := range recs {
			if inDegree[i] > 0 {
				return result, &CycleError{Pkgname: recs[i].Pkgname}
			}
		}
	}
	return result, nil
}
