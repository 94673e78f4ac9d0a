package tui

const maxTreeDepth = 10

// assignDepths sets each task's indentation to the length of its longest
// dependency chain, capped at maxTreeDepth. Unknown dependencies and cycles
// contribute nothing.
func assignDepths(tasks []*TaskNode, dependencies map[string][]string, taskMap map[string]*TaskNode) {
	memo := make(map[string]int, len(tasks))
	visiting := make(map[string]bool)

	var depth func(id string) int
	depth = func(id string) int {
		if d, ok := memo[id]; ok {
			return d
		}
		if visiting[id] {
			return 0
		}
		visiting[id] = true
		defer delete(visiting, id)

		d := 0
		for _, dep := range dependencies[id] {
			if _, ok := taskMap[dep]; !ok {
				continue
			}
			d = max(d, depth(dep)+1)
		}
		d = min(d, maxTreeDepth)
		memo[id] = d
		return d
	}

	for _, t := range tasks {
		t.Depth = depth(t.ID)
		t.Deps = dependencies[t.ID]
	}
}
