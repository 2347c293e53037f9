package graph

import (
	"math"
	"sort"
)

// Pair is an unordered pair of concept ids.
type Pair struct {
	A, B     string
	Distance int // -1 represents infinite (unreachable)
}

// FindDistantPairs returns up to limit unordered pairs from the undirected
// projection of the graph, sorted by decreasing shortest-path length.
// Unreachable pairs rank first (infinite distance); only pairs with
// distance >= 3 are included.
func (g *Graph) FindDistantPairs(limit int) []Pair {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.sortedIDsLocked()
	adjacency := g.undirectedAdjacencyLocked()

	var pairs []Pair
	for i := 0; i < len(ids); i++ {
		dist := bfsDistances(adjacency, ids[i])
		for j := i + 1; j < len(ids); j++ {
			d, reachable := dist[ids[j]]
			if !reachable {
				pairs = append(pairs, Pair{ids[i], ids[j], -1})
				continue
			}
			if d >= 3 {
				pairs = append(pairs, Pair{ids[i], ids[j], d})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		di, dj := pairs[i].Distance, pairs[j].Distance
		if di == -1 {
			di = math.MaxInt32
		}
		if dj == -1 {
			dj = math.MaxInt32
		}
		return di > dj
	})

	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func bfsDistances(adjacency map[string][]string, start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

func (g *Graph) sortedIDsLocked() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Graph) undirectedAdjacencyLocked() map[string][]string {
	adjacency := make(map[string][]string, len(g.nodes))
	seen := make(map[[2]string]bool)
	addEdge := func(a, b string) {
		key := [2]string{a, b}
		if seen[key] {
			return
		}
		seen[key] = true
		adjacency[a] = append(adjacency[a], b)
	}
	for source, byTarget := range g.edgesOut {
		for target := range byTarget {
			addEdge(source, target)
			addEdge(target, source)
		}
	}
	return adjacency
}

// FindClusters returns the connected components of the undirected
// projection. No third-party community-detection library was available to
// wire in (see design notes), so this always takes the documented
// connected-components fallback path.
func (g *Graph) FindClusters() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adjacency := g.undirectedAdjacencyLocked()
	visited := make(map[string]bool)
	var clusters [][]string

	for _, id := range g.sortedIDsLocked() {
		if visited[id] {
			continue
		}
		var component []string
		queue := []string{id}
		visited[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, next := range adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(component)
		clusters = append(clusters, component)
	}
	return clusters
}
