package tree

import (
	"context"
	"math/rand/v2"
)

// Populate adds one top-level node, then count more nodes, each under a
// node picked uniformly from those created so far. It stops at the first
// failure and returns the nodes created up to that point.
func Populate(ctx context.Context, s *Store, count int, rng *rand.Rand) ([]*Node, error) {
	first, err := s.AddNode(ctx, RootRef())
	if err != nil {
		return nil, err
	}
	nodes := []*Node{first}
	for ; count > 0; count-- {
		parent := nodes[rng.IntN(len(nodes))]
		n, err := s.AddNode(ctx, NodeRef(parent))
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
