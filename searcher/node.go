package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"polecat/game"
	"polecat/policy"
)

// nodeID indexes a node in its tree's arena.
type nodeID int32

const nilNode nodeID = -1

const rootNode nodeID = 0

// node is a tree search node. Parent and children are arena indices.
type node struct {
	position    game.Position
	probability float64 // Prior at creation, never renormalized
	total       float64
	visits      int
	parent      nodeID
	children    []nodeID
}

// tree owns every node of one search. Nodes are never removed.
type tree struct {
	nodes []node
}

func newTree(root game.Position) *tree {
	return &tree{
		nodes: []node{{position: root, probability: 1.0, parent: nilNode}},
	}
}

func (t *tree) size() int {
	return len(t.nodes)
}

func (t *tree) position(id nodeID) game.Position {
	return t.nodes[id].position
}

func (t *tree) hasChildren(id nodeID) bool {
	return len(t.nodes[id].children) > 0
}

// expand adds one child per entry, in order, carrying the entry's probability.
func (t *tree) expand(id nodeID, d policy.Distribution) {
	pos := t.nodes[id].position
	for _, e := range d {
		child := nodeID(len(t.nodes))
		t.nodes = append(t.nodes, node{
			position:    pos.Append(e.Move),
			probability: e.Probability,
			parent:      id,
		})
		t.nodes[id].children = append(t.nodes[id].children, child)
	}
}

func (t *tree) uct(id nodeID) float64 {
	n := &t.nodes[id]
	if n.visits <= 0 || n.parent == nilNode {
		return math.Inf(1)
	}
	return uct(n.probability, n.total, n.visits, t.nodes[n.parent].visits)
}

// highestUCT returns the first child with the greatest UCT.
func (t *tree) highestUCT(id nodeID) nodeID {
	children := t.nodes[id].children
	if len(children) == 0 {
		return nilNode
	}

	best := children[0]
	bestScore := math.Inf(-1)
	for _, child := range children {
		if score := t.uct(child); score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// childDistribution lists the children's moves with their priors.
func (t *tree) childDistribution(id nodeID) policy.Distribution {
	children := t.nodes[id].children
	d := make(policy.Distribution, len(children))
	for i, child := range children {
		d[i] = policy.Entry{Move: t.nodes[child].position.Last(), Probability: t.nodes[child].probability}
	}
	return d
}

// randomChild samples a child by prior with the uniform draw u.
func (t *tree) randomChild(id nodeID, u float64) nodeID {
	i, ok := t.childDistribution(id).Sample(u)
	if !ok {
		return nilNode
	}
	return t.nodes[id].children[i]
}

// selectChild picks by UCT on the engine's turns and by sampling the
// opponent model otherwise.
func (t *tree) selectChild(id nodeID, asWhite bool, rng *rand.Rand) nodeID {
	if t.nodes[id].position.WhiteToMove() == asWhite {
		return t.highestUCT(id)
	}
	return t.randomChild(id, rng.Float64())
}

// descend walks from the root to a leaf.
func (t *tree) descend(asWhite bool, rng *rand.Rand) nodeID {
	id := rootNode
	for t.hasChildren(id) {
		id = t.selectChild(id, asWhite, rng)
	}
	return id
}

func (t *tree) backup(id nodeID, value float64) {
	for id != nilNode {
		n := &t.nodes[id]
		n.visits++
		n.total += value
		id = n.parent
	}
}

// bestChild returns the root child with the highest mean value among
// visited children, or nilNode if none was visited.
func (t *tree) bestChild() nodeID {
	best := nilNode
	bestValue := math.Inf(-1)
	for _, child := range t.nodes[rootNode].children {
		n := &t.nodes[child]
		if n.visits == 0 {
			continue
		}
		if value := n.total / float64(n.visits); value > bestValue {
			bestValue = value
			best = child
		}
	}
	return best
}
