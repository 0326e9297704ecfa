package searcher

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// toDot renders the tree as a directed graph, one labelled node per tree node.
func (t *tree) toDot() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	for i := range t.nodes {
		n := &t.nodes[i]
		move := string(n.position.Last())
		if move == "" {
			move = "root"
		}
		mean := 0.0
		if n.visits > 0 {
			mean = n.total / float64(n.visits)
		}
		attrs := map[string]string{
			"shape": "box",
			"label": fmt.Sprintf("\"%s\\np=%.3f n=%d q=%.3f\"", move, n.probability, n.visits, mean),
		}
		if err := g.AddNode("G", dotID(nodeID(i)), attrs); err != nil {
			return "", err
		}
		for _, child := range n.children {
			if err := g.AddEdge(dotID(nodeID(i)), dotID(child), true, nil); err != nil {
				return "", err
			}
		}
	}
	return g.String(), nil
}

func dotID(id nodeID) string {
	return fmt.Sprintf("n%d", id)
}

func writeDot(w io.Writer, t *tree) error {
	dot, err := t.toDot()
	if err != nil {
		return errors.Wrap(err, "render tree")
	}
	_, err = io.WriteString(w, dot)
	return errors.Wrap(err, "write tree")
}
