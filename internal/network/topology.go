// Package network holds the static lab data served by the dashboard: the
// topology graph and the audit catalogue.
package network

// Topology is shaped for graph widgets that expect
// {elements: {nodes: [{data}], edges: [{data}]}}.
type Topology struct {
	Elements Elements `json:"elements"`
}

type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	Data NodeData `json:"data"`
}

type NodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Edge struct {
	Data EdgeData `json:"data"`
}

type EdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// LabTopology returns the mock lab graph. A fresh copy is built on every call
// so callers may modify it.
func LabTopology() Topology {
	node := func(id, role string) Node {
		return Node{Data: NodeData{ID: id, Label: id + " (" + role + ")"}}
	}
	edge := func(id, src, dst string) Edge {
		return Edge{Data: EdgeData{ID: id, Source: src, Target: dst}}
	}
	return Topology{Elements: Elements{
		Nodes: []Node{
			node("R15", "PE"),
			node("R16", "PE"),
			node("R17", "P"),
			node("R18", "RR"),
			node("R19", "CE"),
		},
		Edges: []Edge{
			edge("e1", "R15", "R17"),
			edge("e2", "R16", "R17"),
			edge("e3", "R17", "R18"),
			edge("e4", "R15", "R19"),
		},
	}}
}
