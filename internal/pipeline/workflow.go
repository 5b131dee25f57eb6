// Package pipeline talks to the local generative-image engine: a workflow
// graph of named nodes is configured per request, queued over HTTP, and
// awaited until the engine reports the produced artifacts.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// node is one entry of the engine's prompt graph. Inputs stay loosely typed
// because each class has its own parameter set; this service only rewrites
// the handful of slots named in the configuration.
type node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
	Meta      *nodeMeta      `json:"_meta,omitempty"`
}

type nodeMeta struct {
	Title string `json:"title"`
}

// Workflow is a named-node configuration graph in the engine's API JSON
// format. Nodes are addressed by their _meta title, matching the labels
// shown in the engine's editor.
type Workflow struct {
	nodes map[string]*node
}

// LoadWorkflow reads a workflow graph from the JSON file at path.
func LoadWorkflow(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	return ParseWorkflow(data)
}

// ParseWorkflow decodes a workflow graph from its API JSON form.
func ParseWorkflow(data []byte) (*Workflow, error) {
	nodes := make(map[string]*node)
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("workflow: parse graph: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("workflow: graph has no nodes")
	}
	for id, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("workflow: node %s is null", id)
		}
		if n.Inputs == nil {
			n.Inputs = make(map[string]any)
		}
	}
	return &Workflow{nodes: nodes}, nil
}

// Clone deep-copies the graph so each request can rewrite its own copy
// without racing the shared template.
func (w *Workflow) Clone() *Workflow {
	nodes := make(map[string]*node, len(w.nodes))
	for id, n := range w.nodes {
		copied := &node{ClassType: n.ClassType, Inputs: make(map[string]any, len(n.Inputs))}
		for k, v := range n.Inputs {
			copied.Inputs[k] = v
		}
		if n.Meta != nil {
			meta := *n.Meta
			copied.Meta = &meta
		}
		nodes[id] = copied
	}
	return &Workflow{nodes: nodes}
}

// SetNodeParam sets one input parameter on the node carrying the given
// title. Unknown titles are an error so a renamed node in the graph file
// fails loudly instead of being silently skipped.
func (w *Workflow) SetNodeParam(title, param string, value any) error {
	id, ok := w.nodeIDByTitle(title)
	if !ok {
		return fmt.Errorf("workflow: no node titled %q", title)
	}
	w.nodes[id].Inputs[param] = value
	return nil
}

// nodeIDByTitle resolves a node title to its graph id.
func (w *Workflow) nodeIDByTitle(title string) (string, bool) {
	for id, n := range w.nodes {
		if n.Meta != nil && n.Meta.Title == title {
			return id, true
		}
	}
	return "", false
}

// HasNode reports whether a node with the given title exists.
func (w *Workflow) HasNode(title string) bool {
	_, ok := w.nodeIDByTitle(title)
	return ok
}

// MarshalJSON renders the graph back into the engine's API form.
func (w *Workflow) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.nodes)
}
