// Package structure builds a hierarchy tree out of a parsed document's flat
// text, boundaries, and extracted headings, then flattens that tree into
// the section list the chunker consumes.
package structure

import (
	"fmt"

	"github.com/docpipeline/indexer/parse"
)

// Node is one section of the document hierarchy tree. The root node
// (Level 0) represents the whole document and has no Title. Level is
// always clamped so it never exceeds Parent.Level+1, even when the raw
// heading level found in the document skipped one or more levels.
type Node struct {
	ID          string
	Level       int
	Title       string
	StartOffset int
	EndOffset   int
	Parent      *Node
	Children    []*Node

	// Corrected is set when BuildTree had to clamp this node's raw
	// heading level down to Parent.Level+1 because the document skipped
	// a level on the way to it.
	Corrected bool
}

// Tree is the result of building a hierarchy from extracted headings.
type Tree struct {
	Root            *Node
	CorrectionCount int
	DetectionMethod string // "native" if headings came from the format extractor, "heuristic" otherwise
}

// BuildTree constructs a hierarchy tree from extracted headings using a
// stack-based algorithm: each new heading pops any stack entries whose
// level is not strictly less than its own raw level, then attaches under
// whichever ancestor remains — the nearest valid ancestor. The node's
// Level is then clamped to at most parent.Level+1: a heading is
// "corrected" whenever its raw level exceeds that bound (e.g. a level-4
// heading appearing directly under a level-1 parent, or a document
// jumping from level 1 straight to level 3), so the invariant
// child.Level <= parent.Level+1 holds by construction for every node.
func BuildTree(fullText string, headings []parse.ExtractedHeading, detectionMethod string) *Tree {
	root := &Node{ID: "root", Level: 0, StartOffset: 0, EndOffset: len(fullText)}
	tree := &Tree{Root: root, DetectionMethod: detectionMethod}

	if len(headings) == 0 {
		return tree
	}

	stack := []*Node{root}
	var allNodes []*Node

	for i, h := range headings {
		level := h.Level
		if level < 1 {
			level = 1
		}

		for len(stack) > 1 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]

		clampedLevel := level
		corrected := false
		if clampedLevel > parent.Level+1 {
			clampedLevel = parent.Level + 1
			corrected = true
		}

		node := &Node{
			ID:          fmt.Sprintf("sec-%d", i),
			Level:       clampedLevel,
			Title:       h.Title,
			StartOffset: h.Offset,
			Parent:      parent,
			Corrected:   corrected,
		}
		if corrected {
			tree.CorrectionCount++
		}
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
		allNodes = append(allNodes, node)
	}

	// Assign EndOffset as the start of the next heading in document order,
	// defaulting to the document end, so a node's range covers only its own
	// text and not that of its descendants.
	for i, node := range allNodes {
		node.EndOffset = len(fullText)
		if i+1 < len(allNodes) {
			node.EndOffset = allNodes[i+1].StartOffset
		}
	}
	if len(allNodes) > 0 {
		root.EndOffset = len(fullText)
	}

	return tree
}

// Walk visits every node in the tree in document order, including the root.
func Walk(n *Node, visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
