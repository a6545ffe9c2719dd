package wpilog

import (
	"sort"
	"strings"

	"github.com/frcviz/wpilog/pkg/types"
)

// TreeNode groups entry names hierarchically for a sidebar browser.
// The first level splits on ':' (source prefixes like "NT"), deeper
// levels on '/'. Leaves keep the full entry listing.
type TreeNode struct {
	// Prefix is this node's path component ("" at the root)
	Prefix string
	// Entries are the leaf entries directly under this node, keyed by
	// their remaining name component.
	Entries map[string]types.EntryInfo
	// Children are the nested groups, keyed by path component
	Children map[string]*TreeNode
}

// EntryTree builds the hierarchical view of every entry in the index
func (idx *LogIndex) EntryTree() *TreeNode {
	pending := make([]treeEntry, 0, len(idx.Entries()))
	for _, info := range idx.Entries() {
		pending = append(pending, treeEntry{rest: strings.TrimLeft(info.Name, "/"), info: info})
	}
	return buildSubtree("", pending, true)
}

type treeEntry struct {
	rest string
	info types.EntryInfo
}

func buildSubtree(prefix string, entries []treeEntry, root bool) *TreeNode {
	node := &TreeNode{
		Prefix:   prefix,
		Entries:  make(map[string]types.EntryInfo),
		Children: make(map[string]*TreeNode),
	}

	grouped := make(map[string][]treeEntry)
	for _, e := range entries {
		// Source prefixes ("NT:...") take precedence at the root;
		// everywhere else, and for unprefixed names, split on '/'.
		sep := "/"
		if root && strings.Contains(e.rest, ":") {
			sep = ":"
		}
		head, rest, found := strings.Cut(e.rest, sep)
		if !found {
			node.Entries[e.rest] = e.info
			continue
		}
		grouped[head] = append(grouped[head], treeEntry{rest: strings.TrimLeft(rest, "/"), info: e.info})
	}

	for head, sub := range grouped {
		node.Children[head] = buildSubtree(head, sub, false)
	}
	return node
}

// Walk visits the subtree depth-first in sorted component order,
// calling fn with the slash-joined path of each leaf entry.
func (n *TreeNode) Walk(fn func(path string, info types.EntryInfo)) {
	n.walk("", fn)
}

func (n *TreeNode) walk(base string, fn func(string, types.EntryInfo)) {
	leaves := make([]string, 0, len(n.Entries))
	for name := range n.Entries {
		leaves = append(leaves, name)
	}
	sort.Strings(leaves)
	for _, name := range leaves {
		fn(join(base, name), n.Entries[name])
	}

	kids := make([]string, 0, len(n.Children))
	for name := range n.Children {
		kids = append(kids, name)
	}
	sort.Strings(kids)
	for _, name := range kids {
		n.Children[name].walk(join(base, name), fn)
	}
}

func join(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
