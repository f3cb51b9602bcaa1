package router

import (
	"sort"
	"strings"
)

// The routing tree is a segment trie: each node matches one path segment,
// either literally, as a {param} capture, or as a trailing * wildcard.
// Static children win over params, params over wildcards.

type nodeKind uint8

const (
	nodeStatic nodeKind = iota
	nodeParam           // /{id}
	nodeWild            // /* (must be last segment)
)

type treeNode[C any] struct {
	segment  string // literal value or param name
	kind     nodeKind
	children []*treeNode[C]
	// endpoints maps HTTP method to handler; methodAny applies to all methods.
	endpoints map[string]C
	pattern   string
}

// methodAny is the pseudo-method used by Handle to match every HTTP method.
const methodAny = "*"

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (n *treeNode[C]) insert(method, pattern string, h C) {
	segs := splitPath(pattern)
	cur := n
	for i, seg := range segs {
		kind := nodeStatic
		name := seg
		switch {
		case seg == "*":
			if i != len(segs)-1 {
				panic("router: wildcard '*' must be the last segment in a pattern")
			}
			kind = nodeWild
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			kind = nodeParam
			name = seg[1 : len(seg)-1]
			if name == "" {
				panic("router: empty route param in pattern " + pattern)
			}
		}

		child := cur.findChild(kind, name)
		if child == nil {
			child = &treeNode[C]{segment: name, kind: kind}
			cur.children = append(cur.children, child)
			// Keep match precedence stable: static < param < wild.
			sort.SliceStable(cur.children, func(a, b int) bool {
				return cur.children[a].kind < cur.children[b].kind
			})
		}
		cur = child
	}

	if cur.endpoints == nil {
		cur.endpoints = make(map[string]C)
	}
	if _, exists := cur.endpoints[method]; exists {
		panic("router: duplicate route " + method + " " + pattern)
	}
	cur.endpoints[method] = h
	cur.pattern = pattern
}

func (n *treeNode[C]) findChild(kind nodeKind, segment string) *treeNode[C] {
	for _, c := range n.children {
		if c.kind != kind {
			continue
		}
		if kind == nodeStatic && c.segment != segment {
			continue
		}
		return c
	}
	return nil
}

// find walks the tree for the given path. It returns the matched node (nil if
// no node matched) and the captured params.
func (n *treeNode[C]) find(path string, params map[string]string) *treeNode[C] {
	return n.findSegs(splitPath(path), params)
}

func (n *treeNode[C]) findSegs(segs []string, params map[string]string) *treeNode[C] {
	if len(segs) == 0 {
		if n.endpoints != nil {
			return n
		}
		return nil
	}

	seg := segs[0]
	for _, c := range n.children {
		switch c.kind {
		case nodeStatic:
			if c.segment != seg {
				continue
			}
			if m := c.findSegs(segs[1:], params); m != nil {
				return m
			}
		case nodeParam:
			if m := c.findSegs(segs[1:], params); m != nil {
				params[c.segment] = seg
				return m
			}
		case nodeWild:
			if c.endpoints != nil {
				params["*"] = strings.Join(segs, "/")
				return c
			}
		}
	}
	return nil
}

// routes collects every registered route for introspection.
func (n *treeNode[C]) routes(out *[]Route) {
	for method := range n.endpoints {
		*out = append(*out, Route{Method: method, Pattern: n.pattern})
	}
	for _, c := range n.children {
		c.routes(out)
	}
}

// allowedMethods lists concrete methods registered on the node, for the
// Allow header on 405 responses.
func (n *treeNode[C]) allowedMethods() []string {
	methods := make([]string, 0, len(n.endpoints))
	for m := range n.endpoints {
		if m != methodAny {
			methods = append(methods, m)
		}
	}
	sort.Strings(methods)
	return methods
}
