package algorithms

import "strings"

// Traversal names.
const (
	TraverseBFS       = "bfs"
	TraverseDFS       = "dfs"
	TraverseInOrder   = "inorder"
	TraversePreOrder  = "preorder"
	TraversePostOrder = "postorder"
)

// TreeNode is a plain binary tree node used by the traversal routines.
type TreeNode struct {
	Value string    `json:"value"`
	Left  *TreeNode `json:"left,omitempty"`
	Right *TreeNode `json:"right,omitempty"`
}

// BuildTree inserts values into a binary search tree in order, sending
// equal values right, and returns its root.
func BuildTree(values []string) *TreeNode {
	var root *TreeNode
	for _, v := range values {
		n := &TreeNode{Value: v}
		if root == nil {
			root = n
			continue
		}
		cur := root
		for {
			if v < cur.Value {
				if cur.Left == nil {
					cur.Left = n
					break
				}
				cur = cur.Left
			} else {
				if cur.Right == nil {
					cur.Right = n
					break
				}
				cur = cur.Right
			}
		}
	}
	return root
}

// TraverseTree returns the labels of root's tree in the named order. dfs is
// an alias of preorder.
func TraverseTree(kind string, root *TreeNode) ([]string, error) {
	out := []string{}
	switch strings.ToLower(kind) {
	case TraverseBFS:
		if root == nil {
			return out, nil
		}
		queue := []*TreeNode{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			out = append(out, n.Value)
			if n.Left != nil {
				queue = append(queue, n.Left)
			}
			if n.Right != nil {
				queue = append(queue, n.Right)
			}
		}
	case TraverseDFS, TraversePreOrder:
		stack := []*TreeNode{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n == nil {
				continue
			}
			out = append(out, n.Value)
			stack = append(stack, n.Right, n.Left)
		}
	case TraverseInOrder:
		var stack []*TreeNode
		for cur := root; cur != nil || len(stack) > 0; {
			for cur != nil {
				stack = append(stack, cur)
				cur = cur.Left
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, cur.Value)
			cur = cur.Right
		}
	case TraversePostOrder:
		// Reverse of a root-right-left walk.
		stack := []*TreeNode{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n == nil {
				continue
			}
			out = append(out, n.Value)
			stack = append(stack, n.Left, n.Right)
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	default:
		return nil, unknownAlgorithm("tree traversal", kind)
	}
	return out, nil
}

// TraverseGraph returns the node ids reachable from start in bfs or dfs
// order. Neighbors are visited in edge order. An unknown start yields an
// empty order.
func TraverseGraph(kind string, g *Graph, start string) ([]string, error) {
	kind = strings.ToLower(kind)
	if kind != TraverseBFS && kind != TraverseDFS {
		return nil, unknownAlgorithm("graph traversal", kind)
	}

	out := []string{}
	if !g.HasNode(start) {
		return out, nil
	}
	adj := g.adjacency()
	visited := map[string]bool{start: true}

	if kind == TraverseBFS {
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			out = append(out, cur)
			for _, a := range adj[cur] {
				if !visited[a.to] {
					visited[a.to] = true
					queue = append(queue, a.to)
				}
			}
		}
		return out, nil
	}

	// Iterative dfs that keeps the recursive visiting order: each frame
	// remembers how far through its neighbor list it has got.
	type frame struct {
		id   string
		next int
	}
	out = append(out, start)
	stack := []frame{{id: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		arcs := adj[top.id]
		if top.next >= len(arcs) {
			stack = stack[:len(stack)-1]
			continue
		}
		to := arcs[top.next].to
		top.next++
		if visited[to] {
			continue
		}
		visited[to] = true
		out = append(out, to)
		stack = append(stack, frame{id: to})
	}
	return out, nil
}
