package structures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Tree step tags.
const (
	TagStartInsert    trace.Tag = "START_INSERT"
	TagSetRoot        trace.Tag = "SET_ROOT"
	TagGoLeft         trace.Tag = "GO_LEFT"
	TagGoRight        trace.Tag = "GO_RIGHT"
	TagInsertNode     trace.Tag = "INSERT_NODE"
	TagInsertComplete trace.Tag = "INSERT_COMPLETE"
)

type treeNode struct {
	item   schema.Item
	left   string
	right  string
	parent string
	level  int
}

// BinaryTree is a binary search tree keyed by item name. Nodes are kept in
// an arena and refer to their children and parent by id. Equal keys go to
// the right subtree.
type BinaryTree struct {
	mu    sync.Mutex
	nodes map[string]*treeNode
	root  string
	rec   trace.Recorder
}

// NewBinaryTree creates an empty tree.
func NewBinaryTree() *BinaryTree {
	return &BinaryTree{nodes: make(map[string]*treeNode)}
}

// Insert adds item at the first free slot on its search path.
func (t *BinaryTree) Insert(item schema.Item) []trace.Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rec.Reset()

	t.rec.Record(TagStartInsert, "Inserting "+item.Name, t.snapshots(), "", map[string]any{"value": item.Name})

	id := uuid.New().String()
	if t.root == "" {
		t.nodes[id] = &treeNode{item: item}
		t.root = id
		t.rec.Record(TagSetRoot, "Tree was empty, "+item.Name+" becomes root", t.snapshots(), id, map[string]any{"level": 0})
		t.rec.Record(TagInsertComplete,
			fmt.Sprintf("Insert complete, tree size %d", len(t.nodes)),
			t.snapshots(), id, map[string]any{"level": 0, "size": len(t.nodes)})
		return t.rec.Steps()
	}

	cur := t.root
	for {
		n := t.nodes[cur]
		t.rec.Record(trace.TagTraverse,
			fmt.Sprintf("At %s (level %d)", n.item.Name, n.level),
			t.snapshots(), cur, map[string]any{"level": n.level, "compareWith": n.item.Name})

		goLeft := item.Name < n.item.Name
		next := n.right
		if goLeft {
			next = n.left
			t.rec.Record(TagGoLeft,
				fmt.Sprintf("%s < %s, going left", item.Name, n.item.Name),
				t.snapshots(), cur, map[string]any{"level": n.level})
		} else {
			t.rec.Record(TagGoRight,
				fmt.Sprintf("%s >= %s, going right", item.Name, n.item.Name),
				t.snapshots(), cur, map[string]any{"level": n.level})
		}

		if next != "" {
			cur = next
			continue
		}

		child := &treeNode{item: item, parent: cur, level: n.level + 1}
		t.nodes[id] = child
		side := "right"
		if goLeft {
			n.left = id
			side = "left"
		} else {
			n.right = id
		}
		t.rec.Record(TagInsertNode,
			fmt.Sprintf("Inserted %s as %s child of %s", item.Name, side, n.item.Name),
			t.snapshots(), id, map[string]any{"level": child.level, "parentId": cur, "side": side})
		t.rec.Record(TagInsertComplete,
			fmt.Sprintf("Insert complete, tree size %d", len(t.nodes)),
			t.snapshots(), id, map[string]any{"level": child.level, "size": len(t.nodes)})
		return t.rec.Steps()
	}
}

// Search descends from the root comparing names.
func (t *BinaryTree) Search(name string) []trace.Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rec.Reset()

	t.rec.Record(trace.TagStartSearch, "Searching for "+name, t.snapshots(), "", map[string]any{"target": name})

	for cur := t.root; cur != ""; {
		n := t.nodes[cur]
		t.rec.Record(trace.TagCompare,
			fmt.Sprintf("Comparing %s with %s", name, n.item.Name),
			t.snapshots(), cur, map[string]any{"level": n.level})

		if name == n.item.Name {
			t.rec.Record(trace.TagFound,
				fmt.Sprintf("Found %s at level %d", name, n.level),
				t.snapshots(), cur, map[string]any{"level": n.level, "itemId": n.item.ID})
			return t.rec.Steps()
		}
		if name < n.item.Name {
			t.rec.Record(TagGoLeft, fmt.Sprintf("%s < %s, going left", name, n.item.Name), t.snapshots(), cur, nil)
			cur = n.left
		} else {
			t.rec.Record(TagGoRight, fmt.Sprintf("%s > %s, going right", name, n.item.Name), t.snapshots(), cur, nil)
			cur = n.right
		}
	}

	t.rec.Record(trace.TagNotFound, "File not found: "+name, t.snapshots(), "", map[string]any{"target": name})
	return t.rec.Steps()
}

// Clear drops every node.
func (t *BinaryTree) Clear() []trace.Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rec.Reset()
	removed := make([]string, 0, len(t.nodes))
	for _, it := range t.items() {
		removed = append(removed, it.ID)
	}
	t.nodes = make(map[string]*treeNode)
	t.root = ""
	t.rec.Record(trace.TagCleared, "Tree cleared", t.snapshots(), "", map[string]any{"removedIds": removed})
	return t.rec.Steps()
}

// Size returns the number of nodes.
func (t *BinaryTree) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// IsEmpty reports whether the tree has no root.
func (t *BinaryTree) IsEmpty() bool { return t.Size() == 0 }

// Items returns the items in pre-order.
func (t *BinaryTree) Items() []schema.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items()
}

// InOrder returns the keys in sorted order.
func (t *BinaryTree) InOrder() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inOrder()
}

// View returns size, items, rendering and sorted keys under one lock.
func (t *BinaryTree) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{Size: len(t.nodes), Items: t.items(), Nodes: t.snapshots(), InOrder: t.inOrder()}
}

func (t *BinaryTree) items() []schema.Item {
	out := make([]schema.Item, 0, len(t.nodes))
	t.preorder(func(_ string, n *treeNode) {
		out = append(out, n.item)
	})
	return out
}

func (t *BinaryTree) inOrder() []string {
	out := make([]string, 0, len(t.nodes))
	var stack []string
	cur := t.root
	for cur != "" || len(stack) > 0 {
		for cur != "" {
			stack = append(stack, cur)
			cur = t.nodes[cur].left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, t.nodes[cur].item.Name)
		cur = t.nodes[cur].right
	}
	return out
}

// Snapshots returns the current rendering in pre-order.
func (t *BinaryTree) Snapshots() []trace.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshots()
}

func (t *BinaryTree) preorder(visit func(id string, n *treeNode)) {
	if t.root == "" {
		return
	}
	stack := []string{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		visit(id, n)
		if n.right != "" {
			stack = append(stack, n.right)
		}
		if n.left != "" {
			stack = append(stack, n.left)
		}
	}
}

func (t *BinaryTree) snapshots() []trace.Snapshot {
	out := make([]trace.Snapshot, 0, len(t.nodes))
	t.preorder(func(id string, n *treeNode) {
		out = append(out, trace.Snapshot{
			ID:          id,
			Name:        n.item.Name,
			Size:        n.item.SizeFormatted(),
			ContentType: n.item.ContentType,
			Index:       len(out),
			Level:       n.level,
			LeftID:      n.left,
			RightID:     n.right,
			ParentID:    n.parent,
		})
	})
	return out
}
