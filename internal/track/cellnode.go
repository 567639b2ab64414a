package track

// CellNode is one node in the lineage forest. Every CellNode resides
// in a Detection or an idle state and is threaded into a track through
// prev/next links, with the Event that realized each link stored
// alongside. Division is represented separately: a dividing CellNode
// has two children and no next link, and each daughter's first
// Detection CellNode points back through parent. Tracks begin and end
// in idle-state CellNodes except when they end in division.
//
// CellNodes are created through Forest.CreateCellFirst and
// Forest.CreateCellLink only, so a node can never exist outside a
// forest.
type CellNode struct {
	iteration int
	state     *State

	next *CellNode
	prev *CellNode

	parent   *CellNode
	children [2]*CellNode

	nextEvent Event
	prevEvent Event

	dependentSwaps []*Swap
}

func newCellNode(state *State, iteration int) *CellNode {
	c := &CellNode{state: state, iteration: iteration}
	state.addCell(c)
	return c
}

// State returns the trellis state the CellNode resides in.
func (c *CellNode) State() *State { return c.state }

// Iteration returns the AddCell iteration in which the node was
// created.
func (c *CellNode) Iteration() int { return c.iteration }

// Next returns the next CellNode in the track, or nil.
func (c *CellNode) Next() *CellNode { return c.next }

// Prev returns the previous CellNode in the track, or nil.
func (c *CellNode) Prev() *CellNode { return c.prev }

// NextEvent returns the Event through which the cell leaves the state,
// or nil at the end of a track.
func (c *CellNode) NextEvent() Event { return c.nextEvent }

// PrevEvent returns the Event through which the cell entered the
// state, or nil at the start of a track.
func (c *CellNode) PrevEvent() Event { return c.prevEvent }

// Parent returns the dividing CellNode this node descends from, or
// nil.
func (c *CellNode) Parent() *CellNode { return c.parent }

// Child returns child i (0 or 1), or nil if the node does not divide.
func (c *CellNode) Child(i int) *CellNode { return c.children[i] }

// HasNext reports whether the node has a successor in its track.
func (c *CellNode) HasNext() bool { return c.next != nil }

// HasPrev reports whether the node has a predecessor in its track.
func (c *CellNode) HasPrev() bool { return c.prev != nil }

// HasChildren reports whether the node ends its track by dividing.
func (c *CellNode) HasChildren() bool { return c.children[0] != nil }

// HasParent reports whether the node is the first Detection of a
// daughter track.
func (c *CellNode) HasParent() bool { return c.parent != nil }

// AddLink joins cell's track onto this node through ev, updating the
// occurrence counter of ev and the cell count of cell's state. The
// node must currently end its track, cell must currently begin one,
// and ev must permit the link.
func (c *CellNode) AddLink(ev Event, cell *CellNode) {
	if c.next != nil || c.nextEvent != nil || c.HasChildren() {
		panic("track: AddLink from a cell that does not end its track")
	}
	if cell.prev != nil || cell.prevEvent != nil || cell.HasParent() {
		panic("track: AddLink to a cell that does not begin its track")
	}
	if !ev.check(c.state, cell.state) {
		panic("track: AddLink through an event that does not permit the link")
	}

	c.nextEvent = ev
	c.next = cell
	cell.prevEvent = ev
	cell.prev = c

	ev.Plus()
	cell.state.plus()
}

// AddChildren records a division: child1 and child2 become the two
// daughters of this node. Both children must be the second node of
// their chain, after an idle-state first node, and mit must permit the
// division. The division counter itself is not touched here; it was
// incremented once per daughter when the daughter links were made, and
// the caller rebalances the migration counters.
func (c *CellNode) AddChildren(mit *Mitosis, child1, child2 *CellNode) {
	if c.next != nil || c.nextEvent != nil || c.HasChildren() {
		panic("track: AddChildren on a cell that does not end its track")
	}
	for _, child := range []*CellNode{child1, child2} {
		if child.HasParent() || child.prev == nil || child.prev.prev != nil || child.prev.prevEvent != nil {
			panic("track: division child is not the second node of a fresh chain")
		}
	}
	if !mit.checkMitosis(c.state, child1.state, child2.state) {
		panic("track: AddChildren through a mitosis that does not permit the division")
	}

	c.children[0] = child1
	c.children[1] = child2
	child1.parent = c
	child2.parent = c
}

// RemoveLink severs the link between this node and its successor. When
// the successor is a division daughter, the division is undone: the
// other daughter is relinked to the parent through its plain
// migration, and the freed idle-state first node is removed from the
// forest.
func (c *CellNode) RemoveLink(f *Forest) {
	if c.next.HasParent() {
		parent := c.next.parent

		var keepNext *CellNode
		switch c.next {
		case parent.children[1]:
			keepNext = parent.children[0]
		case parent.children[0]:
			keepNext = parent.children[1]
		default:
			panic("track: division child not found on its parent")
		}

		migToKeep := parent.state.MigrationTo(keepNext.state)
		migToRemove := parent.state.MigrationTo(c.next.state)
		if migToKeep == nil || migToRemove == nil {
			panic("track: division without its supporting migrations")
		}

		removeCell := keepNext.prev
		parent.removeChildren()
		// The surviving daughter is no longer a track of its own.
		f.RemoveFirstCell(removeCell)

		// Both migrations were counted as part of the division; one of
		// them comes back as a plain link.
		migToKeep.Minus()
		migToRemove.Minus()
		parent.AddLink(migToKeep, keepNext)
		return
	}

	c.next.prevEvent = nil
	c.next.prev = nil

	c.next.state.minus()
	c.nextEvent.Minus()

	c.next = nil
	c.nextEvent = nil
}

// removeChildren undoes the bookkeeping of a division: both daughters
// are cut loose from their idle-state first nodes, the daughter state
// counts and the two mirror division counters are decremented, and the
// parent's child slots are cleared.
func (c *CellNode) removeChildren() {
	if !c.HasChildren() {
		panic("track: removeChildren on a cell without children")
	}

	child1, child2 := c.children[0], c.children[1]
	mit1, ok1 := child1.prevEvent.(*Mitosis)
	mit2, ok2 := child2.prevEvent.(*Mitosis)
	if !ok1 || !ok2 {
		panic("track: division child without a mitosis inbound event")
	}

	for _, child := range []*CellNode{child1, child2} {
		idle := child.prev
		idle.nextEvent = nil
		idle.next = nil
		child.prevEvent = nil
		child.prev = nil
		child.parent = nil
	}

	child1.state.minus()
	child2.state.minus()
	mit1.Minus()
	mit2.Minus() // mirror of mit1

	c.nextEvent = nil
	c.children[0] = nil
	c.children[1] = nil
}

func (c *CellNode) addDependentSwap(s *Swap) {
	c.dependentSwaps = append(c.dependentSwaps, s)
}

// removeDependentSwaps disposes every Swap arc targeting this node.
func (c *CellNode) removeDependentSwaps() {
	for _, s := range c.dependentSwaps {
		detach(s)
	}
	c.dependentSwaps = nil
}

// release detaches the CellNode from its state. The node must already
// be unlinked on all sides.
func (c *CellNode) release() {
	c.state.removeCell(c)
}
