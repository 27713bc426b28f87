package diagram

// ZElevation is added to the z-order of a selected shape, its descendants
// and the connections attached to any of them.
const ZElevation = 1_000_000

// IncreaseZIndex lifts the shape, its descendants and their connections
// above every unselected sibling. It is idempotent.
func (s *Shape) IncreaseZIndex() { s.elevated = true }

// DecreaseZIndex undoes IncreaseZIndex and restores the exact previous
// z-order.
func (s *Shape) DecreaseZIndex() { s.elevated = false }

// Elevated reports whether IncreaseZIndex is in effect on s itself.
func (s *Shape) Elevated() bool { return s.elevated }

// elevation is ZElevation when s or one of its ancestors is elevated.
func (s *Shape) elevation() int {
	for t := s; t != nil; t = t.Parent() {
		if t.elevated {
			return ZElevation
		}
	}
	return 0
}
