package overlay

import "fmt"

type FocusKind int

const (
	FocusSearchField FocusKind = iota
	FocusEntry
)

// FocusTarget is either the search field or an index into the current VisibleSet.
type FocusTarget struct {
	Kind  FocusKind
	Index int
}

func SearchField() FocusTarget {
	return FocusTarget{Kind: FocusSearchField}
}

func Entry(index int) FocusTarget {
	return FocusTarget{Kind: FocusEntry, Index: index}
}

func (f FocusTarget) IsEntry() bool {
	return f.Kind == FocusEntry
}

func (f FocusTarget) String() string {
	if f.IsEntry() {
		return fmt.Sprintf("Entry(%d)", f.Index)
	}
	return "SearchField"
}

// FocusFirstVisible moves to the first visible entry; with nothing visible the
// current target is kept.
func FocusFirstVisible(visible int, current FocusTarget) FocusTarget {
	if visible == 0 {
		return current
	}
	return Entry(0)
}

// FocusNext steps forward through the visible entries as a ring.
func FocusNext(visible int, current FocusTarget) FocusTarget {
	if visible == 0 {
		return SearchField()
	}
	if !current.IsEntry() {
		return FocusFirstVisible(visible, current)
	}
	if next := current.Index + 1; next < visible && next > 0 {
		return Entry(next)
	}
	return Entry(0)
}

// FocusPrev steps backward through the visible entries as a ring; from the search
// field it lands on the last entry.
func FocusPrev(visible int, current FocusTarget) FocusTarget {
	if visible == 0 {
		return SearchField()
	}
	if !current.IsEntry() || current.Index <= 0 || current.Index > visible {
		return Entry(visible - 1)
	}
	return Entry(current.Index - 1)
}
