package toolbar

import (
	"fmt"
	"strconv"
)

// Sentinel ids accepted by ByID.
const (
	RefFirst = "_first"
	RefLast  = "_last"
)

type refKind uint8

const (
	refDefault refKind = iota
	refID
	refIndex
	refHandle
)

// Ref identifies an item: by id, by position in the top-level sequence, or
// by handle. The zero Ref refers to the last top-level item.
type Ref struct {
	kind  refKind
	id    string
	index int
	item  *Item
}

// ByID refers to the item with the given id. The ids "_first" and "_last"
// refer to the ends of the top-level sequence; "" behaves like "_last".
func ByID(id string) Ref { return Ref{kind: refID, id: id} }

// At refers to the top-level item at index i. Negative indexes count back
// from the end, so At(-1) is the last item.
func At(i int) Ref { return Ref{kind: refIndex, index: i} }

// Handle refers to an item already obtained from the toolbar. A nil handle
// refers to nothing.
func Handle(it *Item) Ref { return Ref{kind: refHandle, item: it} }

var (
	First = ByID(RefFirst)
	Last  = ByID(RefLast)
)

// ParseRef interprets s the way the CLI and config do: an integer is an
// index, anything else is an id (including the sentinels).
func ParseRef(s string) Ref {
	if i, err := strconv.Atoi(s); err == nil {
		return At(i)
	}
	return ByID(s)
}

func (r Ref) String() string {
	switch r.kind {
	case refID:
		return strconv.Quote(r.id)
	case refIndex:
		return strconv.Itoa(r.index)
	case refHandle:
		if r.item == nil {
			return "<nil>"
		}
		return fmt.Sprintf("&%q", r.item.ID)
	default:
		return RefLast
	}
}
