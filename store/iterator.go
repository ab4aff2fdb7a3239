package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/bazaar/errors"
)

// collectRange returns all buffered entries within [start, end) in
// ascending order. A nil bound is open.
func collectRange(bt *btree.BTree, start, end []byte) []entry {
	var entries []entry
	collect := func(item btree.Item) bool {
		entries = append(entries, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return entries
}

// mergeIterator combines cached items with the iterator of the parent
// store. Cached entries shadow parent entries with the same key and
// deleted entries hide them.
type mergeIterator struct {
	items   []entry
	idx     int
	reverse bool

	parent     Iterator
	parentDone bool
	// buffered parent entry, valid if hasPeek is set
	hasPeek   bool
	peekKey   []byte
	peekValue []byte
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []entry, parent Iterator, reverse bool) *mergeIterator {
	return &mergeIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// Next returns the next visible entry or ErrIteratorDone.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.peekParent(); err != nil {
			return nil, nil, err
		}

		hasOwn := m.idx < len(m.items)
		switch {
		case !hasOwn && !m.hasPeek:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
		case !hasOwn:
			return m.popParent()
		case !m.hasPeek:
			if k, v, ok := m.popOwn(); ok {
				return k, v, nil
			}
			continue
		}

		cmp := bytes.Compare(m.peekKey, m.items[m.idx].key)
		if m.reverse {
			cmp = -cmp
		}
		if cmp < 0 {
			return m.popParent()
		}
		if cmp == 0 {
			// Cached value overrides the parent.
			m.hasPeek = false
		}
		if k, v, ok := m.popOwn(); ok {
			return k, v, nil
		}
	}
}

// peekParent makes sure the next parent entry is buffered, unless the
// parent is exhausted.
func (m *mergeIterator) peekParent() error {
	if m.hasPeek || m.parentDone || m.parent == nil {
		return nil
	}
	k, v, err := m.parent.Next()
	if err != nil {
		if errors.ErrIteratorDone.Is(err) {
			m.parentDone = true
			return nil
		}
		return err
	}
	m.hasPeek = true
	m.peekKey = k
	m.peekValue = v
	return nil
}

func (m *mergeIterator) popParent() ([]byte, []byte, error) {
	m.hasPeek = false
	return m.peekKey, m.peekValue, nil
}

// popOwn consumes the current cached item. It returns false if the item
// marks a deletion.
func (m *mergeIterator) popOwn() ([]byte, []byte, bool) {
	e := m.items[m.idx]
	m.idx++
	if e.deleted {
		return nil, nil, false
	}
	return e.key, e.value, true
}

// Release releases the parent iterator.
func (m *mergeIterator) Release() {
	if m.parent != nil {
		m.parent.Release()
	}
	m.items = nil
}
