package iavl

import (
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/tendermint/iavl"
)

// iteratorPageSize is the number of entries read from the tree at once.
const iteratorPageSize = 256

// pageIterator walks a key range of the working tree one page at a time,
// so only a page of entries is held in memory. Each page resumes right
// after the last key returned by the previous one.
type pageIterator struct {
	tree      *iavl.MutableTree
	start     []byte
	end       []byte
	ascending bool
	pageSize  int

	page []store.Model
	idx  int
	// exhausted is set once a page came back shorter than pageSize.
	exhausted bool
}

var _ store.Iterator = (*pageIterator)(nil)

func newPageIterator(tree *iavl.MutableTree, start, end []byte, ascending bool, pageSize int) *pageIterator {
	return &pageIterator{
		tree:      tree,
		start:     start,
		end:       end,
		ascending: ascending,
		pageSize:  pageSize,
	}
}

func (it *pageIterator) Next() (key, value []byte, err error) {
	if it.idx >= len(it.page) {
		if it.exhausted || it.tree == nil {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "iavl iterator")
		}
		it.load()
		if len(it.page) == 0 {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "iavl iterator")
		}
	}
	m := it.page[it.idx]
	it.idx++
	return m.Key, m.Value, nil
}

// load reads the next page and narrows the range past it.
func (it *pageIterator) load() {
	it.page = it.page[:0]
	it.idx = 0
	it.tree.IterateRange(it.start, it.end, it.ascending, func(key, value []byte) bool {
		it.page = append(it.page, store.Pair(key, value))
		return len(it.page) >= it.pageSize
	})
	if len(it.page) < it.pageSize {
		it.exhausted = true
		return
	}
	last := it.page[len(it.page)-1].Key
	if it.ascending {
		it.start = append(append(make([]byte, 0, len(last)+1), last...), 0)
	} else {
		it.end = last
	}
}

func (it *pageIterator) Release() {
	it.page = nil
	it.tree = nil
}
