package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree returns a snapshot of all items within the range. Iterators
// must not outlive writes to the domain they cover, so copying the
// (usually small) cache content is enough.
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// mergeIterator joins the cached items with those of the parent,
// taking into consideration overwrites and deletes.
type mergeIterator struct {
	ours   []btree.Item
	parent Iterator

	key   []byte
	value []byte
	valid bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(ours []btree.Item, parent Iterator) *mergeIterator {
	m := &mergeIterator{ours: ours, parent: parent}
	m.advance()
	return m
}

// advance moves to the next visible item, skipping over deleted ones.
func (m *mergeIterator) advance() {
	for {
		hasOurs := len(m.ours) > 0
		hasParent := m.parent.Valid()
		if !hasOurs && !hasParent {
			m.valid = false
			m.key, m.value = nil, nil
			return
		}

		if !hasOurs {
			m.key, m.value, m.valid = m.parent.Key(), m.parent.Value(), true
			m.parent.Next()
			return
		}

		item := m.ours[0]
		ourKey := item.(keyer).Key()
		if hasParent {
			switch cmp := bytes.Compare(ourKey, m.parent.Key()); {
			case cmp > 0:
				m.key, m.value, m.valid = m.parent.Key(), m.parent.Value(), true
				m.parent.Next()
				return
			case cmp == 0:
				// Our value shadows the parent one.
				m.parent.Next()
			}
		}

		m.ours = m.ours[1:]
		if set, ok := item.(setItem); ok {
			m.key, m.value, m.valid = set.key, set.value, true
			return
		}
	}
}

func (m *mergeIterator) Valid() bool {
	return m.valid
}

func (m *mergeIterator) Next() {
	if !m.valid {
		panic("Passed end of iterator")
	}
	m.advance()
}

func (m *mergeIterator) Key() []byte {
	if !m.valid {
		panic("Passed end of iterator")
	}
	return m.key
}

func (m *mergeIterator) Value() []byte {
	if !m.valid {
		panic("Passed end of iterator")
	}
	return m.value
}

func (m *mergeIterator) Close() {
	m.parent.Close()
	m.ours = nil
	m.valid = false
}
