package model

import "sort"

// Collection is an insertion-ordered set of records keyed by uid, together
// with the extra (non-canonical) columns its records carry.
type Collection struct {
	order   []string
	records map[string]Record
	extra   []string
}

// NewCollection returns an empty collection declaring the given extra columns.
func NewCollection(extra ...string) *Collection {
	c := &Collection{records: make(map[string]Record)}
	for _, col := range extra {
		c.addColumn(col)
	}
	return c
}

// Put inserts or overwrites the record with r.UID. It reports whether an
// existing record was replaced; the replaced record keeps its position.
// Extra columns not declared yet are added in name order.
func (c *Collection) Put(r Record) (replaced bool) {
	if _, ok := c.records[r.UID]; ok {
		replaced = true
	} else {
		c.order = append(c.order, r.UID)
	}
	c.records[r.UID] = r
	if len(r.Extra) > 0 {
		cols := make([]string, 0, len(r.Extra))
		for col := range r.Extra {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			c.addColumn(col)
		}
	}
	return replaced
}

// Get returns the record stored under uid.
func (c *Collection) Get(uid string) (Record, bool) {
	r, ok := c.records[uid]
	return r, ok
}

// Has reports whether uid is present.
func (c *Collection) Has(uid string) bool {
	_, ok := c.records[uid]
	return ok
}

func (c *Collection) Len() int {
	return len(c.order)
}

// Keys returns the uids in insertion order.
func (c *Collection) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Records returns the records in insertion order.
func (c *Collection) Records() []Record {
	out := make([]Record, 0, len(c.order))
	for _, uid := range c.order {
		out = append(out, c.records[uid])
	}
	return out
}

// ExtraColumns returns the non-canonical columns, in first-seen order.
func (c *Collection) ExtraColumns() []string {
	cols := make([]string, len(c.extra))
	copy(cols, c.extra)
	return cols
}

func (c *Collection) addColumn(col string) {
	if isCanonical(col) || col == LabelColumn {
		return
	}
	for _, existing := range c.extra {
		if existing == col {
			return
		}
	}
	c.extra = append(c.extra, col)
}

func isCanonical(col string) bool {
	for _, c := range Columns {
		if c == col {
			return true
		}
	}
	return false
}
