package relation

import "github.com/roach88/eav/internal/ir"

// Loaded is what a parent holds for one relation name after loading.
// Records is never nil once a relation has been initialized.
type Loaded struct {
	Records []ir.IRObject
	Single  bool
}

// Empty returns the placeholder set by InitRelation.
func Empty(single bool) Loaded {
	return Loaded{Records: []ir.IRObject{}, Single: single}
}

// First returns the first record, if any.
func (l Loaded) First() (ir.IRObject, bool) {
	if len(l.Records) == 0 {
		return nil, false
	}
	return l.Records[0], true
}

// Value renders the loaded relation for serialization: a list of objects for
// collection relations, the first object or null for singular ones.
func (l Loaded) Value() ir.IRValue {
	if l.Single {
		if rec, ok := l.First(); ok {
			return rec
		}
		return ir.IRNull{}
	}
	arr := make(ir.IRArray, len(l.Records))
	for i, rec := range l.Records {
		arr[i] = rec
	}
	return arr
}
