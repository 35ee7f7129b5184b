package dataset

// Chain is an ordered list of candidate field names consulted to populate one
// output field. Names are matched case-sensitively.
type Chain struct {
	Names   []string
	Default any
}

// Resolve returns the value of the first name present in r with a non-null value.
// Zero, false and the empty string count as present. With no match it returns Default.
func (c Chain) Resolve(r RawRecord) any {
	for _, name := range c.Names {
		if v, ok := r[name]; ok && v != nil {
			return v
		}
	}
	return c.Default
}
