// Package interner implements the Name interner from spec.md §4.2: a
// two-way map between identifier text and dense numeric ids. The
// analyzer owns one Interner per compilation and shares it with the
// tree interpreter's environment so both stages agree on which
// identifier a given Name denotes.
package interner

// Name is a dense identifier produced by an Interner. Name 0 is
// reserved and never returned by Intern.
type Name uint32

const reserved Name = 0

// Interner maps identifier text to dense Name ids, assigning a fresh
// id the first time a given string is seen and returning the same id
// on every later call with equal text.
type Interner struct {
	byText []string // byText[n-1] is the text for Name(n)
	ids    map[string]Name
}

func New() *Interner {
	return &Interner{ids: make(map[string]Name)}
}

// Intern returns the Name for text, allocating a new one if this is
// the first time text has been seen.
func (in *Interner) Intern(text string) Name {
	if n, ok := in.ids[text]; ok {
		return n
	}
	in.byText = append(in.byText, text)
	n := Name(len(in.byText))
	in.ids[text] = n
	return n
}

// Text returns the identifier text for n. Panics if n is not a Name
// this Interner produced; that would indicate an internal bug.
func (in *Interner) Text(n Name) string {
	if n == reserved || int(n) > len(in.byText) {
		panic("interner: invalid Name")
	}
	return in.byText[n-1]
}

// Lookup returns the Name already assigned to text, if any, without
// interning a new one.
func (in *Interner) Lookup(text string) (Name, bool) {
	n, ok := in.ids[text]
	return n, ok
}
