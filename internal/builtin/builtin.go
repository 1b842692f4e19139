// Package builtin implements the stable-indexed builtin registry from
// spec.md §6: print/str/int/float/len, shared by the analyzer (for
// constant folding), the compiler (for load_builtin emission), the VM
// and the tree interpreter (for invocation).
package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/value"
)

// Index is a stable numeric index into the registry (spec.md §6,
// "Builtin indices are assigned once and must remain stable").
type Index int

const (
	Print Index = iota
	Str
	Int
	Float
	Len
	count
)

// Func implements one builtin's behavior: it receives its already
// type-checked-by-nobody arguments and returns a result or a runtime
// diagnostic.
type Func func(args []value.Value) (value.Value, *diag.Error)

// Builtin describes one registry entry: its name (for diagnostics and
// disassembly), its purity (spec.md §4.3, required for folding), and
// its implementation.
type Builtin struct {
	Name  string
	Pure  bool
	Apply Func
}

// Registry is the fixed, ordered list of builtins indexed by Index.
// Only the identifiers below are members of the language's builtin
// namespace; Lookup is the only way the analyzer resolves a bare name
// to a BuiltinRef.
var Registry = [count]Builtin{
	Print: {Name: "print", Pure: false, Apply: doPrint},
	Str:   {Name: "str", Pure: true, Apply: doStr},
	Int:   {Name: "int", Pure: true, Apply: doInt},
	Float: {Name: "float", Pure: true, Apply: doFloat},
	Len:   {Name: "len", Pure: true, Apply: doLen},
}

// byName is built once from Registry so Lookup stays O(1) without
// hand-duplicating the name list.
var byName = func() map[string]Index {
	m := make(map[string]Index, len(Registry))
	for i, b := range Registry {
		m[b.Name] = Index(i)
	}
	return m
}()

// Lookup resolves an identifier to a builtin index, for the analyzer's
// file-scope fallback when no local/global binding shadows it.
func Lookup(name string) (Index, bool) {
	idx, ok := byName[name]
	return idx, ok
}

func doPrint(args []value.Value) (value.Value, *diag.Error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Display(a)
	}
	fmt.Println(strings.Join(parts, " "))
	return value.Null(), nil
}

func doStr(args []value.Value) (value.Value, *diag.Error) {
	if err := checkArity("str", args, 1); err != nil {
		return value.Null(), err
	}
	return value.Str(value.Display(args[0])), nil
}

func doInt(args []value.Value) (value.Value, *diag.Error) {
	if err := checkArity("int", args, 1); err != nil {
		return value.Null(), err
	}
	v := args[0]
	switch {
	case v.IsInt():
		return v, nil
	case v.IsFloat():
		f, _ := v.AsFloat()
		return value.Int(floatToIntSaturating(f)), nil
	case v.IsString():
		s, _ := v.AsString()
		i, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if perr != nil {
			return value.Null(), diag.AtOffset(diag.ValueError, -1, "int(): cannot parse %q as an integer", s)
		}
		return value.Int(i), nil
	default:
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "int() requires a number or string, got %s", v.TypeName())
	}
}

// floatToIntSaturating implements spec.md §6/§9: truncate toward
// zero, NaN becomes 0, out-of-range floats saturate to the int64
// extremes rather than wrapping.
func floatToIntSaturating(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	trunc := math.Trunc(f)
	if trunc >= math.MaxInt64 {
		return math.MaxInt64
	}
	if trunc <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(trunc)
}

func doFloat(args []value.Value) (value.Value, *diag.Error) {
	if err := checkArity("float", args, 1); err != nil {
		return value.Null(), err
	}
	v := args[0]
	switch {
	case v.IsFloat():
		return v, nil
	case v.IsInt():
		i, _ := v.AsInt()
		return value.Float(float64(i)), nil
	case v.IsString():
		s, _ := v.AsString()
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return value.Null(), diag.AtOffset(diag.ValueError, -1, "float(): cannot parse %q as a float", s)
		}
		return value.Float(f), nil
	default:
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "float() requires a number or string, got %s", v.TypeName())
	}
}

func doLen(args []value.Value) (value.Value, *diag.Error) {
	if err := checkArity("len", args, 1); err != nil {
		return value.Null(), err
	}
	v := args[0]
	switch {
	case v.IsString():
		s, _ := v.AsString()
		return value.Int(int64(len(s))), nil
	case v.IsList():
		l, _ := v.AsList()
		return value.Int(int64(len(l.Items))), nil
	default:
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "len() requires a string or list, got %s", v.TypeName())
	}
}

func checkArity(name string, args []value.Value, want int) *diag.Error {
	if len(args) != want {
		return diag.AtOffset(diag.ArityError, -1, "%s() expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}
