package selections

import (
	"math"

	chem "github.com/AspirinCode/chemfiles"
)

// boolExpr is one node of the compiled selection tree. tuple holds the atom
// indices currently bound to #1..#4 (or just #1 for an arity-1 selection);
// evaluate never mutates frame or tuple.
type boolExpr interface {
	evaluate(frame *chem.Frame, tuple []int) bool
}

// numExpr is a scalar sub-expression (a property lookup, a literal, or an
// arithmetic combination of either) used on either side of a comparison.
type numExpr interface {
	value(frame *chem.Frame, tuple []int) float64
}

// relOp is one of the six comparison operators the grammar recognizes.
type relOp int

const (
	relEQ relOp = iota
	relNE
	relLT
	relLE
	relGT
	relGE
)

func (op relOp) apply(lhs, rhs float64) bool {
	switch op {
	case relEQ:
		return lhs == rhs
	case relNE:
		return lhs != rhs
	case relLT:
		return lhs < rhs
	case relLE:
		return lhs <= rhs
	case relGT:
		return lhs > rhs
	case relGE:
		return lhs >= rhs
	}
	return false
}

type allExpr struct{}

func (allExpr) evaluate(*chem.Frame, []int) bool { return true }

type noneExpr struct{}

func (noneExpr) evaluate(*chem.Frame, []int) bool { return false }

type andExpr struct{ lhs, rhs boolExpr }

func (e andExpr) evaluate(f *chem.Frame, t []int) bool {
	return e.lhs.evaluate(f, t) && e.rhs.evaluate(f, t)
}

type orExpr struct{ lhs, rhs boolExpr }

func (e orExpr) evaluate(f *chem.Frame, t []int) bool {
	return e.lhs.evaluate(f, t) || e.rhs.evaluate(f, t)
}

type notExpr struct{ inner boolExpr }

func (e notExpr) evaluate(f *chem.Frame, t []int) bool {
	return !e.inner.evaluate(f, t)
}

type stringField int

const (
	fieldName stringField = iota
	fieldType
	fieldResname
)

// stringPredicate implements `name == S`, `type != S` and `resname == S`,
// looked up against whichever tuple slot it was written against.
type stringPredicate struct {
	field  stringField
	slot   int
	value  string
	equals bool
}

func (p stringPredicate) evaluate(f *chem.Frame, t []int) bool {
	idx := t[p.slot]
	var actual string
	switch p.field {
	case fieldName:
		actual = f.Topology.Atom(idx).Name
	case fieldType:
		actual = f.Topology.Atom(idx).Type
	case fieldResname:
		r, ok := f.Topology.ResidueForAtom(idx)
		if !ok {
			return !p.equals
		}
		actual = r.Name
	}
	if p.equals {
		return actual == p.value
	}
	return actual != p.value
}

// relExpr implements every numeric comparison: `index OP N`, `mass OP X`,
// `x OP X`, `resid OP N`, and any arithmetic expression built from those.
type relExpr struct {
	op       relOp
	lhs, rhs numExpr
}

func (e relExpr) evaluate(f *chem.Frame, t []int) bool {
	return e.op.apply(e.lhs.value(f, t), e.rhs.value(f, t))
}

// isBondedExpr, isAngleExpr, isDihedralExpr and isImproperExpr implement the
// topology-membership predicates. Each argument is an indexExpr: either a
// literal atom index or a reference to a tuple slot (#1..#4).
type isBondedExpr struct{ a, b indexExpr }

func (e isBondedExpr) evaluate(f *chem.Frame, t []int) bool {
	return f.Topology.IsBonded(e.a.resolve(t), e.b.resolve(t))
}

type isAngleExpr struct{ a, b, c indexExpr }

func (e isAngleExpr) evaluate(f *chem.Frame, t []int) bool {
	return f.Topology.IsAngle(e.a.resolve(t), e.b.resolve(t), e.c.resolve(t))
}

type isDihedralExpr struct{ a, b, c, d indexExpr }

func (e isDihedralExpr) evaluate(f *chem.Frame, t []int) bool {
	return f.Topology.IsDihedral(e.a.resolve(t), e.b.resolve(t), e.c.resolve(t), e.d.resolve(t))
}

type isImproperExpr struct{ center, a, b, c indexExpr }

func (e isImproperExpr) evaluate(f *chem.Frame, t []int) bool {
	return f.Topology.IsImproper(e.center.resolve(t), e.a.resolve(t), e.b.resolve(t), e.c.resolve(t))
}

// indexExpr resolves to an atom index: either a compile-time literal or a
// lookup into the tuple currently being tested.
type indexExpr struct {
	literal bool
	value   int
	slot    int
}

func (e indexExpr) resolve(t []int) int {
	if e.literal {
		return e.value
	}
	return t[e.slot]
}

// Numeric leaves and combinators, grounded on the original selection
// language's arithmetic grammar (sum/product/power, unary minus, and a
// handful of named functions).
type numberLit float64

func (n numberLit) value(*chem.Frame, []int) float64 { return float64(n) }

type numProperty int

const (
	propIndex numProperty = iota
	propMass
	propResid
	propX
	propY
	propZ
	propVX
	propVY
	propVZ
)

type propertyExpr struct {
	prop numProperty
	slot int
}

func (e propertyExpr) value(f *chem.Frame, t []int) float64 {
	idx := t[e.slot]
	switch e.prop {
	case propIndex:
		return float64(idx)
	case propMass:
		return f.Topology.Atom(idx).Mass
	case propResid:
		r, ok := f.Topology.ResidueForAtom(idx)
		if !ok {
			return math.NaN()
		}
		id, _ := r.ID.Get()
		return float64(id)
	case propX:
		return f.Positions.Vec(idx).X
	case propY:
		return f.Positions.Vec(idx).Y
	case propZ:
		return f.Positions.Vec(idx).Z
	case propVX, propVY, propVZ:
		vel, ok := f.Velocities.Get()
		if !ok {
			return math.NaN()
		}
		v := vel.Vec(idx)
		switch e.prop {
		case propVX:
			return v.X
		case propVY:
			return v.Y
		default:
			return v.Z
		}
	}
	return math.NaN()
}

type binOp func(a, b float64) float64

type binNumExpr struct {
	op       binOp
	lhs, rhs numExpr
}

func (e binNumExpr) value(f *chem.Frame, t []int) float64 {
	return e.op(e.lhs.value(f, t), e.rhs.value(f, t))
}

func addOp(a, b float64) float64 { return a + b }
func subOp(a, b float64) float64 { return a - b }
func mulOp(a, b float64) float64 { return a * b }
func divOp(a, b float64) float64 { return a / b }
func powOp(a, b float64) float64 { return math.Pow(a, b) }

type negExpr struct{ inner numExpr }

func (e negExpr) value(f *chem.Frame, t []int) float64 { return -e.inner.value(f, t) }

type funcExpr struct {
	fn    func(float64) float64
	inner numExpr
}

func (e funcExpr) value(f *chem.Frame, t []int) float64 { return e.fn(e.inner.value(f, t)) }

var numericFunctions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"sqrt": math.Sqrt,
}

var numericProperties = map[string]numProperty{
	"index": propIndex,
	"mass":  propMass,
	"resid": propResid,
	"x":     propX,
	"y":     propY,
	"z":     propZ,
	"vx":    propVX,
	"vy":    propVY,
	"vz":    propVZ,
}

var stringProperties = map[string]stringField{
	"name":    fieldName,
	"type":    fieldType,
	"resname": fieldResname,
}
