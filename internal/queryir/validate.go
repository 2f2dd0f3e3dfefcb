package queryir

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// identPattern matches a table or an optionally qualified column.
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

	// columnPattern matches a projection entry: "*", "t.*", "c", "t.c",
	// each optionally followed by " AS alias".
	columnPattern = regexp.MustCompile(`^(\*|[A-Za-z_][A-Za-z0-9_]*(\.([A-Za-z_][A-Za-z0-9_]*|\*))?)( AS [A-Za-z_][A-Za-z0-9_]*)?$`)

	tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// allowedOps is the closed set of comparison operators.
var allowedOps = map[string]bool{
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

// ValidationError lists every problem found in a query.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + strings.Join(e.Problems, "; ")
}

// Validate checks that a query only references safe identifiers and
// supported operators. Identifiers end up verbatim in generated SQL, so
// anything outside the identifier grammar is rejected here rather than
// escaped later.
//
// Validate is a pure function with no side effects. It returns nil or a
// *ValidationError.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Insert:
		v.validateInsert(query)
	case *Insert:
		v.validateInsert(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.checkTable("from", sel.From)
	for i, j := range sel.Joins {
		v.checkTable(fmt.Sprintf("join[%d] table", i), j.Table)
		v.checkField(fmt.Sprintf("join[%d] left", i), j.Left)
		v.checkField(fmt.Sprintf("join[%d] right", i), j.Right)
		v.checkOp(j.Op)
	}
	for _, c := range sel.Columns {
		if !columnPattern.MatchString(c) {
			v.addProblem("invalid column %q", c)
		}
	}
	for _, o := range sel.OrderBy {
		v.checkField("order by", o.Field)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validateInsert(ins Insert) {
	v.checkTable("into", ins.Into)
	if len(ins.Values) == 0 {
		v.addProblem("insert into %q has no values", ins.Into)
	}
	for col := range ins.Values {
		if !tablePattern.MatchString(col) {
			v.addProblem("invalid insert column %q", col)
		}
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		// nil predicates are valid (no filter)
	case Equals:
		v.checkField("field", pred.Field)
	case *Equals:
		v.checkField("field", pred.Field)
	case Compare:
		v.checkField("field", pred.Field)
		v.checkOp(pred.Op)
	case *Compare:
		v.checkField("field", pred.Field)
		v.checkOp(pred.Op)
	case In:
		v.checkField("field", pred.Field)
	case *In:
		v.checkField("field", pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) checkTable(what, name string) {
	if name == "" {
		v.addProblem("%s is empty", what)
		return
	}
	if !tablePattern.MatchString(name) {
		v.addProblem("invalid %s %q", what, name)
	}
}

func (v *validator) checkField(what, name string) {
	if !identPattern.MatchString(name) {
		v.addProblem("invalid %s %q", what, name)
	}
}

func (v *validator) checkOp(op string) {
	if !allowedOps[op] {
		v.addProblem("unsupported operator %q", op)
	}
}
