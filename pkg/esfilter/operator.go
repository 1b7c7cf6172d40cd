package esfilter

// Operator selects the comparison a filter entry compiles to
type Operator uint8

const (
	OpDefault Operator = iota
	OpNot
	OpMin
	OpMax
	OpAny
	OpNone
	OpAll
)

var operatorNames = [...]string{
	OpDefault: DefaultOperator,
	OpNot:     "not",
	OpMin:     "min",
	OpMax:     "max",
	OpAny:     "any",
	OpNone:    "none",
	OpAll:     "all",
}

// Operators lists every supported operator in declaration order
func Operators() []Operator {
	return []Operator{OpDefault, OpNot, OpMin, OpMax, OpAny, OpNone, OpAll}
}

// ParseOperator resolves an operator name. Names are case-sensitive.
func ParseOperator(name string) (Operator, bool) {
	for op, n := range operatorNames {
		if n == name {
			return Operator(op), true
		}
	}
	return 0, false
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "unknown"
}

// Bucket reports which bool-query bucket the operator writes to
func (o Operator) Bucket() Bucket {
	switch o {
	case OpNot, OpNone:
		return MustNot
	}
	return Must
}

// Apply builds the clause for one filter entry. An Operator outside the
// declared set yields an UnknownOperatorError.
//
// default and not branch on the value shape. min and max always emit a
// range with the value as given. any always emits terms, none and all always
// emit term, whatever the value shape (a list is passed through to term).
func (o Operator) Apply(field string, v Value) (Bucket, Clause, error) {
	switch o {
	case OpDefault, OpNot:
		return o.Bucket(), shapeClause(field, v), nil
	case OpMin:
		return Must, rangeClause(field, boundGte, v), nil
	case OpMax:
		return Must, rangeClause(field, boundLte, v), nil
	case OpAny:
		return Must, termsClause(field, v), nil
	case OpNone:
		return MustNot, termClause(field, v), nil
	case OpAll:
		return Must, termClause(field, v), nil
	}
	return 0, Clause{}, &UnknownOperatorError{Key: field, Operator: o.String()}
}

func shapeClause(field string, v Value) Clause {
	switch v.Kind() {
	case KindNull:
		return missingClause(field)
	case KindList:
		return termsClause(field, v)
	}
	return termClause(field, v)
}
