package types

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq    CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt    CommonFilterOperator = "lt"
	CommonFilterOperatorLte   CommonFilterOperator = "lte"
	CommonFilterOperatorGt    CommonFilterOperator = "gt"
	CommonFilterOperatorGte   CommonFilterOperator = "gte"
	CommonFilterOperatorRange CommonFilterOperator = "range"
	CommonFilterOperatorIn    CommonFilterOperator = "in"
)

// CommonFilter is the generic filter unit accepted by admin list APIs.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Build constructs a GORM expression. Filters with no values are skipped.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 {
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		// Fields addressing jsonb payload columns use -> / ->> operators and
		// cannot go through clause.Eq column quoting.
		if strings.Contains(f.Field, "->") {
			clause.Expr{SQL: fmt.Sprintf("%s = ?", f.Field), Vars: []interface{}{value}}.Build(builder)
		} else {
			clause.Eq{Column: f.Field, Value: value}.Build(builder)
		}
	case CommonFilterOperatorNotEq:
		clause.NotConditions{Exprs: []clause.Expression{clause.Eq{Column: f.Field, Value: value}}}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	default:
		return
	}
}
