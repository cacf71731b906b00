// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package script compiles Go expressions into column extractors using the
// yaegi interpreter. An expression sees the current row as
//
//	row map[string]interface{}
//
// keyed by column name, and may use the fmt, math, strconv and strings
// packages, e.g. `strings.ToUpper(row["name"].(string))`.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var (
	// ErrEmptyExpression is returned when an expression is blank.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrCompile is returned when an expression does not compile.
	ErrCompile = errors.New("expression does not compile")

	// ErrEval is returned when an expression panics while evaluating.
	ErrEval = errors.New("expression failed")
)

const programTemplate = `package column

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.ToUpper
)

func Eval(row map[string]interface{}) interface{} {
	return %s
}
`

// Program is a compiled expression.
type Program struct {
	expr string
	fn   func(map[string]interface{}) interface{}
}

// Compile interprets expr as the body of a function returning one value.
func Compile(expr string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}

	if _, err := i.Eval(fmt.Sprintf(programTemplate, expr)); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, expr, err)
	}

	v, err := i.Eval("column.Eval")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, expr, err)
	}
	fn, ok := v.Interface().(func(map[string]interface{}) interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q: unexpected function type %s", ErrCompile, expr, v.Type())
	}

	return &Program{expr: expr, fn: fn}, nil
}

// String returns the source expression.
func (p *Program) String() string {
	return p.expr
}

// Eval runs the expression against row.
func (p *Program) Eval(row map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %q: %v", ErrEval, p.expr, r)
		}
	}()
	return p.fn(row), nil
}
