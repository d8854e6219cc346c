/*
Copyright © 2026 the Sketch authors.
This file is part of Sketch.

Sketch is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Sketch is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Sketch.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package formula evaluates the variable layer of a sketch: a table of
// named values where each value is either a number or an expression
// that may refer to other variables by name.
package formula

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
)

var nameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsName reports whether s is a valid variable name: a letter or
// underscore followed by letters, digits, or underscores.
func IsName(s string) bool { return nameRE.MatchString(s) }

// Vars is a table of named variables. Values are float64 numbers or
// expression strings. Resolution never fails: anything that cannot be
// evaluated resolves to NaN, which callers treat as "no value".
type Vars struct {
	m map[string]interface{}
}

// NewVars returns an empty variable table.
func NewVars() *Vars {
	return &Vars{m: make(map[string]interface{})}
}

// Set adds or replaces the variable name. The value must be a number
// or a string holding an expression.
func (v *Vars) Set(name string, value interface{}) error {
	if !IsName(name) {
		return fmt.Errorf("sketch: invalid variable name %q", name)
	}
	switch val := value.(type) {
	case float64:
	case string:
	case float32:
		value = float64(val)
	case int:
		value = float64(val)
	case int64:
		value = float64(val)
	default:
		return fmt.Errorf("sketch: variable %s: unsupported value type %T", name, value)
	}
	v.m[name] = value
	return nil
}

// Get returns the raw (unresolved) value of name.
func (v *Vars) Get(name string) (interface{}, bool) {
	val, ok := v.m[name]
	return val, ok
}

// Delete removes name from the table. Expressions elsewhere that refer
// to it will resolve to NaN afterwards.
func (v *Vars) Delete(name string) { delete(v.m, name) }

// Clear removes all variables.
func (v *Vars) Clear() { v.m = make(map[string]interface{}) }

// Len returns the number of variables in the table.
func (v *Vars) Len() int { return len(v.m) }

// Names returns the variable names in alphabetical order.
func (v *Vars) Names() []string {
	names := make([]string, 0, len(v.m))
	for name := range v.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the raw variable table.
func (v *Vars) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(v.m))
	for name, val := range v.m {
		m[name] = val
	}
	return m
}

// Rename changes the name of a variable and rewrites whole-word
// references to it inside every expression-valued variable in the
// table. References held outside the table (constraint targets,
// dimension formulas) are the caller's to rewrite.
func (v *Vars) Rename(oldName, newName string) {
	if val, ok := v.m[oldName]; ok {
		delete(v.m, oldName)
		v.m[newName] = val
	}
	for name, val := range v.m {
		if s, ok := val.(string); ok {
			v.m[name] = ReplaceWholeWord(s, oldName, newName)
		}
	}
}

// Resolve evaluates value to a number. Numbers resolve to themselves;
// a string naming a variable resolves that variable; any other string
// is evaluated as an expression. Unknown names, parse errors, and
// circular references all resolve to NaN.
func (v *Vars) Resolve(value interface{}) float64 {
	return v.resolveValue(value, make(map[string]bool))
}

func (v *Vars) resolveValue(value interface{}, visiting map[string]bool) float64 {
	switch val := value.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		if IsName(s) {
			return v.resolveName(s, visiting)
		}
		return v.evalExpr(s, visiting)
	default:
		return math.NaN()
	}
}

// resolveName looks up a single identifier. visiting holds the names
// currently on the resolution stack so that cycles come back as NaN
// instead of recursing forever.
func (v *Vars) resolveName(name string, visiting map[string]bool) float64 {
	if visiting[name] {
		return math.NaN()
	}
	if val, ok := v.m[name]; ok {
		visiting[name] = true
		r := v.resolveValue(val, visiting)
		delete(visiting, name)
		return r
	}
	// Predefined constants; user variables above shadow them.
	switch name {
	case "pi":
		return math.Pi
	case "e":
		return math.E
	}
	return math.NaN()
}

func (v *Vars) evalExpr(s string, visiting map[string]bool) float64 {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(s, exprFuncs)
	if err != nil {
		return math.NaN()
	}
	params := make(map[string]interface{})
	for _, name := range exp.Vars() {
		params[name] = v.resolveName(name, visiting)
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return math.NaN()
	}
	f, ok := result.(float64)
	if !ok {
		return math.NaN()
	}
	return f
}

// ReplaceWholeWord replaces occurrences of old in s with new, but only
// where old stands alone as an identifier; occurrences embedded in
// longer words are left untouched.
func ReplaceWholeWord(s, old, new string) string {
	if old == "" || !strings.Contains(s, old) {
		return s
	}
	isWord := func(b byte) bool {
		return b == '_' || ('0' <= b && b <= '9') ||
			('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
	}
	var out strings.Builder
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], old)
		if j < 0 {
			out.WriteString(s[i:])
			break
		}
		j += i
		before := j == 0 || !isWord(s[j-1])
		after := j+len(old) == len(s) || !isWord(s[j+len(old)])
		if before && after {
			out.WriteString(s[i:j])
			out.WriteString(new)
		} else {
			out.WriteString(s[i : j+len(old)])
		}
		i = j + len(old)
	}
	return out.String()
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sketch: got %d arguments for %s(), but need 1", len(args), name)
		}
		a, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("sketch: argument to %s() is not a number", name)
		}
		return f(a), nil
	}
}

func twoArg(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("sketch: got %d arguments for %s(), but need 2", len(args), name)
		}
		a, aok := args[0].(float64)
		b, bok := args[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("sketch: argument to %s() is not a number", name)
		}
		return f(a, b), nil
	}
}

func spread(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("sketch: got no arguments for %s()", name)
		}
		r, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("sketch: argument to %s() is not a number", name)
		}
		for _, arg := range args[1:] {
			a, ok := arg.(float64)
			if !ok {
				return nil, fmt.Errorf("sketch: argument to %s() is not a number", name)
			}
			r = f(r, a)
		}
		return r, nil
	}
}

// exprFuncs is the function set available inside formula expressions.
var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":   oneArg("sin", math.Sin),
	"cos":   oneArg("cos", math.Cos),
	"tan":   oneArg("tan", math.Tan),
	"asin":  oneArg("asin", math.Asin),
	"acos":  oneArg("acos", math.Acos),
	"atan":  oneArg("atan", math.Atan),
	"sqrt":  oneArg("sqrt", math.Sqrt),
	"abs":   oneArg("abs", math.Abs),
	"floor": oneArg("floor", math.Floor),
	"ceil":  oneArg("ceil", math.Ceil),
	"round": oneArg("round", math.Round),
	"atan2": twoArg("atan2", math.Atan2),
	"pow":   twoArg("pow", math.Pow),
	"min":   spread("min", math.Min),
	"max":   spread("max", math.Max),
}
