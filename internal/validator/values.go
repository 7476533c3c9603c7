package validator

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"github.com/goccy/go-json"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

// valueChecker holds compiled CUE constraints per data type. A cue.Context is
// not safe for concurrent use, so one checker lives for one validation call.
type valueChecker struct {
	ctx         *cue.Context
	constraints map[*language.DataType]cue.Value
}

func newValueChecker() *valueChecker {
	return &valueChecker{constraints: make(map[*language.DataType]cue.Value)}
}

// constraintFor returns the CUE expression a serialized value of d must satisfy.
func constraintFor(d *language.DataType) string {
	if d.Kind == language.EnumerationKind {
		if len(d.Literals) == 0 {
			return ""
		}
		quoted := make([]string, len(d.Literals))
		for i, lit := range d.Literals {
			quoted[i] = strconv.Quote(lit)
		}
		return strings.Join(quoted, " | ")
	}
	switch d.ID {
	case language.BuiltinBooleanID:
		return `"true" | "false"`
	case language.BuiltinIntegerID:
		return `=~"^-?[0-9]+$"`
	default:
		return "string"
	}
}

// check returns an empty string when value is valid for d, else a message.
func (vc *valueChecker) check(d *language.DataType, value string) string {
	if d.ID == language.BuiltinJSONID {
		if !json.Valid([]byte(value)) {
			return fmt.Sprintf("value %q is not valid JSON", value)
		}
		return ""
	}
	if d.Kind == language.EnumerationKind && len(d.Literals) == 0 {
		return fmt.Sprintf("enumeration %s has no literals", d.Name)
	}

	if vc.ctx == nil {
		vc.ctx = cuecontext.New()
	}
	constraint, ok := vc.constraints[d]
	if !ok {
		constraint = vc.ctx.CompileString(constraintFor(d))
		vc.constraints[d] = constraint
	}
	if err := constraint.Err(); err != nil {
		return fmt.Sprintf("invalid constraint for %s: %v", d.Name, err)
	}

	res := constraint.Unify(vc.ctx.Encode(value))
	if err := res.Validate(cue.Concrete(true)); err != nil {
		msg := fmt.Sprintf("value %q is not a valid %s", value, d.Name)
		if list := errors.Errors(err); len(list) > 0 {
			msg += ": " + list[0].Error()
		}
		return msg
	}
	return ""
}
