package record

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// inputSchema is the form contract for user input. The email pattern is an
// unanchored search, so any "x@y.z" run of non-space characters passes.
const inputSchema = `
#Email: string & != "" & =~ #"\S+@\S+\.\S+"#

#Input: {
	name:          string & != ""
	email:         #Email
	organization?: string
}

#Patch: {
	name?:         string & != ""
	email?:        #Email
	organization?: string
}
`

// Reason categorises a validation failure.
type Reason string

const (
	ReasonRequired     Reason = "required"
	ReasonInvalidEmail Reason = "invalid_email"
)

// ValidationError reports input rejected at the form boundary.
// It never reaches the store.
type ValidationError struct {
	Reason Reason
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Message()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text for the failure.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonRequired:
		return "Name and email are required"
	case ReasonInvalidEmail:
		return "Please enter a valid email"
	default:
		return "Invalid input"
	}
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validator checks Input and Patch values against the CUE form schema.
// A Validator is not safe for concurrent use.
type Validator struct {
	ctx   *cue.Context
	input cue.Value
	patch cue.Value
}

// NewValidator compiles the form schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(inputSchema, cue.Filename("input.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile input schema: %w", err)
	}
	return &Validator{
		ctx:   ctx,
		input: v.LookupPath(cue.ParsePath("#Input")),
		patch: v.LookupPath(cue.ParsePath("#Patch")),
	}, nil
}

// MustNewValidator is like NewValidator but panics on error.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateInput checks a new record's fields. Callers trim before validating.
func (v *Validator) ValidateInput(in Input) error {
	err := v.check(v.input, in)
	if err == nil {
		return nil
	}
	reason := ReasonInvalidEmail
	if in.Name == "" || in.Email == "" {
		reason = ReasonRequired
	}
	return &ValidationError{Reason: reason, Fields: failedFields(err), Err: err}
}

// ValidatePatch checks only the keys present in p.
func (v *Validator) ValidatePatch(p Patch) error {
	err := v.check(v.patch, p)
	if err == nil {
		return nil
	}
	reason := ReasonInvalidEmail
	if (p.Name != nil && *p.Name == "") || (p.Email != nil && *p.Email == "") {
		reason = ReasonRequired
	}
	return &ValidationError{Reason: reason, Fields: failedFields(err), Err: err}
}

func (v *Validator) check(schema cue.Value, x any) error {
	val := v.ctx.Encode(x)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	return schema.Unify(val).Validate(cue.Concrete(true))
}

// failedFields lists the fields named by CUE error paths. Paths are rooted at
// the schema definition, so the field is the last selector.
func failedFields(err error) []string {
	var fields []string
	for _, e := range cueerrors.Errors(err) {
		path := e.Path()
		if len(path) == 0 {
			continue
		}
		field := path[len(path)-1]
		if strings.HasPrefix(field, "#") || slices.Contains(fields, field) {
			continue
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}
