package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// whereEnv is the environment a Where expression sees, one per record.
type whereEnv struct {
	ID           int64  `expr:"id"`
	Name         string `expr:"name"`
	Email        string `expr:"email"`
	Organization string `expr:"organization"`
	Origin       string `expr:"origin"`
	Local        bool   `expr:"local"`
}

func newWhereEnv(r record.Record) whereEnv {
	return whereEnv{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Organization: r.Organization,
		Origin:       string(r.Origin),
		Local:        r.IsLocal(),
	}
}

// Predicate is a compiled boolean expression over a record, for example
//
//	local && email endsWith ".io"
//	organization == "Deckow-Crist" || id > 8
//
// Available names: id, name, email, organization, origin, local.
type Predicate struct {
	source  string
	program *vm.Program
}

// CompileWhere compiles source. Unknown names, syntax errors and non-boolean
// results are reported here rather than at match time.
func CompileWhere(source string) (*Predicate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("where: expression must not be empty")
	}
	program, err := expr.Compile(source, expr.Env(whereEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("where: compile %q: %w", source, err)
	}
	return &Predicate{source: source, program: program}, nil
}

// String returns the expression source.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Match evaluates the predicate against r.
func (p *Predicate) Match(r record.Record) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, newWhereEnv(r))
	if err != nil {
		return false, fmt.Errorf("where: evaluate %q on record %d: %w", p.source, r.ID, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
