package verbscript

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/controllib"
	"github.com/cwbudde/verbscript/internal/stdlib/corelib"
	"github.com/cwbudde/verbscript/internal/stdlib/jsonlib"
	"github.com/cwbudde/verbscript/internal/stdlib/listlib"
	"github.com/cwbudde/verbscript/internal/stdlib/mathlib"
	"github.com/cwbudde/verbscript/internal/stdlib/objlib"
	"github.com/cwbudde/verbscript/internal/stdlib/strlib"
	"github.com/cwbudde/verbscript/internal/stdlib/timelib"
)

// libraryName names one of the opcode libraries internal/stdlib.RegisterAll
// wires unconditionally. A Profile lists the subset it wants exposed,
// letting a sandboxed embedding leave out, say, jsonlib or timelib
// entirely rather than rely on the script never calling into them.
type libraryName string

const (
	LibCore    libraryName = "core"
	LibControl libraryName = "control"
	LibMath    libraryName = "math"
	LibStr     libraryName = "str"
	LibList    libraryName = "list"
	LibObj     libraryName = "obj"
	LibTime    libraryName = "time"
	LibJSON    libraryName = "json"
)

// Profile is a YAML-loadable opcode-table selection: which of the standard
// libraries a given embedding exposes to scripts. Fields use the short
// names above so a profile file reads as:
//
//	libraries: [core, control, math, str, list, obj]
type Profile struct {
	Libraries []libraryName `yaml:"libraries"`
}

// LoadProfile reads a Profile from a YAML file at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if len(p.Libraries) == 0 {
		return nil, fmt.Errorf("profile %s: libraries list is empty", path)
	}
	return &p, nil
}

// register wires only the libraries named in p into r, mirroring
// internal/stdlib.RegisterAll's unconditional wiring but selectively.
func (p *Profile) register(r *registry.Registry, it *interp.Interpreter) {
	want := make(map[libraryName]bool, len(p.Libraries))
	for _, l := range p.Libraries {
		want[l] = true
	}

	if want[LibCore] {
		corelib.Register(r)
	}
	if want[LibControl] {
		controllib.Register(r, it)
	}
	if want[LibMath] {
		mathlib.Register(r)
	}
	if want[LibStr] {
		strlib.Register(r)
	}
	if want[LibList] {
		apply := func(ec ast.EvalContext, fn *ast.Value, args []*ast.Value) (*ast.Value, error) {
			return controllib.Apply(it, ec, fn, args)
		}
		listlib.Register(r, apply)
	}
	if want[LibObj] {
		objlib.Register(r)
	}
	if want[LibTime] {
		timelib.Register(r)
	}
	if want[LibJSON] {
		jsonlib.Register(r)
	}
}
