package cache

import (
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// filterSet compiles and caches the boolean expressions used to refine
// a listed page client-side (saved dashboard filters). Programs are
// cached per expression string since the same saved filter is applied
// on every refresh.
type filterSet struct {
	mu       sync.Mutex
	programs map[string]*exprvm.Program
}

func newFilterSet() *filterSet {
	return &filterSet{programs: make(map[string]*exprvm.Program)}
}

func (f *filterSet) loadOrCompile(expression string) (*exprvm.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.programs[expression]; ok {
		return p, nil
	}

	p, err := exprlang.Compile(expression, exprlang.AsBool())
	if err != nil {
		return nil, remote.NewFailure(remote.CategoryValidation,
			"invalid filter expression: %v", err)
	}
	f.programs[expression] = p
	return p, nil
}

// Match evaluates the expression against one record. The record's
// exported fields are the expression environment.
func (f *filterSet) Match(expression string, rec any) (bool, error) {
	p, err := f.loadOrCompile(expression)
	if err != nil {
		return false, err
	}

	out, err := exprlang.Run(p, rec)
	if err != nil {
		return false, remote.NewFailure(remote.CategoryValidation,
			"filter expression failed: %v", err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, remote.NewFailure(remote.CategoryValidation,
			"filter expression must yield a boolean")
	}
	return matched, nil
}
