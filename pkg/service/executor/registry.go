package executor

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
)

// Registry maps operation identifiers to their executors. The mapping is
// explicit and fixed at startup: an operation with no registered executor
// can be staged but never executed.
type Registry struct {
	executors map[string]interfaces.ToolExecutor
}

func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]interfaces.ToolExecutor),
	}
}

// Register binds an executor to an operation. Rebinding is an error; the
// registry is assembled once during startup and read-only afterwards.
func (r *Registry) Register(operation string, exec interfaces.ToolExecutor) error {
	if operation == "" {
		return goerr.New("operation must not be empty")
	}
	if exec == nil {
		return goerr.New("executor must not be nil", goerr.V("operation", operation))
	}
	if _, ok := r.executors[operation]; ok {
		return goerr.New("executor already registered", goerr.V("operation", operation))
	}
	r.executors[operation] = exec
	return nil
}

func (r *Registry) Get(operation string) (interfaces.ToolExecutor, bool) {
	exec, ok := r.executors[operation]
	return exec, ok
}

// Operations returns the registered operation identifiers in sorted order
func (r *Registry) Operations() []string {
	ops := make([]string, 0, len(r.executors))
	for op := range r.executors {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Func adapts a plain function to the ToolExecutor interface
type Func func(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error)

func (f Func) Execute(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error) {
	return f(ctx, operation, args)
}
