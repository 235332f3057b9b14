// internal/service/notification/domain/rule.go
package domain

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DeliveryRule 是商家配置的投递规则，一个对
// (plantCount, hour) 求值的 CEL 布尔表达式，
// 例如 "plantCount >= 3 && hour >= 8 && hour <= 21"。
// 空表达式表示无条件投递。
type DeliveryRule struct {
	program cel.Program
}

// CompileDeliveryRule 编译规则表达式。
func CompileDeliveryRule(expr string) (*DeliveryRule, error) {
	if expr == "" {
		return &DeliveryRule{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("plantCount", cel.IntType),
		cel.Variable("hour", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid delivery rule %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("delivery rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}
	return &DeliveryRule{program: program}, nil
}

// Allow 对给定输入求值。无规则时恒为 true。
func (r *DeliveryRule) Allow(plantCount, hour int) (bool, error) {
	if r.program == nil {
		return true, nil
	}

	out, _, err := r.program.Eval(map[string]interface{}{
		"plantCount": plantCount,
		"hour":       hour,
	})
	if err != nil {
		return false, fmt.Errorf("delivery rule evaluation failed: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("delivery rule returned %T, want bool", out.Value())
	}
	return allowed, nil
}
