// internal/service/catalog/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"manabi/internal/service/catalog/domain"
)

// CELRuleEngineAdapter 是 domain.RuleEngine 的 CEL 实现。
// 模板上的适用规则是形如 `member || sessions >= 8` 的表达式，
// 在报价时对事实求值。表达式按原文缓存编译结果，避免每次报价重新编译。
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngineAdapter 创建规则引擎适配器，声明规则可见的事实变量。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("member", cel.BoolType),
		cel.Variable("sessions", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel environment: %w", err)
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现了 domain.RuleEngine 接口。
func (a *CELRuleEngineAdapter) Evaluate(ruleExpr string, fact domain.Fact) (bool, error) {
	prg, err := a.program(ruleExpr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"member":   fact.Member,
		"sessions": fact.Sessions,
	})
	if err != nil {
		return false, fmt.Errorf("rule evaluation failed: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", ruleExpr)
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) program(ruleExpr string) (cel.Program, error) {
	a.mu.RLock()
	prg, ok := a.programs[ruleExpr]
	a.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := a.env.Compile(ruleExpr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid rule expression %q: %w", ruleExpr, iss.Err())
	}
	prg, err := a.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	a.mu.Lock()
	a.programs[ruleExpr] = prg
	a.mu.Unlock()
	return prg, nil
}
