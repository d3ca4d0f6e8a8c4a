// internal/service/catalog/infrastructure/rule/cel_engine_test.go
package rule

import (
	"testing"

	"manabi/internal/service/catalog/domain"
)

func TestCELRuleEngine_Evaluate(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("创建规则引擎失败: %v", err)
	}

	cases := []struct {
		name string
		expr string
		fact domain.Fact
		want bool
	}{
		{"会员限定规则命中", "member == true", domain.Fact{Member: true}, true},
		{"会员限定规则不命中", "member == true", domain.Fact{Member: false}, false},
		{"回数门槛规则", "sessions >= 8", domain.Fact{Sessions: 10}, true},
		{"组合规则", "member || sessions >= 8", domain.Fact{Member: false, Sessions: 6}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := engine.Evaluate(c.expr, c.fact)
			if err != nil {
				t.Fatalf("求值失败: %v", err)
			}
			if got != c.want {
				t.Errorf("%s / %+v: 期望 %v, 实际 %v", c.expr, c.fact, c.want, got)
			}
		})
	}
}

func TestCELRuleEngine_InvalidExpression(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("创建规则引擎失败: %v", err)
	}
	if _, err := engine.Evaluate("member +", domain.Fact{}); err == nil {
		t.Error("非法表达式应返回错误")
	}
	if _, err := engine.Evaluate("sessions + 1", domain.Fact{Sessions: 1}); err == nil {
		t.Error("非布尔结果应返回错误")
	}
}
