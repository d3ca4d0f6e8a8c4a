// internal/service/catalog/domain/rule.go
package domain

// Fact 是报价时参与规则求值的事实集合。
type Fact struct {
	// Member 标识报价对象是否为会员
	Member bool `json:"member"`
	// Sessions 是系列的总回数
	Sessions int `json:"sessions"`
}

// RuleEngine 是价格模板适用条件的求值接口，由基础设施层实现。
// 表达式语法对领域层不可见，领域层只关心"适用/不适用"。
type RuleEngine interface {
	Evaluate(rule string, fact Fact) (bool, error)
}
