// internal/service/item/application/admission.go
package application

import (
	"fmt"

	"itemservice/internal/service/item/domain"

	"github.com/google/cel-go/cel"
)

// AdmissionRules 用 CEL 表达式对入站请求做准入校验。
// 规则来自配置，例如 "quantity > 0 && quantity <= 1000"。
// 这是把第三方表达式引擎适配到领域校验的适配器。
type AdmissionRules struct {
	rules []compiledRule
}

type compiledRule struct {
	expr    string
	program cel.Program
}

// NewAdmissionRules 在启动时编译所有规则，规则语法错误直接失败
func NewAdmissionRules(exprs []string) (*AdmissionRules, error) {
	env, err := cel.NewEnv(
		cel.Variable("orderId", cel.IntType),
		cel.Variable("itemId", cel.IntType),
		cel.Variable("shopId", cel.IntType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("customerAccountId", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	rules := make([]compiledRule, 0, len(exprs))
	for _, expr := range exprs {
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("invalid admission rule %q: %w", expr, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build program for rule %q: %w", expr, err)
		}
		rules = append(rules, compiledRule{expr: expr, program: prg})
	}
	return &AdmissionRules{rules: rules}, nil
}

// Check 对事件执行所有规则，第一条不通过的规则表达式作为拒绝原因返回
func (r *AdmissionRules) Check(event *domain.OrderItemEvent) (bool, string, error) {
	if r == nil || len(r.rules) == 0 {
		return true, "", nil
	}

	fact := map[string]interface{}{
		"orderId":           event.OrderID,
		"itemId":            event.ItemID,
		"shopId":            event.ShopID,
		"quantity":          event.Quantity,
		"customerAccountId": event.CustomerAccountID,
	}

	for _, rule := range r.rules {
		out, _, err := rule.program.Eval(fact)
		if err != nil {
			return false, rule.expr, fmt.Errorf("failed to evaluate rule %q: %w", rule.expr, err)
		}
		pass, ok := out.Value().(bool)
		if !ok {
			return false, rule.expr, fmt.Errorf("rule %q did not evaluate to bool: %T", rule.expr, out.Value())
		}
		if !pass {
			return false, rule.expr, nil
		}
	}
	return true, "", nil
}
