package application_test

import (
	"testing"

	"itemservice/internal/service/item/application"
	"itemservice/internal/service/item/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissionRules_Check(t *testing.T) {
	rules, err := application.NewAdmissionRules([]string{
		"quantity > 0",
		"quantity <= 1000",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		quantity int64
		wantPass bool
		wantRule string
	}{
		{name: "within limits", quantity: 10, wantPass: true},
		{name: "at upper bound", quantity: 1000, wantPass: true},
		{name: "over limit", quantity: 1001, wantPass: false, wantRule: "quantity <= 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, rule, err := rules.Check(&domain.OrderItemEvent{OrderID: 1, ItemID: 1, Quantity: tt.quantity})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPass, pass)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestAdmissionRules_InvalidExpression(t *testing.T) {
	_, err := application.NewAdmissionRules([]string{"quantity >"})
	require.Error(t, err)
}

func TestAdmissionRules_EmptyRulesAlwaysPass(t *testing.T) {
	rules, err := application.NewAdmissionRules(nil)
	require.NoError(t, err)

	pass, _, err := rules.Check(&domain.OrderItemEvent{Quantity: -1})
	require.NoError(t, err)
	assert.True(t, pass, "no rules configured means no admission filtering")
}
