package trace

import (
	"github.com/google/uuid"

	"github.com/plaidml/plaidkeras/internal/tensor"
)

// Instrument 返回一个新的函数工厂：它构建的每个函数在调用时先上报输入与更新前的变量值，
// 调用原函数后再上报输出与更新后的变量值，最后原样返回输出。
// describe 非空时，Output/PostUpdate 的注释会附带对应运算的描述。
func Instrument(factory tensor.FunctionFactory, obs Observer, describe func(tensor.Op) string) tensor.FunctionFactory {
	if obs == nil {
		obs = Nop{}
	}
	return func(inputs []*tensor.Placeholder, outputs []tensor.Op, updates []tensor.Update) (tensor.Function, error) {
		fn, err := factory(inputs, outputs, updates)
		if err != nil {
			return nil, err
		}
		ops := append([]tensor.Op(nil), outputs...)
		ups := append([]tensor.Update(nil), updates...)

		return func(values []tensor.Tensor) ([]tensor.Tensor, error) {
			step := Step{ID: uuid.NewString(), Name: StepName}
			for _, v := range values {
				obs.Input(step, v)
			}
			for _, u := range ups {
				obs.PreUpdate(step, u.Var.Value())
			}

			results, err := fn(values)
			if err != nil {
				return results, err
			}

			for i := 0; i < min(len(results), len(ops)); i++ {
				obs.Output(step, results[i], annotate(RoleOutput, describe, ops[i]))
			}
			for _, u := range ups {
				obs.PostUpdate(step, u.Var.Value(), annotate(RolePostUpdate, describe, u.Op))
			}
			return results, nil
		}, nil
	}
}

func annotate(role string, describe func(tensor.Op) string, op tensor.Op) string {
	if describe == nil {
		return role
	}
	return role + ": " + describe(op)
}
