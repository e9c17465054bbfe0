// Package trace 为 keras.backend.function 构建的函数提供旁路事件记录：
// 每次调用按 Input → PreUpdate → Output → PostUpdate 的顺序上报到 Observer，
// 被包装函数的返回值与错误保持不变。
package trace

import "github.com/plaidml/plaidkeras/internal/tensor"

// StepName 是每次函数调用对应的活动名称。
const StepName = "vertexai::keras::Step"

// 事件角色。
const (
	RoleInput      = "Input"
	RolePreUpdate  = "PreUpdate"
	RoleOutput     = "Output"
	RolePostUpdate = "PostUpdate"
)

// Domain 返回某个后端的事件域名。
func Domain(backendName string) string {
	return "vertex.ai/plaidml/keras/" + backendName
}

// Step 标识一次函数调用，同一次调用的全部事件共享同一个 ID。
type Step struct {
	ID   string
	Name string
}

// Observer 接收一次调用中的各类事件。
type Observer interface {
	Input(step Step, value tensor.Tensor)
	PreUpdate(step Step, value tensor.Tensor)
	Output(step Step, value tensor.Tensor, comment string)
	PostUpdate(step Step, value tensor.Tensor, comment string)
}

// Nop 丢弃所有事件，未配置 trace 目的地时使用。
type Nop struct{}

func (Nop) Input(Step, tensor.Tensor)              {}
func (Nop) PreUpdate(Step, tensor.Tensor)          {}
func (Nop) Output(Step, tensor.Tensor, string)     {}
func (Nop) PostUpdate(Step, tensor.Tensor, string) {}
