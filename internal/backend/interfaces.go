package backend

import "strings"

// Kind 是已知后端的封闭枚举。
type Kind int

const (
	KindUnknown Kind = iota
	KindPlaidML
	KindTheano
)

// CommonPath 是非默认后端额外注入的公共定义模块。
const CommonPath = "keras.backend.common"

// Kinds 返回全部已知后端。
func Kinds() []Kind {
	return []Kind{KindPlaidML, KindTheano}
}

// String 返回后端名称。
func (k Kind) String() string {
	switch k {
	case KindPlaidML:
		return "plaidml"
	case KindTheano:
		return "theano"
	default:
		return "unknown"
	}
}

// Descriptor 返回该后端的静态描述。
func (k Kind) Descriptor() Descriptor {
	switch k {
	case KindPlaidML:
		return Descriptor{
			Kind:        KindPlaidML,
			Name:        k.String(),
			ImplPath:    "plaidml.keras.backend",
			Description: "PlaidML tensor backend bundled with plaidml.keras",
			Default:     true,
		}
	case KindTheano:
		return Descriptor{
			Kind:        KindTheano,
			Name:        k.String(),
			ImplPath:    "keras.backend.theano_backend",
			Description: "Theano backend shipped with Keras, used for output comparison",
		}
	default:
		return Descriptor{Kind: KindUnknown, Name: k.String()}
	}
}

// ParseKind 将外部输入的名称映射到 Kind，未知名称返回 KindUnknown。
func ParseKind(name string) Kind {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if k.String() == normalized {
			return k
		}
	}
	return KindUnknown
}

// Descriptor 记录一个后端的静态信息：名称与其实现模块的点分路径。
type Descriptor struct {
	Kind        Kind
	Name        string
	ImplPath    string
	Description string
	// Default 标记默认后端；非默认后端需要额外注入 CommonPath 与 backend() 访问器。
	Default bool
}

// DefaultName 返回默认后端名称。
func DefaultName() string {
	return KindPlaidML.String()
}
