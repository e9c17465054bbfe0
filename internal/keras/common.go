package keras

import (
	"fmt"
	"sync"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/modsys"
)

// commonState 保存 keras.backend.common 的可变全局设置，每个 System 各一份。
type commonState struct {
	mu          sync.RWMutex
	floatx      string
	epsilon     float64
	imageFormat string
}

func populateCommon(_ *modsys.System, mod *modsys.Module) error {
	st := &commonState{floatx: "float32", epsilon: 1e-7, imageFormat: "channels_last"}

	mod.SetAttr(backend.AttrFloatx, backend.NameFunc(func() string {
		st.mu.RLock()
		defer st.mu.RUnlock()
		return st.floatx
	}))
	mod.SetAttr("set_floatx", func(value string) error {
		switch value {
		case "float16", "float32", "float64":
		default:
			return fmt.Errorf("unknown floatx type: %s", value)
		}
		st.mu.Lock()
		st.floatx = value
		st.mu.Unlock()
		return nil
	})
	mod.SetAttr(backend.AttrEpsilon, backend.FloatFunc(func() float64 {
		st.mu.RLock()
		defer st.mu.RUnlock()
		return st.epsilon
	}))
	mod.SetAttr("set_epsilon", func(e float64) {
		st.mu.Lock()
		st.epsilon = e
		st.mu.Unlock()
	})
	mod.SetAttr("image_data_format", backend.NameFunc(func() string {
		st.mu.RLock()
		defer st.mu.RUnlock()
		return st.imageFormat
	}))
	mod.SetAttr("set_image_data_format", func(format string) error {
		if format != "channels_last" && format != "channels_first" {
			return fmt.Errorf("unknown data_format: %s", format)
		}
		st.mu.Lock()
		st.imageFormat = format
		st.mu.Unlock()
		return nil
	})
	return nil
}
