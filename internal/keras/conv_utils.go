package keras

import (
	"fmt"

	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/tensor"
)

// KernelConverter 是 conv_utils.convert_kernel 的签名。
type KernelConverter = func(kernel tensor.Tensor) tensor.Tensor

// OutputLengthFunc 是 conv_utils.conv_output_length 的签名。
type OutputLengthFunc = func(inputLength, filterSize int, padding string, stride int) (int, error)

func populateConvUtils(sys *modsys.System, mod *modsys.Module) error {
	k, err := sys.Import("keras.backend")
	if err != nil {
		return err
	}
	mod.SetAttr("K", k)
	mod.SetAttr("convert_kernel", KernelConverter(tensor.Flip))
	mod.SetAttr("conv_output_length", OutputLengthFunc(convOutputLength))
	return nil
}

func convOutputLength(inputLength, filterSize int, padding string, stride int) (int, error) {
	if stride <= 0 {
		return 0, fmt.Errorf("stride must be positive, got %d", stride)
	}
	var length int
	switch padding {
	case "same":
		length = inputLength
	case "valid":
		length = inputLength - filterSize + 1
	case "full":
		length = inputLength + filterSize - 1
	default:
		return 0, fmt.Errorf("unsupported padding %q", padding)
	}
	return (length + stride - 1) / stride, nil
}
