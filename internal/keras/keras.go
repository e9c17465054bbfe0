// Package keras 挂载宿主框架的模块树：keras、keras.utils.conv_utils、默认的
// keras.backend，以及 keras.backend 下的 common 与 theano_backend 子模块。
//
// 这些模块对替换机制来说是黑盒，只通过 modsys.System 被导入。
package keras

import (
	"path"

	"github.com/plaidml/plaidkeras/internal/modsys"
)

// Mount 将 keras 包树挂载到 root（通常是 site-packages）之下。
func Mount(sys *modsys.System, root string) {
	base := path.Join(root, "keras")
	sys.Mount(base, modsys.Source{Package: true, Populate: populatePackage})
	sys.Mount(path.Join(base, "utils"), modsys.Source{Package: true, Populate: populateUtils})
	sys.Mount(path.Join(base, "utils", "conv_utils"), modsys.Source{Populate: populateConvUtils})
	sys.Mount(path.Join(base, "backend"), modsys.Source{Package: true, Populate: populateDefaultBackend})
	sys.Mount(path.Join(base, "backend", "common"), modsys.Source{Populate: populateCommon})
	sys.Mount(path.Join(base, "backend", "theano_backend"), modsys.Source{Populate: populateTheano})
}

// populatePackage 与真实 keras 一样，在包初始化时就导入 keras.backend，
// 因此替换钩子必须在第一次 import keras 之前安装。
func populatePackage(sys *modsys.System, mod *modsys.Module) error {
	mod.SetAttr("__version__", "2.0.8")
	if _, err := sys.Import("keras.backend"); err != nil {
		return err
	}
	return nil
}

func populateUtils(sys *modsys.System, mod *modsys.Module) error {
	_, err := sys.Import("keras.utils.conv_utils")
	return err
}
