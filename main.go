package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/plaidml/plaidkeras/internal/backend"
	"github.com/plaidml/plaidkeras/internal/config"
	"github.com/plaidml/plaidkeras/internal/hook"
	"github.com/plaidml/plaidkeras/internal/logging"
	"github.com/plaidml/plaidkeras/internal/modsys"
	"github.com/plaidml/plaidkeras/internal/server"
	"github.com/plaidml/plaidkeras/internal/server/routes"
	"github.com/plaidml/plaidkeras/internal/site"
	"github.com/plaidml/plaidkeras/internal/trace"
	"github.com/plaidml/plaidkeras/internal/version"
)

// envConfigPath 指定配置文件路径，优先级低于 -config。
const envConfigPath = "PLAIDKERAS_CONFIG"

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath   string
	backend      string
	target       string
	traceFile    string
	checkOnly    bool
	listBackends bool
	serve        bool
	showVersion  bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}
	if opts.listBackends {
		printBackends()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}
	if err := applyOverrides(cfg, opts); err != nil {
		fmt.Fprintf(stdErr, "参数无效: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		for k, v := range logging.HookFields(cfg.Hook.Target, cfg.Hook.Backend, cfg.Hook.TraceFile) {
			fields[k] = v
		}
		fields["patches"] = cfg.Hook.Patches
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 模块系统 → 安装钩子 → 导入目标模块 → 可选的诊断服务。
	// 钩子必须先于任何对宿主框架的导入安装。
	sys := site.NewSystem(logger)
	finder, err := hook.Install(sys, hook.Options{
		Target:  cfg.Hook.Target,
		Backend: cfg.Hook.Backend,
		Trace:   traceDestination(cfg.Hook),
		Patches: cfg.Hook.Patches,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "安装后端失败: %v\n", err)
		return 1
	}
	defer func() {
		if err := finder.Close(); err != nil {
			logger.WithError(err).Warn("关闭 trace 输出失败")
		}
	}()

	mod, err := sys.Import(cfg.Hook.Target)
	if err != nil {
		fmt.Fprintf(stdErr, "导入 %s 失败: %v\n", cfg.Hook.Target, err)
		return 1
	}
	printSummary(mod, finder)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["version"] = version.Full()
	fields["attrs"] = mod.Len()
	logger.WithFields(fields).Info("后端已安装")

	if !opts.serve {
		return 0
	}
	if err := startHTTPServer(cfg, sys, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("plaidkeras", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts cliOptions
	var configFlag string

	fs.StringVar(&configFlag, "config", "", "配置文件路径（可被 "+envConfigPath+" 覆盖，留空则只使用默认值与环境变量）")
	fs.StringVar(&opts.backend, "backend", "", "后端名称，覆盖配置与 "+config.EnvBackend)
	fs.StringVar(&opts.target, "target", "", "被替换的模块路径，默认 "+config.DefaultTarget)
	fs.StringVar(&opts.traceFile, "trace", "", "trace 输出文件，覆盖配置与 "+config.EnvTraceFile)
	fs.BoolVar(&opts.checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&opts.listBackends, "list-backends", false, "列出可用后端后退出")
	fs.BoolVar(&opts.serve, "serve", false, "安装后启动诊断 HTTP 服务")
	fs.BoolVar(&opts.showVersion, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("未知参数: %v", fs.Args())
	}

	opts.configPath = os.Getenv(envConfigPath)
	if configFlag != "" {
		opts.configPath = configFlag
	}
	return opts, nil
}

// applyOverrides 将 CLI 标志合并进配置并重新校验。
func applyOverrides(cfg *config.Config, opts cliOptions) error {
	if opts.backend != "" {
		cfg.Hook.Backend = opts.backend
	}
	if opts.target != "" {
		cfg.Hook.Target = opts.target
	}
	if opts.traceFile != "" {
		cfg.Hook.TraceFile = opts.traceFile
	}
	cfg.Hook.Backend = cfg.Hook.BackendKey()
	return cfg.Validate()
}

func traceDestination(h config.HookConfig) trace.Destination {
	if !h.TraceEnabled() {
		return trace.Destination{}
	}
	return trace.Destination{
		Path:       h.TraceFile,
		MaxSizeMB:  h.TraceMaxSize,
		MaxBackups: h.TraceMaxBackups,
	}
}

func printBackends() {
	tw := tabwriter.NewWriter(stdOut, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIMPLEMENTATION\tDEFAULT")
	for _, desc := range backend.List() {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", desc.Name, desc.ImplPath, desc.Default)
	}
	_ = tw.Flush()
}

// printSummary 输出替换结果；目标满足后端契约时附带后端名与数值设置。
func printSummary(mod *modsys.Module, finder *hook.Finder) {
	fmt.Fprintf(stdOut, "%s -> %s (%s, %d names)\n", mod.Name(), finder.Backend().Name, finder.Backend().ImplPath, mod.Len())
	b, err := backend.Bind(mod)
	if err != nil {
		var ce *backend.ContractError
		if errors.As(err, &ce) {
			fmt.Fprintf(stdOut, "contract: %v\n", err)
		}
		return
	}
	fmt.Fprintf(stdOut, "backend()=%s floatx()=%s epsilon()=%g\n", b.Name(), b.Floatx(), b.Epsilon())
}

func startHTTPServer(cfg *config.Config, sys *modsys.System, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterAll(app, sys)
	server.RegisterFallback(app)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
