package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/plaidml/plaidkeras/internal/tensor"
)

// Destination 是 trace 的输出目标：已打开的 Writer，或需要以截断模式打开的文件路径。
type Destination struct {
	Writer io.Writer
	Path   string
	// MaxSizeMB/MaxBackups 控制路径模式下的文件轮转，0 表示使用 lumberjack 默认值。
	MaxSizeMB  int
	MaxBackups int
}

// Enabled 表示是否配置了目标。
func (d Destination) Enabled() bool {
	return d.Writer != nil || d.Path != ""
}

// String 便于日志输出。
func (d Destination) String() string {
	switch {
	case d.Writer != nil:
		return fmt.Sprintf("writer(%T)", d.Writer)
	case d.Path != "":
		return d.Path
	default:
		return "none"
	}
}

// Open 打开目标。路径模式下先截断已有文件，再交给 lumberjack 负责追加与轮转。
func (d Destination) Open() (io.WriteCloser, error) {
	if d.Writer != nil {
		if wc, ok := d.Writer.(io.WriteCloser); ok {
			return wc, nil
		}
		return nopCloser{d.Writer}, nil
	}
	if d.Path == "" {
		return nil, errors.New("trace destination not configured")
	}
	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.Create(d.Path)
	if err != nil {
		return nil, fmt.Errorf("truncate trace file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   d.Path,
		MaxSize:    d.MaxSizeMB,
		MaxBackups: d.MaxBackups,
		LocalTime:  true,
	}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// LogObserver 将事件写成 JSON 行，每条记录对应一次 LogBufferInfo。
type LogObserver struct {
	logger *logrus.Logger
	domain string
	out    io.Closer
}

// NewLogObserver 打开 dest 并返回写入该目标的 Observer。
func NewLogObserver(dest Destination, backendName string) (*LogObserver, error) {
	out, err := dest.Open()
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return &LogObserver{logger: logger, domain: Domain(backendName), out: out}, nil
}

func (o *LogObserver) Input(step Step, value tensor.Tensor) {
	o.record(step, RoleInput, RoleInput, value)
}

func (o *LogObserver) PreUpdate(step Step, value tensor.Tensor) {
	o.record(step, RolePreUpdate, RolePreUpdate, value)
}

func (o *LogObserver) Output(step Step, value tensor.Tensor, comment string) {
	o.record(step, RoleOutput, comment, value)
}

func (o *LogObserver) PostUpdate(step Step, value tensor.Tensor, comment string) {
	o.record(step, RolePostUpdate, comment, value)
}

// Close 关闭底层输出。
func (o *LogObserver) Close() error {
	return o.out.Close()
}

func (o *LogObserver) record(step Step, role, comment string, value tensor.Tensor) {
	o.logger.WithFields(logrus.Fields{
		"domain":      o.domain,
		"activity":    step.Name,
		"activity_id": step.ID,
		"role":        role,
		"comment":     comment,
		"shape":       value.Shape,
		"summary":     value.Summary(),
	}).Info("buffer_info")
}
