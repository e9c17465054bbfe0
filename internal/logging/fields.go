package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// HookFields 描述一次替换钩子：目标模块、后端与 trace 目的地。
func HookFields(target, backendName, trace string) logrus.Fields {
	return logrus.Fields{
		"target":  target,
		"backend": backendName,
		"trace":   trace,
	}
}

// RequestFields 提供诊断接口的请求字段。
func RequestFields(requestID, method, path string, status int) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
	}
}
