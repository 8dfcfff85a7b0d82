package core

import (
	"errors"
	"fmt"

	"github.com/difylang/dbagent/internal/client"
)

// User-facing texts for the synthetic assistant messages produced when an
// exchange with the agent fails. The wording matches what the backend's
// operators expect their users to see.
const (
	faultTextTimeout  = "⏰ 请求处理时间较长，服务器可能正在处理复杂查询，请稍后再试或尝试简化您的问题。"
	faultTextServer   = "🔧 服务器内部错误，请检查您的输入是否正确，或联系管理员。"
	faultTextNotFound = "🔍 服务接口未找到，请确认后端服务正在运行。"
	faultTextOffline  = "🌐 网络连接异常，请检查网络连接后重试。"
	faultTextUnknown  = "抱歉，处理您的请求时出现问题，请稍后再试。"
)

// faultText maps a failed exchange to the message appended to the log in
// place of the assistant reply.
func faultText(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return faultTextUnknown
	}

	switch apiErr.Kind {
	case client.FaultTimeout:
		return faultTextTimeout
	case client.FaultServer:
		return faultTextServer
	case client.FaultNotFound:
		return faultTextNotFound
	case client.FaultOffline:
		return faultTextOffline
	case client.FaultClient:
		detail := apiErr.Message
		if detail == "" {
			detail = "请检查输入格式"
		}
		return fmt.Sprintf("❌ 请求错误 (%d)：%s", apiErr.Status, detail)
	default:
		return faultTextUnknown
	}
}
