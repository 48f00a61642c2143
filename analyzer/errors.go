package analyzer

import (
	"errors"
	"fmt"
)

// Kind 是流水线失败的封闭分类。
type Kind string

const (
	// 生成阶段
	KindConfiguration             Kind = "configuration"
	KindAuthentication            Kind = "authentication"
	KindRateLimited               Kind = "rate_limited"
	KindServiceUnavailable        Kind = "service_unavailable"
	KindTransport                 Kind = "transport"
	KindMalformedUpstreamResponse Kind = "malformed_upstream_response"

	// 提取阶段
	KindNoStructureFound Kind = "no_structure_found"

	// 校验阶段
	KindParseFailure   Kind = "parse_failure"
	KindSchemaMismatch Kind = "schema_mismatch"
)

// Stage names the pipeline stage that produces errors of this kind.
func (k Kind) Stage() string {
	switch k {
	case KindNoStructureFound:
		return "extraction"
	case KindParseFailure, KindSchemaMismatch:
		return "validation"
	default:
		return "generation"
	}
}

// Retryable reports whether a caller may reasonably reissue the whole request.
// The pipeline itself never retries.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServiceUnavailable, KindTransport:
		return true
	default:
		return false
	}
}

var userMessages = map[Kind]string{
	KindConfiguration:             "AI服务配置有误，请检查API密钥、接口地址和模型设置",
	KindAuthentication:            "API密钥无效或已过期，请检查配置",
	KindRateLimited:               "请求过于频繁，请稍后再试",
	KindServiceUnavailable:        "AI服务暂时不可用，请稍后再试",
	KindTransport:                 "网络连接失败，请检查网络设置",
	KindMalformedUpstreamResponse: "API返回的数据格式不完整",
	KindNoStructureFound:          "AI返回的内容中没有找到结构化数据",
	KindParseFailure:              "AI返回的数据格式不是有效的JSON",
	KindSchemaMismatch:            "AI返回的数据缺少必要字段",
}

// Error is the single terminal failure value of a pipeline run.
type Error struct {
	Kind    Kind
	Mode    Mode
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Mode != "" {
		msg = fmt.Sprintf("%s (mode=%s)", msg, e.Mode)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage 返回给最终用户展示的提示。
func (e *Error) UserMessage() string {
	msg, ok := userMessages[e.Kind]
	if !ok {
		msg = "分析失败，请重试"
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	return msg
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AsError unwraps err into an *Error when one is present in the chain.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
