package envelope

import "errors"

var (
	// ErrInvalidPayload 负载缺少可解析的 schema 描述符
	ErrInvalidPayload = errors.New("envelope: payload missing schema descriptor")

	// ErrInvalidHop 跳数参数非法（负值且不等于 -1）
	ErrInvalidHop = errors.New("envelope: invalid hop value")

	// ErrUnknownPayloadType 接收端无法在类型注册表中找到该负载类型
	ErrUnknownPayloadType = errors.New("envelope: unknown payload type")

	// ErrTypeAlreadyRegistered 同一类型名重复注册
	ErrTypeAlreadyRegistered = errors.New("envelope: payload type already registered")
)
