package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	agentIDKey       contextKey = "agent_id"
	envelopeIDKey    contextKey = "envelope_id"
	deactivatingKey  contextKey = "deactivating"
)

// WithCorrelationID 设置 CorrelationID，用于跨 Envelope 的请求/回复关联
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationID 获取 CorrelationID
func CorrelationID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(correlationIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithAgentID 设置当前正在处理 Envelope 的 Agent ID，供日志和死信记录使用
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey, agentID)
}

// AgentID 获取当前 Agent ID
func AgentID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(agentIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithEnvelopeID 设置当前分发中的 Envelope ID
func WithEnvelopeID(ctx context.Context, envelopeID string) context.Context {
	return context.WithValue(ctx, envelopeIDKey, envelopeID)
}

// EnvelopeID 获取当前 Envelope ID
func EnvelopeID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(envelopeIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithDeactivating 标记该 context 派生自正在 deactivate 的 Agent；在此
// context 下发布的 Envelope 必须被丢弃，而不是转发。
func WithDeactivating(ctx context.Context) context.Context {
	return context.WithValue(ctx, deactivatingKey, true)
}

// Deactivating 报告该 context 是否来自正在 deactivate 的 Agent
func Deactivating(ctx context.Context) bool {
	v, _ := ctx.Value(deactivatingKey).(bool)
	return v
}
