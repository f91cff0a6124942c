// Package telemetry 暴露进程级的 otel Meter 与共用指标集合，
// 不携带任何 SDK 或导出器依赖。在宿主进程安装真实的
// MeterProvider 之前，所有指标记录都是安全的空操作。
package telemetry
