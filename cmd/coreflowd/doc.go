// =============================================================================
// coreflowd 入口
// =============================================================================
// coreflowd 是核心运行时的一个最小示例进程：加载配置、装配一个两层
// supervisor/worker agent 层级（演示 C4 内核 + C5 路由 + C6 actor 全链路），
// 暴露健康检查与 Prometheus 指标端点，并在收到 SIGINT/SIGTERM 时优雅停机。
//
// 使用方法:
//
//	coreflowd                        # 使用默认配置启动
//	coreflowd --config config.yaml    # 指定配置文件
// =============================================================================
package main
