// 版权所有 2024 Core Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的内核指标采集能力，覆盖
分发、处理器错误、路由、状态转换、事件溯源与数据库六大维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离，
支持多维度 label 分组，便于 Grafana 等工具进行可视化与告警。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 向量指标，按业务域分组管理。

# 主要能力

  - 分发指标：处理器调用总数、分发耗时，按 agent_type/payload_type/status 分组。
  - 错误与死信指标：按 retryable/fatal 区分的处理器错误计数，
    死信投递计数。
  - 路由指标：跳数丢弃、去重丢弃计数。
  - 状态转换指标：Agent 生命周期状态转换计数。
  - 事件溯源指标：快照写入、事件追加（含冲突）、回放事件数分布。
  - 去重窗口指标：命中/未命中计数。
  - 数据库指标：活跃/空闲连接数 Gauge、查询耗时 Histogram，
    按 database/operation 分组。
*/
package metrics
