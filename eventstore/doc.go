// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package eventstore provides an append-only, per-agent event log with
optimistic versioning and snapshotting (component C3).

# 概述

eventstore 是事件溯源路径的持久层：每个 Agent 拥有一个从版本 1 开始、
无空洞递增的事件序列，外加按 SnapshotStrategy 触发的状态快照。
EventSourcedStore 把 EventStore 和一个纯函数 transition 组合起来，
对外暴露 Load（返回状态与版本号）和 Confirm（按期望版本追加事件并
应用 transition）；它没有 Save 方法，写路径只有 Confirm。

# 核心类型

  - EventStore: append/get_events/current_version/save_snapshot/get_latest_snapshot
  - SQLEventStore: 基于 gorm 的关系型实现（postgres/mysql/sqlite）
  - SnapshotStrategy: IntervalStrategy、HybridStrategy
  - EventSourcedStore: 组合 EventStore + transition + SnapshotStrategy
*/
package eventstore
