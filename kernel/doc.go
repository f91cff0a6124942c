// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package kernel implements the Agent Kernel (component C4): the per-agent
state machine that discovers handler methods by reflection, dispatches a
received Envelope to matching handlers, and commits resulting state through
either a plain state.Store or an eventstore.EventSourcedStore.

# 概述

GAgentBase[S] 是泛型内核骨架，具体 Agent 类型通过匿名嵌入获得
Activate/Handle/Deactivate 三段生命周期，并通过在自身类型上定义
HandleXxx(ctx, *T) ([]*envelope.Envelope, error) 方法参与分发 —— 方法名、
参数类型即是路由依据，无需额外注册。

# 核心类型

  - LifecycleState: Created -> Activating -> Active -> Handling -> Deactivating -> Deactivated
  - HandlerDescriptor / DiscoverHandlers: 基于反射的处理方法发现
  - DedupWindow / RedisDedupWindow: 信封去重窗口
  - RetryPolicy: 处理方法失败时的指数退避重试
  - GAgentBase[S]: 组合以上组件的内核骨架
*/
package kernel
