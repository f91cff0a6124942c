// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package actor implements the Actor wrapper and Manager (component C6): a
single-reader mailbox around each live kernel.GAgentBase instance, and a
registry/factory that wires new agents into the agent graph and routing
engine.

# 概述

Actor 拥有一个有界邮箱和唯一的调度循环，保证同一 Agent 同一时刻至多
处理一个信封；Manager 负责按 AgentId 注册/查找 Actor、驱动
activate_all/deactivate_all，并将无法投递或长期重试失败的信封送入
死信 channel。Manager 同时实现 routing.Deliverer，把 Router 计算出的
下一跳信封交给目标 Actor 的邮箱。
*/
package actor
