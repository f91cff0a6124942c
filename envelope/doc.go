// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package envelope 定义核心运行时的事件载体模型。

# 概述

envelope 包是整个运行时中唯一的"线上格式"真相来源：任何跨 Agent 传递、
任何落盘的字节都先被装进一个 Envelope。Envelope 本身不可变（除了转发时
允许变化的 Publishers/CurrentHop/Direction 三个字段），携带路由元数据
（方向、跳数、去重用的 publishers 路径）与一个类型化的负载。

# 核心类型

  - AgentID: 128 位全局唯一标识，基于 uuid.UUID
  - Envelope: 不可变事件记录，Build 构造，Clone/NextHop 派生新副本
  - Direction: 传播方向枚举 Up/Down/Both/UpThenDown
  - TypedPayload: 携带类型名与二进制编码数据的负载包装器
  - Registry: 进程级 TypeName -> 解码函数 的注册表

# 序列化

负载编码统一走 msgpack（github.com/vmihailenco/msgpack/v5），字段通过
msgpack 结构体 tag 保持跨版本稳定，而不是依赖数值字段号——这是对线格式
"字段标签固定"要求的具体落地方式，细节记录在仓库根目录的 DESIGN.md 中。
*/
package envelope
