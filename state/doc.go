// 版权所有 2024 Core Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
Package state 提供按 Agent ID 寻址的状态存储抽象。

# 概述

state 包是核心运行时的 C2 组件：一个与具体后端无关的
load/save/exists/delete 契约，外加一个可选的带乐观并发的版本化变体。
每个实现必须保证同一 Agent ID 上的 save 相对并发的 save/load 是原子的；
跨 Agent 的操作彼此独立。

# 实现

  - MemoryStore: 并发安全的内存实现，用于测试与简单 Agent
  - DocumentStore: 基于 gorm 的关系型实现（postgres/mysql/sqlite）
  - RedisStore: 基于 go-redis 的快速非事件溯源状态缓存
  - MongoDocumentStore: 基于 mongo-driver/v2 的可插拔文档存储

# 深拷贝

状态类型不需要实现任何 Clone 方法；本包通过 msgpack 的编码-解码往返
提供统一的深拷贝（DeepCopy），这对任何只含值语义或可序列化引用字段的
状态类型都是正确的，也是本仓库采用的唯一深拷贝策略。
*/
package state
