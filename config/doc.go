// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package config 提供核心运行时的配置装配能力。

# 概述

config 包负责将 state、eventstore、kernel、routing、actor 各包的
Options 汇总为一个顶层 Config，并按 "默认值 -> YAML 文件 -> 环境变量"
的优先级合并。本包只做装配与加载，不对各业务包的具体语义做任何决定。

# 核心结构

  - Config: 顶层配置聚合，涵盖 Server、Database、Redis、Mongo、
    Kernel、Routing、Actor、Log、Telemetry
  - Loader: 配置加载器，支持 Builder 模式链式设置文件路径、
    环境变量前缀与自定义验证器

# 主要能力

  - 多源加载: YAML 文件、环境变量（CORE_ 前缀）、默认值
  - 配置验证: 内置基础校验 + 自定义 Validator 钩子

# 使用示例

	cfg, err := config.NewLoader().
		WithConfigPath("config.yaml").
		WithEnvPrefix("CORE").
		Load()
*/
package config
