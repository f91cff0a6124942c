// Copyright 2026 Core Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package routing implements the Propagation & Routing Engine (component C5):
a parent/child agent graph plus direction-based target selection for a
published Envelope (Up / Down / Both / UpThenDown).

# 概述

Graph 维护每个 Agent 的父子关系，保证父子赋值不产生环；Router 依据
Envelope 的 Direction 计算目标集合，为每个目标派生下一跳信封（追加
publisher、递增 current_hop、按需改写 direction），应用跳数检查后交给
C6 的 Deliverer 接口入队，不等待目标处理完成。
*/
package routing
