// Package backend 维护可替换 keras.backend 实现的静态注册表，并提供统一的查询入口。
//
// 约定：
//  1. 每种后端对应一个封闭的 Kind 枚举值，Kind.Descriptor() 给出它的实现模块路径；
//  2. 内置后端在本包 init() 中注册，安装阶段通过 Lookup 校验名称，未知名称立即失败；
//  3. Bind 将一个已填充的模块命名空间适配为 Backend 接口，并一次性报告缺失或类型不符的名字。
package backend
