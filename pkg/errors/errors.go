// Package errors 跨层共享的哨兵错误
package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：员工档案在读取后已被其他请求修改
// 仓储层在 version 不匹配时返回，Handler 映射为 409
var ErrOptimisticLock = errors.New("员工档案已被其他操作修改，请刷新后重试")
