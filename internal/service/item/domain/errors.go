// internal/service/item/domain/errors.go
package domain

import "errors"

var (
	// ErrItemNotFound 请求引用了不存在的商品，不可重试
	ErrItemNotFound = errors.New("item not found")
	// ErrShopNotFound 门店不存在
	ErrShopNotFound = errors.New("shop not found")
	// ErrDuplicateShopName 门店名冲突
	ErrDuplicateShopName = errors.New("shop name already exists")
	// ErrLockAcquisitionTimeout 等待租约超时，调用方可带退避重试整个请求
	ErrLockAcquisitionTimeout = errors.New("stock lock acquisition timed out")
	// ErrStoreWriteFailure 决策已写入更新日志之后库存落库失败。
	// 日志是权威记录，库存侧的偏差由对账流程修复。
	ErrStoreWriteFailure = errors.New("stock store write failed after decision was logged")
	// ErrRequestRejected 请求未通过准入规则
	ErrRequestRejected = errors.New("request rejected by admission rules")
)
