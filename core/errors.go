package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - Profile 错误：UNDERDETERMINED, INVALID_INPUT
//   - Rank 错误：DIMENSION_MISMATCH
//   - Store 错误：NOT_FOUND
//   - Catalog 错误：UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "UNDERDETERMINED", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "profile", "rank", "store"）
	Err     error  // 底层原因，可为空
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code 比较，使带有不同细节的同类错误都能匹配哨兵错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeUnavailable       = "UNAVAILABLE"        // 服务不可用
	ErrorCodeInvalidInput      = "INVALID_INPUT"      // 输入无效
	ErrorCodeUnderdetermined   = "UNDERDETERMINED"    // 评分信号不足以构建画像
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 矩阵列数与画像维度不一致
	ErrorCodeInternalError     = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征模块
	ModuleProfile = "profile" // 画像模块
	ModuleRank    = "rank"    // 排序模块
	ModuleCatalog = "catalog" // 游戏目录模块
)

var (
	// ErrUnderdeterminedProfile 表示没有可用的评分信号：
	// 输入为空、评分加权和为 0，或所有属性都不在词表中。
	ErrUnderdeterminedProfile = NewDomainError(ModuleProfile, ErrorCodeUnderdetermined, "profile: not enough rating signal to build a preference vector")

	// ErrDimensionMismatch 表示候选矩阵列数与画像长度不一致，属于程序错误或词表漂移。
	ErrDimensionMismatch = NewDomainError(ModuleRank, ErrorCodeDimensionMismatch, "rank: dimension mismatch")

	// ErrInvalidRating 表示评分值不被接受（NaN、Inf，或 reject 策略下的负分）。
	ErrInvalidRating = NewDomainError(ModuleProfile, ErrorCodeInvalidInput, "profile: invalid rating")

	// ErrCatalogUnavailable 表示游戏目录暂时不可用（例如熔断器打开）。
	ErrCatalogUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: unavailable")
)

// NewDimensionMismatch 创建带维度细节的 DimensionMismatch 错误。
func NewDimensionMismatch(cols, want int) *DomainError {
	return NewDomainError(ModuleRank, ErrorCodeDimensionMismatch,
		fmt.Sprintf("rank: dimension mismatch: matrix has %d columns, profile has %d", cols, want))
}

// NewInvalidRating 创建带游戏 ID 的 InvalidRating 错误。
func NewInvalidRating(id uint64, rating float64) *DomainError {
	return NewDomainError(ModuleProfile, ErrorCodeInvalidInput,
		fmt.Sprintf("profile: invalid rating %v for game %d", rating, id))
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsUnderdetermined 检查错误是否为 UNDERDETERMINED
func IsUnderdetermined(err error) bool {
	return hasCode(err, ErrorCodeUnderdetermined)
}

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH
func IsDimensionMismatch(err error) bool {
	return hasCode(err, ErrorCodeDimensionMismatch)
}
