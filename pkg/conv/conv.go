// Package conv 提供从 YAML/JSON 解析结果（map[string]any）中按类型取值的工具，用于节点配置。
package conv

import (
	"strconv"
	"time"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32、uint64。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToUint64 将 any 转为 uint64。负数、小数与无法解析的字符串返回 false。
func ToUint64(v any) (uint64, bool) {
	switch val := v.(type) {
	case uint64:
		return val, true
	case int:
		return uint64(val), val >= 0
	case int64:
		return uint64(val), val >= 0
	case float64:
		if val < 0 || val != float64(uint64(val)) {
			return 0, false
		}
		return uint64(val), true
	case string:
		u, err := strconv.ParseUint(val, 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}

// ConvertSlice 将 []T 按 convert 转为 []U，convert 返回 false 的元素被跳过。
func ConvertSlice[T, U any](s []T, convert func(T) (U, bool)) []U {
	if s == nil {
		return nil
	}
	out := make([]U, 0, len(s))
	for _, v := range s {
		if u, ok := convert(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// ConfigGet 从 map[string]any 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 从 config 取 int64。YAML/JSON 常得到 int 或 float64，此处兼容并统一为 int64。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return int64(val)
	case int64:
		return val
	case float64:
		return int64(val)
	case float32:
		return int64(val)
	default:
		return defaultVal
	}
}

// ConfigGetFloat64 从 config 取 float64，兼容整数。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return defaultVal
}

// ConfigGetDuration 从 config 取时长：字符串按 time.ParseDuration 解析（如 "2s"），数字视为秒。
func ConfigGetDuration(m map[string]any, key string, defaultVal time.Duration) time.Duration {
	switch val := m[key].(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case int, int64, float64:
		f, _ := ToFloat64(val)
		return time.Duration(f * float64(time.Second))
	}
	return defaultVal
}

// ConfigGetUint64Slice 从 config 取 ID 列表，无法转换的元素被跳过。
func ConfigGetUint64Slice(m map[string]any, key string) []uint64 {
	switch val := m[key].(type) {
	case []any:
		return ConvertSlice(val, ToUint64)
	case []uint64:
		return val
	case []int:
		return ConvertSlice(val, func(i int) (uint64, bool) { return ToUint64(i) })
	default:
		return nil
	}
}
