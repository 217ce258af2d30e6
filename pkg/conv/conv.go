// Package conv 提供类型转换、map/slice 转换等泛型工具，用于简化配置解析中的重复逻辑。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
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
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。
// 支持 int、int64、int32、float64、float32。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// MapToFloat64 将 map[string]any 转为 map[string]float64，忽略无法转换的值。
func MapToFloat64(in map[string]any) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if f, ok := ToFloat64(v); ok {
			out[k] = f
		}
	}
	return out
}

// SliceAnyToString 将 []any 转为 []string，忽略非字符串元素。
// 输入不是 []any 时返回 nil。
func SliceAnyToString(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ConfigGet 从配置 map 中读取指定类型的值，不存在或类型不匹配时返回默认值。
func ConfigGet[T any](config map[string]any, key string, def T) T {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	return def
}

// ConfigGetFloat64 从配置 map 中读取 float64（兼容 int 等数值类型）。
func ConfigGetFloat64(config map[string]any, key string, def float64) float64 {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if f, ok := ToFloat64(v); ok {
			return f
		}
	}
	return def
}

// ConfigGetInt64 从配置 map 中读取 int64（兼容 float64 等数值类型）。
func ConfigGetInt64(config map[string]any, key string, def int64) int64 {
	if config == nil {
		return def
	}
	if v, ok := config[key]; ok {
		if n, ok := ToInt(v); ok {
			return int64(n)
		}
	}
	return def
}
