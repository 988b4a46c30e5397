package query

import "encoding/json"

// Key 快取鍵，第一段為實體種類，其後為參數
type Key []string

// String 序列化為 map 鍵；使用 JSON 陣列避免參數內容造成碰撞
func (k Key) String() string {
	b, err := json.Marshal([]string(k))
	if err != nil {
		return ""
	}
	return string(b)
}

// HasPrefix 逐段比對是否以 prefix 開頭
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
