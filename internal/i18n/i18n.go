package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleEnUS    = "en-US"
	LocaleZhCN    = "zh-CN"
	DefaultLocale = LocaleEnUS
)

// ResolveLocale 从请求解析语言：?lang= 优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// NormalizeLocale 归一化语言标签，未支持的语言回退到默认语言
func NormalizeLocale(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		lower := strings.ToLower(tag)
		switch {
		case lower == "":
			continue
		case strings.HasPrefix(lower, "zh"):
			return LocaleZhCN
		case strings.HasPrefix(lower, "en"):
			return LocaleEnUS
		}
	}
	return DefaultLocale
}

// T 翻译，找不到时回退默认语言，再回退为 key 本身
func T(locale, key string) string {
	if table, ok := catalog[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
