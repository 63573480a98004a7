package infra

import (
	"strconv"
	"strings"
	"time"
)

// WindowIndex é o índice da janela fixa que contém t.
func WindowIndex(t time.Time, windowSeconds int) int64 {
	return t.Unix() / int64(windowSeconds)
}

// windowEnd é o instante em que a janela idx termina.
func windowEnd(idx int64, windowSeconds int) time.Time {
	return time.Unix((idx+1)*int64(windowSeconds), 0)
}

// WindowKey monta a chave do contador: "<namespace>:<key>:<janela>".
func WindowKey(namespace, key string, idx int64) string {
	var b strings.Builder
	b.Grow(len(namespace) + len(key) + 22)
	b.WriteString(strings.Trim(namespace, ":"))
	b.WriteByte(':')
	b.WriteString(key)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(idx, 10))
	return b.String()
}
