// Package permission 定义控制台的封闭权限集合。
//
// 权限只来自服务端保存的用户记录，并随 Access Token 下发；
// 任何未登记的键一律拒绝，避免拼写错误导致的越权。
package permission

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Key 权限键
type Key string

const (
	Artigos          Key = "artigos"
	Velonews         Key = "velonews"
	BotPerguntas     Key = "botPerguntas"
	BotAnalises      Key = "botAnalises"
	ChamadosInternos Key = "chamadosInternos"
	Capacity         Key = "capacity"
	Qualidade        Key = "qualidade"
	Servicos         Key = "servicos"
	Usuarios         Key = "usuarios"
)

// All 全部已登记的权限键（顺序即展示顺序）
var All = []Key{
	Artigos,
	Velonews,
	BotPerguntas,
	BotAnalises,
	ChamadosInternos,
	Capacity,
	Qualidade,
	Servicos,
	Usuarios,
}

var known = func() map[Key]struct{} {
	m := make(map[Key]struct{}, len(All))
	for _, k := range All {
		m[k] = struct{}{}
	}
	return m
}()

// ErrUnknownPermission 存在未登记的权限键
var ErrUnknownPermission = errors.New("permissão desconhecida")

// Valid 是否为已登记的权限键
func (k Key) Valid() bool {
	_, ok := known[k]
	return ok
}

// Set 权限集合
type Set map[Key]struct{}

// Has 是否包含指定权限
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// HasAll 是否包含全部指定权限
func (s Set) HasAll(keys ...Key) bool {
	for _, k := range keys {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Strings 按 All 的顺序输出
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for _, k := range All {
		if s.Has(k) {
			out = append(out, string(k))
		}
	}
	return out
}

// Map 输出 {key: bool} 形式，未授予的键为 false
func (s Set) Map() map[string]bool {
	out := make(map[string]bool, len(All))
	for _, k := range All {
		out[string(k)] = s.Has(k)
	}
	return out
}

// ParseList 解析权限键列表，出现任何未登记的键即整体失败
func ParseList(values []string) (Set, error) {
	set := make(Set, len(values))
	var unknown []string
	for _, v := range values {
		k := Key(strings.TrimSpace(v))
		if !k.Valid() {
			unknown = append(unknown, v)
			continue
		}
		set[k] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	return set, nil
}

// ParseMap 解析 {key: bool} 形式（前端表单格式），值为 false 的键不授予
func ParseMap(values map[string]bool) (Set, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	granted := make([]string, 0, len(keys))
	var unknown []string
	for _, k := range keys {
		if !Key(k).Valid() {
			unknown = append(unknown, k)
			continue
		}
		if values[k] {
			granted = append(granted, k)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	return ParseList(granted)
}

// FromTrusted 从已落库的数据构建集合，忽略历史遗留的无效键
func FromTrusted(values []string) Set {
	set := make(Set, len(values))
	for _, v := range values {
		if k := Key(v); k.Valid() {
			set[k] = struct{}{}
		}
	}
	return set
}
