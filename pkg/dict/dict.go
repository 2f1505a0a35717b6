// Package dict resolves the code→label dictionaries shown by the console
// (issue priority, status, stage, input source, type and role).
package dict

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
)

var ErrNotConfigured = errors.New("dict: resolver not configured")

type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

type Resolver interface {
	ResolveValueLabel(ctx context.Context, dictCode string, code string) (string, bool, error)
	ListOptions(ctx context.Context, dictCode string, keyword string, limit int) ([]Option, error)
}

type resolverSlot struct{ r Resolver }

var current atomic.Pointer[resolverSlot]

// RegisterResolver replaces the process-wide resolver.
func RegisterResolver(r Resolver) error {
	if isNilResolver(r) {
		return errors.New("dict: resolver is nil")
	}
	current.Store(&resolverSlot{r: r})
	return nil
}

func isNilResolver(r Resolver) bool {
	if r == nil {
		return true
	}
	switch v := reflect.ValueOf(r); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func resolver() (Resolver, error) {
	slot := current.Load()
	if slot == nil {
		return nil, ErrNotConfigured
	}
	return slot.r, nil
}

func ResolveValueLabel(ctx context.Context, dictCode string, code string) (string, bool, error) {
	r, err := resolver()
	if err != nil {
		return "", false, err
	}
	return r.ResolveValueLabel(ctx, strings.TrimSpace(dictCode), strings.TrimSpace(code))
}

func ListOptions(ctx context.Context, dictCode string, keyword string, limit int) ([]Option, error) {
	r, err := resolver()
	if err != nil {
		return nil, err
	}
	return r.ListOptions(ctx, strings.TrimSpace(dictCode), strings.TrimSpace(keyword), limit)
}

// LabelOrCode falls back to the raw code when the dictionary has no entry or
// no resolver is registered.
func LabelOrCode(ctx context.Context, dictCode string, code string) string {
	if label, ok, err := ResolveValueLabel(ctx, dictCode, code); err == nil && ok {
		return label
	}
	return code
}
