package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/autoreply/internal/keywords"
	"github.com/nextlevelbuilder/autoreply/internal/metrics"
	"github.com/nextlevelbuilder/autoreply/internal/permissions"
)

// User-facing messages.
const (
	msgAddUsage         = "❌ 格式错误，正确格式：/添加自定义回复 关键字|回复内容"
	msgDeleteUsage      = "❌ 格式错误，正确格式：/删除自定义回复 关键字"
	msgEmptyKeyword     = "❌ 关键字不能为空"
	msgPermissionDenied = "❌ 权限不足，该命令仅限管理员使用"
	msgListEmpty        = "暂无自定义回复"
	msgListHeader       = "当前关键词回复列表："
)

// Command results, used as the metrics "result" label.
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
	ResultEmpty     = "empty_keyword"
	ResultNotFound  = "not_found"
	ResultDenied    = "denied"
)

// Adapter runs parsed commands against a keyword index.
// It performs no authorization of its own beyond checking the role it is given.
type Adapter struct {
	index   *keywords.Index
	metrics *metrics.Metrics
}

func NewAdapter(index *keywords.Index, m *metrics.Metrics) *Adapter {
	return &Adapter{index: index, metrics: m}
}

// Handle executes req on behalf of a sender holding role and returns the
// single message to show the user. List and delete require RoleAdmin.
func (a *Adapter) Handle(ctx context.Context, req Request, role permissions.Role) string {
	text, result := a.handle(ctx, req, role)
	name := CommandName(req)
	a.metrics.ObserveCommand(name, result)
	slog.Debug("keyword command handled", "command", name, "role", role.String(), "result", result)
	return text
}

func (a *Adapter) handle(ctx context.Context, req Request, role permissions.Role) (string, string) {
	switch r := req.(type) {
	case AddRequest:
		return a.add(ctx, r)
	case ListRequest:
		if role != permissions.RoleAdmin {
			return msgPermissionDenied, ResultDenied
		}
		return a.list(), ResultOK
	case DeleteRequest:
		if role != permissions.RoleAdmin {
			return msgPermissionDenied, ResultDenied
		}
		return a.delete(ctx, r)
	default:
		return msgAddUsage, ResultMalformed
	}
}

func (a *Adapter) add(ctx context.Context, r AddRequest) (string, string) {
	keyword, reply, ok := strings.Cut(r.RawArgs, "|")
	if !ok {
		return msgAddUsage, ResultMalformed
	}

	entry, err := a.index.Add(ctx, keyword, reply)
	if errors.Is(err, keywords.ErrEmptyKeyword) {
		return msgEmptyKeyword, ResultEmpty
	}
	if err != nil {
		slog.Error("add keyword failed", "error", err)
		return msgEmptyKeyword, ResultEmpty
	}

	slog.Info("keyword added", "keyword", entry.Keyword)
	return fmt.Sprintf("✅ 已添加关键词回复： [%s] -> %s", entry.Keyword, entry.Reply), ResultOK
}

func (a *Adapter) list() string {
	entries := a.index.List()
	if len(entries) == 0 {
		return msgListEmpty
	}
	return msgListHeader + "\n" + FormatEntries(entries)
}

func (a *Adapter) delete(ctx context.Context, r DeleteRequest) (string, string) {
	if strings.TrimSpace(r.Keyword) == "" {
		return msgDeleteUsage, ResultMalformed
	}

	key, err := a.index.Remove(ctx, r.Keyword)
	if errors.Is(err, keywords.ErrNotFound) {
		return fmt.Sprintf("❌ 未找到关键词：%s", key), ResultNotFound
	}
	if err != nil {
		slog.Error("delete keyword failed", "keyword", key, "error", err)
		return fmt.Sprintf("❌ 未找到关键词：%s", key), ResultNotFound
	}

	slog.Info("keyword deleted", "keyword", key)
	return fmt.Sprintf("✅ 已删除关键词：%s", key), ResultOK
}
