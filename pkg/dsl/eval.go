// Package dsl 提供基于 CEL (Common Expression Language) 的候选规则解释器。
// 用于配置驱动的过滤规则：不改代码即可上线“排除某价格区间/某艺术家”这类策略。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/artrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("profile", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是一条编译好的规则表达式，可并发复用。
//
// 表达式语法（CEL 标准语法），可引用三个变量：
//   - item：作品字段，如 item.price > 5000 / item.artist_id == "a42"
//   - label：链路标签值，如 label.recall_source.contains("related")
//   - profile：画像摘要，如 item.category_id in profile.favorite_categories
//
// 示例：
//   - `item.price > 100000.0` → 过滤超高价作品
//   - `label.recall_source.contains("catalog") && item.rating < 2.0` → 目录召回里的低分作品
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条规则表达式。表达式必须求值为 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string { return p.expr }

// Evaluate 对一个候选求值。非 bool 结果或求值错误一律视为 false（不过滤）。
func (p *Program) Evaluate(item *core.Item, rctx *core.RecommendContext) bool {
	if p == nil || p.prg == nil || item == nil {
		return false
	}

	labels := make(map[string]string, len(item.Labels))
	for k, lbl := range item.Labels {
		labels[k] = lbl.Value
	}

	activation := map[string]any{
		"item":    itemVars(item),
		"label":   labels,
		"profile": profileVars(rctx),
	}

	out, _, err := p.prg.Eval(activation)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func itemVars(item *core.Item) map[string]any {
	return map[string]any{
		"id":          item.ID,
		"title":       item.Title,
		"artist_id":   item.ArtistID,
		"category_id": item.CategoryID,
		"price":       item.Price,
		"style":       item.Style,
		"period":      item.Period,
		"views":       item.Views,
		"likes":       item.Likes,
		"rating":      item.Rating,
		"is_new":      item.IsNew,
		"score":       item.Score,
	}
}

func profileVars(rctx *core.RecommendContext) map[string]any {
	out := map[string]any{
		"favorite_categories": []string{},
		"favorite_artists":    []string{},
		"avg_viewed_price":    0.0,
	}
	if rctx == nil {
		return out
	}
	if rctx.Profile != nil {
		out["favorite_categories"] = rctx.Profile.FavoriteCategories.Top(0)
		out["favorite_artists"] = rctx.Profile.FavoriteArtists.Top(0)
	}
	out["avg_viewed_price"] = rctx.AvgViewedPrice()
	return out
}
