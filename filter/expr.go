package filter

import (
	"context"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pkg/dsl"
)

// ExprFilter 是规则过滤器：表达式求值为 true 的作品被过滤。
// 规则来自配置（CEL 语法，见 pkg/dsl），用于不发版上线运营策略，
// 例如排除某个价格区间或被下架的艺术家。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译一条过滤规则。表达式非法时返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.prg == nil || item == nil {
		return false, nil
	}
	// 求值错误视为不过滤（规则永远不阻断主链路）
	return f.prg.Evaluate(item, rctx), nil
}
