package filter

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述保留条件，表达式为 false 的游戏被过滤。
//
// 例如：`item.first_release_date >= 1420070400 && !(19 in item.themes)`
type ExprFilter struct {
	expr *dsl.Expr
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: e}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := f.expr.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
