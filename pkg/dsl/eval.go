package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/gamerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的 CEL 规则表达式，线程安全，可对多个 Item 复用。
//
// 可用变量：
//   - item.id / item.name / item.score / item.first_release_date
//   - item.genres / item.themes / item.player_perspectives（整数列表）
//   - label.<key>：Item label 的值，例如 label.recall_source
//   - rctx.rated_count / rctx.params
//
// 示例：
//   - `item.first_release_date >= 1420070400` → 2015 年之后发行
//   - `!(19 in item.themes)` → 排除恐怖主题
//   - `label.recall_source.contains("recall.similar") && item.score > 0.2`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式，表达式必须返回布尔值。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

// String 返回表达式原文。
func (e *Expr) String() string {
	return e.src
}

// Match 对 item 求值。访问不存在的 label 会返回错误，
// 存在性检查请使用 `"key" in label`。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式；空表达式恒为真。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	e, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return e.Match(item, rctx)
}

func toInt64s(ids []uint64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// buildInput 构建 CEL 表达式的输入数据，整数统一为 int64。
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}
	item := map[string]any{
		"id":                  int64(it.ID),
		"name":                it.Game.Name,
		"score":               it.Score,
		"first_release_date":  it.Game.FirstReleaseDate,
		"genres":              toInt64s(it.Game.Genres),
		"themes":              toInt64s(it.Game.Themes),
		"player_perspectives": toInt64s(it.Game.PlayerPerspectives),
	}
	ctx := map[string]any{
		"rated_count": int64(0),
		"params":      map[string]any{},
	}
	if rctx != nil {
		ctx["rated_count"] = int64(len(rctx.Ratings))
		if rctx.Params != nil {
			ctx["params"] = rctx.Params
		}
	}
	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  ctx,
	}
}
