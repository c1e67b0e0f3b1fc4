package components

import "image/color"

// Caption 弹幕组件
//
// 一条从右向左滚动的字幕。由 DanmakuSystem 独占持有，
// 创建后只有 X 会被修改，其余字段在整个生命周期内不变。
type Caption struct {
	Text  string     // 字幕文本
	Color color.RGBA // 填充颜色
	X     float64    // 左边缘横坐标（每帧减去 Speed）
	Y     float64    // 所在轨道的顶部纵坐标
	Speed float64    // 每帧移动像素数
	Width float64    // 按固定字号测得的渲染宽度
	Lane  int        // 所在轨道索引
}

// Expired 判断字幕是否已完全移出屏幕左侧
func (c *Caption) Expired() bool {
	return c.X < -c.Width
}

// CaptionSnapshot 渲染快照
//
// 渲染器只读取快照，不接触引擎内部状态
type CaptionSnapshot struct {
	Text  string
	Color color.RGBA
	X     float64
	Y     float64
}
