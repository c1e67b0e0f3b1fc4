package components

// LaneState 轨道状态
//
// 记录最近一次进入该轨道的字幕的出生横坐标。
// 该值只在出生时写入、在字幕离场时清零，不随字幕移动而更新，
// 因此总是不小于轨道中实际的最右位置。
type LaneState struct {
	LastSpawnX float64 // 最近一次出生的 X，0 表示空闲
}

// IsClear 判断轨道在给定阈值下是否可以放入新字幕
//
// 参数:
//   - threshold: 视口宽度减去安全间距
func (s LaneState) IsClear(threshold float64) bool {
	return s.LastSpawnX <= threshold
}
