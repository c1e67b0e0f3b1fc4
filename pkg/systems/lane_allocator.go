package systems

import (
	"log"
	"math/rand"

	"github.com/gonewx/danmaku/pkg/components"
)

// LaneAllocator 轨道分配器
//
// 实现有限次随机探测的选轨算法：最多随机抽取 probeLimit 条轨道，
// 选中第一条出生点已让出安全间距的轨道；全部失败时接受最后一次抽到的轨道。
// 选轨永远不会阻塞，代价是高密度下偶尔出现重叠。
type LaneAllocator struct {
	lanes           []components.LaneState
	clearanceMargin float64
	probeLimit      int
	rng             *rand.Rand
}

// NewLaneAllocator 创建新的轨道分配器
//
// 参数:
//   - laneCount: 轨道数量
//   - clearanceMargin: 新字幕入轨所需的尾部间距
//   - probeLimit: 随机探测次数上限（至少为 1）
//   - rng: 随机数源
func NewLaneAllocator(laneCount int, clearanceMargin float64, probeLimit int, rng *rand.Rand) *LaneAllocator {
	if laneCount < 0 {
		laneCount = 0
	}
	if probeLimit < 1 {
		probeLimit = 1
	}
	return &LaneAllocator{
		lanes:           make([]components.LaneState, laneCount),
		clearanceMargin: clearanceMargin,
		probeLimit:      probeLimit,
		rng:             rng,
	}
}

// LaneCount 返回当前轨道数量
func (la *LaneAllocator) LaneCount() int {
	return len(la.lanes)
}

// Resize 调整轨道数量
//
// 保留仍然存在的轨道状态，新增的轨道为空闲状态
func (la *LaneAllocator) Resize(laneCount int) {
	if laneCount < 0 {
		laneCount = 0
	}
	if laneCount == len(la.lanes) {
		return
	}

	lanes := make([]components.LaneState, laneCount)
	copy(lanes, la.lanes)
	la.lanes = lanes

	log.Printf("[LaneAllocator] Resized to %d lanes", laneCount)
}

// PickLane 为新字幕选择轨道
//
// 参数:
//   - viewportWidth: 视口宽度
//
// 返回:
//   - 轨道索引
//   - 是否存在可用轨道（轨道数为 0 时为 false）
func (la *LaneAllocator) PickLane(viewportWidth float64) (int, bool) {
	if len(la.lanes) == 0 {
		return 0, false
	}

	threshold := viewportWidth - la.clearanceMargin
	lane := 0
	for i := 0; i < la.probeLimit; i++ {
		lane = la.rng.Intn(len(la.lanes))
		if la.lanes[lane].IsClear(threshold) {
			return lane, true
		}
	}

	// 探测全部失败：接受最后一次抽到的轨道
	return lane, true
}

// MarkSpawn 记录轨道最近一次出生的 X
func (la *LaneAllocator) MarkSpawn(lane int, x float64) {
	if lane < 0 || lane >= len(la.lanes) {
		return
	}
	la.lanes[lane].LastSpawnX = x
}

// Clear 将轨道标记为空闲
//
// 视口缩小后残留在已删除轨道上的字幕离场时会传入越界索引，直接忽略
func (la *LaneAllocator) Clear(lane int) {
	if lane < 0 || lane >= len(la.lanes) {
		return
	}
	la.lanes[lane].LastSpawnX = 0
}

// LastSpawnX 返回轨道最近一次出生的 X，越界时返回 0
func (la *LaneAllocator) LastSpawnX(lane int) float64 {
	if lane < 0 || lane >= len(la.lanes) {
		return 0
	}
	return la.lanes[lane].LastSpawnX
}

// LogLaneState 输出所有轨道的状态（调试用）
//
// 参数:
//   - verbose: 是否启用详细日志模式
func (la *LaneAllocator) LogLaneState(verbose bool) {
	if !verbose {
		return
	}

	log.Printf("[LaneAllocator] === Lane State ===")
	for i, state := range la.lanes {
		log.Printf("[LaneAllocator] Lane %d: LastSpawnX=%.1f", i, state.LastSpawnX)
	}
}
