package systems

import (
	"math/rand"
	"testing"
)

func newTestAllocator(laneCount int) *LaneAllocator {
	return NewLaneAllocator(laneCount, 100, 10, rand.New(rand.NewSource(42)))
}

// TestPickLaneAllClear 所有轨道空闲时第一次探测即命中
func TestPickLaneAllClear(t *testing.T) {
	la := newTestAllocator(5)

	for i := 0; i < 100; i++ {
		lane, ok := la.PickLane(1920)
		if !ok {
			t.Fatalf("Expected a lane, got none")
		}
		if lane < 0 || lane >= 5 {
			t.Fatalf("Lane %d out of range [0,5)", lane)
		}
	}
}

// TestPickLanePrefersClearLane 只有一条轨道空闲时应大概率选中它
func TestPickLanePrefersClearLane(t *testing.T) {
	la := newTestAllocator(5)
	for lane := 0; lane < 5; lane++ {
		la.MarkSpawn(lane, 2000)
	}
	la.Clear(3)

	hits := 0
	const rounds = 200
	for i := 0; i < rounds; i++ {
		lane, _ := la.PickLane(1920)
		if lane == 3 {
			hits++
		}
	}

	// 10 次探测都错过第 3 轨的概率为 0.8^10 ≈ 10.7%
	if hits < rounds*3/4 {
		t.Errorf("Expected the clear lane to win most picks, got %d/%d", hits, rounds)
	}
}

// TestPickLaneExhaustion 所有轨道都在安全间距内时仍返回合法索引
func TestPickLaneExhaustion(t *testing.T) {
	la := newTestAllocator(5)
	for lane := 0; lane < 5; lane++ {
		la.MarkSpawn(lane, 1900)
	}

	for i := 0; i < 50; i++ {
		lane, ok := la.PickLane(1920)
		if !ok {
			t.Fatalf("Expected best-effort lane after exhaustion")
		}
		if lane < 0 || lane >= 5 {
			t.Fatalf("Lane %d out of range [0,5)", lane)
		}
	}
}

// TestPickLaneAttemptLimit 探测次数不超过上限
func TestPickLaneAttemptLimit(t *testing.T) {
	src := &countingSource{Source: rand.NewSource(7)}
	la := NewLaneAllocator(5, 100, 10, rand.New(src))
	for lane := 0; lane < 5; lane++ {
		la.MarkSpawn(lane, 5000)
	}

	la.PickLane(1920)
	if src.calls > 10 {
		t.Errorf("Expected at most 10 probes, random source was called %d times", src.calls)
	}
	if src.calls == 0 {
		t.Errorf("Expected at least one probe")
	}
}

func TestPickLaneNoLanes(t *testing.T) {
	la := newTestAllocator(0)
	if _, ok := la.PickLane(1920); ok {
		t.Errorf("Expected no lane when lane count is 0")
	}
}

func TestMarkSpawnAndClear(t *testing.T) {
	la := newTestAllocator(3)

	la.MarkSpawn(1, 2100)
	if got := la.LastSpawnX(1); got != 2100 {
		t.Errorf("Expected LastSpawnX=2100, got %.1f", got)
	}

	la.Clear(1)
	if got := la.LastSpawnX(1); got != 0 {
		t.Errorf("Expected LastSpawnX=0 after Clear, got %.1f", got)
	}

	// 越界索引不应 panic
	la.MarkSpawn(-1, 10)
	la.MarkSpawn(3, 10)
	la.Clear(99)
	if got := la.LastSpawnX(99); got != 0 {
		t.Errorf("Expected 0 for out-of-range lane, got %.1f", got)
	}
}

func TestResizeKeepsSurvivingLanes(t *testing.T) {
	la := newTestAllocator(4)
	la.MarkSpawn(0, 1000)
	la.MarkSpawn(3, 3000)

	la.Resize(2)
	if la.LaneCount() != 2 {
		t.Fatalf("Expected 2 lanes, got %d", la.LaneCount())
	}
	if got := la.LastSpawnX(0); got != 1000 {
		t.Errorf("Expected lane 0 to keep LastSpawnX=1000, got %.1f", got)
	}

	la.Resize(6)
	if la.LaneCount() != 6 {
		t.Fatalf("Expected 6 lanes, got %d", la.LaneCount())
	}
	if got := la.LastSpawnX(3); got != 0 {
		t.Errorf("Expected re-added lane 3 to be clear, got %.1f", got)
	}
}

// countingSource 统计随机数源的调用次数
type countingSource struct {
	rand.Source
	calls int
}

func (s *countingSource) Int63() int64 {
	s.calls++
	return s.Source.Int63()
}
