package memory

import (
	"fmt"
	"sync"
	"time"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	defaultLimit = 2 * 1024 * 1024 * 1024 // 2GB
	matsPerPool  = 5
)

// Manager hands out pooled Mats and accounts for native memory so a
// runaway request fails with a classified error instead of exhausting
// the process. It also satisfies safe.MemoryTracker for Mats created
// outside the pools; tracked bytes share the same limit.
type Manager struct {
	pools       map[PoolKey]*Pool
	allocations map[uint64]*AllocationRecord
	tracked     map[uint64]int64
	mu          sync.RWMutex
	stats       *Stats
	logger      logger.Logger
}

type PoolKey struct {
	Rows    int
	Cols    int
	MatType gocv.MatType
}

type AllocationRecord struct {
	Mat       *safe.Mat
	CreatedAt time.Time
	Size      int64
}

// Stats counts pooled Mats in TotalAllocated until they are actually
// closed; a Mat parked in a pool keeps its native buffer, so its bytes
// stay in use. TrackedBytes covers Mats registered through the
// safe.MemoryTracker hooks.
type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	TrackedBytes   int64
	ActiveMats     int64
	TrackedMats    int64
	PoolHits       int64
	PoolMisses     int64
	MaxAllowed     int64
}

func NewManager(log logger.Logger) *Manager {
	return NewManagerWithLimit(log, defaultLimit)
}

func NewManagerWithLimit(log logger.Logger, maxBytes int64) *Manager {
	if maxBytes <= 0 {
		maxBytes = defaultLimit
	}
	return &Manager{
		pools:       make(map[PoolKey]*Pool),
		allocations: make(map[uint64]*AllocationRecord),
		tracked:     make(map[uint64]int64),
		stats: &Stats{
			MaxAllowed: maxBytes,
		},
		logger: log,
	}
}

func (m *Manager) GetMat(rows, cols int, matType gocv.MatType) (*safe.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := PoolKey{Rows: rows, Cols: cols, MatType: matType}
	size := matBytes(key)

	if pool, exists := m.pools[key]; exists {
		if mat := pool.Get(); mat != nil {
			m.stats.PoolHits++
			m.stats.ActiveMats++
			m.allocations[mat.ID()] = &AllocationRecord{
				Mat:       mat,
				CreatedAt: time.Now(),
				Size:      size,
			}
			m.logger.Debug("MemoryManager", "reused Mat from pool", map[string]interface{}{
				"rows": rows,
				"cols": cols,
			})
			return mat, nil
		}
	}

	if inUse := m.inUseLocked(); inUse+size > m.stats.MaxAllowed {
		return nil, apperrors.NewInsufficientResourcesError(
			fmt.Sprintf("memory limit exceeded: %d bytes in use, %d requested", inUse, size), nil)
	}

	m.stats.PoolMisses++
	mat, err := safe.NewMat(rows, cols, matType)
	if err != nil {
		return nil, err
	}

	m.allocations[mat.ID()] = &AllocationRecord{
		Mat:       mat,
		CreatedAt: time.Now(),
		Size:      size,
	}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++

	return mat, nil
}

// ReleaseMat returns a manager-owned Mat to its pool, or closes it when
// the pool is full. Mats the manager never handed out are closed
// directly, so callers can release every working Mat the same way.
func (m *Manager) ReleaseMat(mat *safe.Mat) {
	if mat == nil {
		return
	}

	m.mu.Lock()
	record, exists := m.allocations[mat.ID()]
	if exists {
		delete(m.allocations, mat.ID())
		m.stats.ActiveMats--

		key := PoolKey{Rows: mat.Rows(), Cols: mat.Cols(), MatType: mat.Type()}
		pool, ok := m.pools[key]
		if !ok {
			pool = NewPool(matsPerPool)
			m.pools[key] = pool
		}

		if pool.Put(mat) {
			m.mu.Unlock()
			return
		}
		m.stats.TotalReleased += record.Size
	}
	m.mu.Unlock()

	// Closed outside the lock: foreign Mats may carry a tracker that
	// calls back into this manager.
	mat.Close()
}

// TrackAllocation implements safe.MemoryTracker for Mats created
// outside the pools, such as decoded sources and their clones.
func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tracked[id] = size
	m.stats.TrackedBytes += size
	m.stats.TrackedMats++
}

// TrackDeallocation implements safe.MemoryTracker.
func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size, exists := m.tracked[id]
	if !exists {
		return
	}
	delete(m.tracked, id)
	m.stats.TrackedBytes -= size
	m.stats.TrackedMats--
}

func (m *Manager) GetStats() *Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statsCopy := *m.stats
	return &statsCopy
}

// Cleanup closes every pooled Mat and any Mat still checked out.
// Tracked Mats belong to their owners and are left alone.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	matCount := 0
	for key, pool := range m.pools {
		count := pool.Cleanup()
		m.stats.TotalReleased += int64(count) * matBytes(key)
		matCount += count
		delete(m.pools, key)
	}

	for id, record := range m.allocations {
		record.Mat.Close()
		m.stats.TotalReleased += record.Size
		m.stats.ActiveMats--
		delete(m.allocations, id)
		matCount++
	}

	m.logger.Info("MemoryManager", "released pooled Mats", map[string]interface{}{
		"count": matCount,
	})
}

func (m *Manager) inUseLocked() int64 {
	return m.stats.TotalAllocated - m.stats.TotalReleased + m.stats.TrackedBytes
}

func matBytes(key PoolKey) int64 {
	return int64(key.Rows) * int64(key.Cols) * int64(matTypeSize(key.MatType))
}

func matTypeSize(matType gocv.MatType) int {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return 1
	case gocv.MatTypeCV8UC3:
		return 3
	case gocv.MatTypeCV8UC4:
		return 4
	case gocv.MatTypeCV16UC1:
		return 2
	case gocv.MatTypeCV16UC3:
		return 6
	case gocv.MatTypeCV16UC4:
		return 8
	case gocv.MatTypeCV32FC1:
		return 4
	case gocv.MatTypeCV32FC3:
		return 12
	case gocv.MatTypeCV32FC4:
		return 16
	default:
		return 1
	}
}
