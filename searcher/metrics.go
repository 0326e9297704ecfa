package searcher

import (
	"sync"
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Engine      string
	StartTime   time.Time
	Duration    time.Duration
	Iterations  int
	Leaves      int
	Evaluations int // Evaluator calls
	Positions   int // Positions sent to evaluators
	TreeSize    int
}

type Collector interface {
	Start(engine string)
	AddIteration()
	AddLeaves(n int)
	AddEvaluation(positions int)
	Complete(treeSize int) SearchMetric
	Last() SearchMetric
}

type collector struct {
	mu          sync.Mutex
	engine      string
	startTime   time.Time
	iterations  atomic.Int64
	leaves      atomic.Int64
	evaluations atomic.Int64
	positions   atomic.Int64
	last        SearchMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.engine = engine
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.leaves.Store(0)
	m.evaluations.Store(0)
	m.positions.Store(0)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddLeaves(n int) {
	m.leaves.Add(int64(n))
}

func (m *collector) AddEvaluation(positions int) {
	m.evaluations.Add(1)
	m.positions.Add(int64(positions))
}

func (m *collector) Complete(treeSize int) SearchMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = SearchMetric{
		Engine:      m.engine,
		StartTime:   m.startTime,
		Duration:    time.Since(m.startTime),
		Iterations:  int(m.iterations.Load()),
		Leaves:      int(m.leaves.Load()),
		Evaluations: int(m.evaluations.Load()),
		Positions:   int(m.positions.Load()),
		TreeSize:    treeSize,
	}
	return m.last
}

func (m *collector) Last() SearchMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.last
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(engine string)                {}
func (m *dummyCollector) AddIteration()                      {}
func (m *dummyCollector) AddLeaves(n int)                    {}
func (m *dummyCollector) AddEvaluation(positions int)        {}
func (m *dummyCollector) Complete(treeSize int) SearchMetric { return SearchMetric{} }
func (m *dummyCollector) Last() SearchMetric                 { return SearchMetric{} }
