package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// smoothing is the weight kept from the previous average on each sample.
const smoothing = 0.8

// CostStat is an exponential moving average of a cost in milliseconds.
type CostStat struct {
	Avg float64
}

func (s *CostStat) Update(sample float64) {
	s.Avg = s.Avg*smoothing + sample*(1-smoothing)
}

// Profiler keeps one CostStat per named metric. It is purely observational.
type Profiler struct {
	Stats      map[string]*CostStat
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		Stats:      make(map[string]*CostStat),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
	}
}

func (p *Profiler) stat(name string) *CostStat {
	s, ok := p.Stats[name]
	if !ok {
		s = &CostStat{}
		p.Stats[name] = s
		p.Order = append(p.Order, name)
	}
	return s
}

// Sample feeds a cost in milliseconds.
func (p *Profiler) Sample(name string, ms float64) {
	p.stat(name).Update(ms)
}

// Observe feeds a wall-clock duration.
func (p *Profiler) Observe(name string, d time.Duration) {
	p.Sample(name, float64(d.Microseconds())/1000.0)
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = time.Now()
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Observe(name, time.Since(start))
		delete(p.StartTimes, name)
	}
}

// Value returns the current average for name, 0 if never sampled.
func (p *Profiler) Value(name string) float64 {
	if s, ok := p.Stats[name]; ok {
		return s.Avg
	}
	return 0
}

func (p *Profiler) Names() []string {
	return append([]string(nil), p.Order...)
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Costs (EMA):\n")
	for _, name := range p.Order {
		sb.WriteString(fmt.Sprintf("  %-15s: %.3f ms\n", name, p.Stats[name].Avg))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}
