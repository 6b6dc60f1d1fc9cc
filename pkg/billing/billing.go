// Package billing estimates Cloud Run compute cost (europe-west1 pricing)
// for single requests and for monthly usage scenarios.
package billing

import (
	"math"
	"time"
)

// Pricing in EUR.
const (
	CPUSecondEUR     = 0.000024
	GiBSecondEUR     = 0.0000025
	PerMillionReqEUR = 0.40
)

// Monthly free tier.
const (
	FreeRequests       = 2_000_000
	FreeCPUSeconds     = 360_000
	FreeGiBSeconds     = 180_000
	DefaultDaysInMonth = 30
)

// Deployment describes the service's Cloud Run allocation and expected timing.
type Deployment struct {
	CPUs        float64       `json:"cpus" yaml:"cpus"`
	MemoryGiB   float64       `json:"memory_gib" yaml:"memory_gib"`
	AvgDuration time.Duration `json:"avg_duration" yaml:"avg_duration"`
	ColdStart   time.Duration `json:"cold_start" yaml:"cold_start"`

	// ColdStartPercent of requests pay ColdStart on top of AvgDuration.
	ColdStartPercent int `json:"cold_start_percent" yaml:"cold_start_percent"`
}

// DefaultDeployment is 2 vCPU, 2 GiB, 60s per analysis, 10% cold starts at +30s.
func DefaultDeployment() Deployment {
	return Deployment{
		CPUs:             2,
		MemoryGiB:        2,
		AvgDuration:      60 * time.Second,
		ColdStart:        30 * time.Second,
		ColdStartPercent: 10,
	}
}

// RequestCost is the estimated cost of one request.
type RequestCost struct {
	CPU     float64 `json:"cpu_eur"`
	Memory  float64 `json:"memory_eur"`
	Request float64 `json:"request_eur"`
	Total   float64 `json:"total_eur"`
}

// EstimateRequest prices one request of duration d on cpus vCPUs and memGiB
// of memory. The free tier is not applied.
func EstimateRequest(d time.Duration, cpus, memGiB float64) RequestCost {
	secs := d.Seconds()
	c := RequestCost{
		CPU:     secs * cpus * CPUSecondEUR,
		Memory:  secs * memGiB * GiBSecondEUR,
		Request: PerMillionReqEUR / 1_000_000,
	}
	c.Total = c.CPU + c.Memory + c.Request
	return c
}

// Scenario is a steady monthly usage pattern.
type Scenario struct {
	Name           string `json:"name" yaml:"name"`
	RequestsPerDay int    `json:"requests_per_day" yaml:"requests_per_day"`
	Days           int    `json:"days" yaml:"days"`
}

// DefaultScenarios covers development through medium production load.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "development", RequestsPerDay: 5, Days: DefaultDaysInMonth},
		{Name: "beta", RequestsPerDay: 20, Days: DefaultDaysInMonth},
		{Name: "light production", RequestsPerDay: 50, Days: DefaultDaysInMonth},
		{Name: "medium production", RequestsPerDay: 200, Days: DefaultDaysInMonth},
	}
}

// MonthlyCost is the estimate for one scenario.
type MonthlyCost struct {
	Scenario       Scenario `json:"scenario"`
	Requests       int      `json:"requests"`
	CPUSeconds     float64  `json:"cpu_seconds"`
	GiBSeconds     float64  `json:"gib_seconds"`
	WithinFreeTier bool     `json:"within_free_tier"`
	RequestEUR     float64  `json:"request_eur"`
	CPUEUR         float64  `json:"cpu_eur"`
	MemoryEUR      float64  `json:"memory_eur"`
	TotalEUR       float64  `json:"total_eur"`
	PerRequestEUR  float64  `json:"per_request_eur"`
}

// EstimateMonth prices a scenario after subtracting the free tier.
// Warm and cold request counts are truncated independently.
func EstimateMonth(dep Deployment, s Scenario) MonthlyCost {
	total := s.RequestsPerDay * s.Days
	cold := total * dep.ColdStartPercent / 100
	warm := total * (100 - dep.ColdStartPercent) / 100

	avg := dep.AvgDuration.Seconds()
	seconds := float64(warm)*avg + float64(cold)*(avg+dep.ColdStart.Seconds())

	m := MonthlyCost{
		Scenario:   s,
		Requests:   total,
		CPUSeconds: seconds * dep.CPUs,
		GiBSeconds: seconds * dep.MemoryGiB,
	}
	m.WithinFreeTier = total < FreeRequests && m.CPUSeconds < FreeCPUSeconds && m.GiBSeconds < FreeGiBSeconds

	m.RequestEUR = math.Max(0, float64(total-FreeRequests)) / 1_000_000 * PerMillionReqEUR
	m.CPUEUR = math.Max(0, m.CPUSeconds-FreeCPUSeconds) * CPUSecondEUR
	m.MemoryEUR = math.Max(0, m.GiBSeconds-FreeGiBSeconds) * GiBSecondEUR
	m.TotalEUR = m.RequestEUR + m.CPUEUR + m.MemoryEUR
	if total > 0 {
		m.PerRequestEUR = m.TotalEUR / float64(total)
	}
	return m
}

// FreeTierDailyLimit is the number of average requests per day that fit in
// the CPU and memory free tier over a 30 day month.
func FreeTierDailyLimit(dep Deployment) float64 {
	per := dep.AvgDuration.Seconds()
	if per <= 0 {
		return math.Inf(1)
	}
	byCPU := math.Inf(1)
	if dep.CPUs > 0 {
		byCPU = FreeCPUSeconds / (per * dep.CPUs) / DefaultDaysInMonth
	}
	byMem := math.Inf(1)
	if dep.MemoryGiB > 0 {
		byMem = FreeGiBSeconds / (per * dep.MemoryGiB) / DefaultDaysInMonth
	}
	return math.Min(byCPU, byMem)
}
