package status

import (
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/NXINGNICK/whitegate/common"
)

// Prober reports whether the game server is reachable and how many
// players are on. The default prober simulates a server; a real query
// client can be plugged in without touching the rest of the module.
type Prober interface {
	Probe() (online bool, players int)
}

type simulatedProber struct{}

func (simulatedProber) Probe() (bool, int) {
	if rand.Float64() > 0.9 {
		return false, 0
	}
	return true, rand.Intn(100)
}

// Status is one sample of host and game-server health.
type Status struct {
	Online    bool      `json:"online"`
	Players   int       `json:"players"`
	Cpu       float64   `json:"cpu"`
	MemUsed   uint64    `json:"mem_used"`
	MemTotal  uint64    `json:"mem_total"`
	Uptime    uint64    `json:"uptime"`
	CheckedAt time.Time `json:"checked_at"`
}

type StatusModule struct {
	mu      sync.RWMutex
	current Status
	prober  Prober
	cron    *cron.Cron
}

func NewStatusModule(prober Prober) *StatusModule {
	if prober == nil {
		prober = simulatedProber{}
	}
	m := &StatusModule{prober: prober}
	m.Refresh()
	return m
}

func (m *StatusModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/serverstatus", m.page)
	router.GET("/api/status", m.api)
}

// Start schedules the periodic refresh. The page always serves the
// last completed sample, never blocks on a probe.
func (m *StatusModule) Start() {
	m.cron = cron.New(cron.WithSeconds())
	if _, err := m.cron.AddFunc("@every 15s", m.Refresh); err != nil {
		log.Printf("failed to schedule status refresh: %v", err)
		return
	}
	m.cron.Start()
}

func (m *StatusModule) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}

// Refresh takes a fresh sample of host metrics and the game server.
func (m *StatusModule) Refresh() {
	var s Status
	s.CheckedAt = time.Now()
	s.Online, s.Players = m.prober.Probe()

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		s.Cpu = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsed = vm.Used
		s.MemTotal = vm.Total
	}
	if up, err := host.Uptime(); err == nil {
		s.Uptime = up
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

func (m *StatusModule) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *StatusModule) page(c *gin.Context) {
	_, adminLoggedIn := common.CurrentAdminID(c)
	c.HTML(http.StatusOK, "status.html", gin.H{
		"status":  m.Current(),
		"isAdmin": adminLoggedIn,
	})
}

func (m *StatusModule) api(c *gin.Context) {
	c.JSON(http.StatusOK, m.Current())
}
