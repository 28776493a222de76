// Package health collects the status shown by /health/json: dependency
// pings, request traffic and invitation outcomes, all kept in Redis so every
// instance reports the same totals.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"yuime-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	KeyInvitesSuccess = "health:global:invites_success"
	KeyInvitesFailed  = "health:global:invites_failed"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

type Result struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Invitations  InvitationInfo       `json:"invitations"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type InvitationInfo struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Checker gathers health data. Probes maps a dependency name to a URL that
// must answer an HTTP GET (e.g. the mail API).
type Checker struct {
	Rdb          *redis.Client
	DB           DBPinger
	Probes       map[string]string
	ProbeTimeout time.Duration
}

// Collect gathers health data from Redis, the optional DB and the HTTP probes.
func (h *Checker) Collect(ctx context.Context) Result {
	result := Result{
		Dependencies: make(map[string]DepStatus),
	}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if h.DB != nil {
		start := time.Now()
		if err := h.DB.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()

	if h.Rdb != nil {
		start := time.Now()
		if err := h.Rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"
			startTimeMs = h.readTraffic(ctx, &stats, startTimeMs)
			result.Invitations = InvitationInfo{
				Sent:   h.getInt(ctx, KeyInvitesSuccess),
				Failed: h.getInt(ctx, KeyInvitesFailed),
			}
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}
	result.Traffic = stats

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	timeout := h.ProbeTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	for name, url := range h.Probes {
		ping := httpPing(ctx, url, timeout)
		status := "unreachable"
		if ping != nil {
			status = "reachable"
		}
		result.Dependencies[name] = DepStatus{Status: status, PingMs: ping}
	}

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

func (h *Checker) readTraffic(ctx context.Context, stats *TrafficInfo, startTimeMs int64) int64 {
	startTimeStr, _ := h.Rdb.Get(ctx, middleware.KeyStartTime).Result()
	if startTimeStr != "" {
		if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		h.Rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests = h.getInt(ctx, middleware.KeyReqTotal)
	stats.FailedCount = h.getInt(ctx, middleware.KeyReqErrors)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	totalTime, _ := h.Rdb.Get(ctx, middleware.KeyResTime).Result()
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	if countSum := h.getInt(ctx, middleware.KeyResCount); countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if lastReqStr, _ := h.Rdb.Get(ctx, middleware.KeyLastReq).Result(); lastReqStr != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
		stats.LastRequest = lastReq
	}
	return startTimeMs
}

func (h *Checker) getInt(ctx context.Context, key string) int {
	s, _ := h.Rdb.Get(ctx, key).Result()
	n, _ := strconv.Atoi(s)
	return n
}

// RecordInvitation counts one finished recipient; failed reports the outcome.
func RecordInvitation(ctx context.Context, rdb *redis.Client, failed bool) {
	key := KeyInvitesSuccess
	if failed {
		key = KeyInvitesFailed
	}
	_, _ = rdb.Incr(ctx, key).Result()
}

// ResetKeys are the Redis keys cleared by /health/reset.
var ResetKeys = []string{
	middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount,
	middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog,
	KeyInvitesSuccess, KeyInvitesFailed,
}

func httpPing(ctx context.Context, url string, timeout time.Duration) *int64 {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	ms := time.Since(start).Milliseconds()
	return &ms
}
