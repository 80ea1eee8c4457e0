package web

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/teslashibe/go-presenter/pkg/history"
)

// ThresholdsRequest is the body of PUT /api/thresholds. Omitted fields keep
// their current value.
type ThresholdsRequest struct {
	ClarityThreshold   *float64 `json:"clarity_threshold"`
	StabilityThreshold *float64 `json:"stability_threshold"`
}

// SystemInfo is returned by GET /api/system.
type SystemInfo struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	Viewers       int     `json:"viewers"`
}

func unavailable(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": what + " not configured",
	})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// handleStatus returns the current dashboard state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.State())
}

func (s *Server) handleGetThresholds(c *fiber.Ctx) error {
	if s.opts.Calibrator == nil {
		return unavailable(c, "calibration")
	}
	return c.JSON(s.opts.Calibrator.Config())
}

// handlePutThresholds recalibrates the targeting gates at runtime
func (s *Server) handlePutThresholds(c *fiber.Ctx) error {
	if s.opts.Calibrator == nil {
		return unavailable(c, "calibration")
	}

	var req ThresholdsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
	}

	cfg := s.opts.Calibrator.Config()
	if req.ClarityThreshold != nil {
		cfg.ClarityThreshold = *req.ClarityThreshold
	}
	if req.StabilityThreshold != nil {
		cfg.StabilityThreshold = *req.StabilityThreshold
	}

	if err := s.opts.Calibrator.SetConfig(cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.logger.Info("thresholds updated",
		"clarity", cfg.ClarityThreshold,
		"stability", cfg.StabilityThreshold)

	s.UpdateState(func(st *State) { st.Thresholds = cfg })
	return c.JSON(cfg)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.opts.History == nil {
		return unavailable(c, "history")
	}

	limit := history.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	entries, err := s.opts.History.Recent(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// handleSystem reports host load next to the feed
func (s *Server) handleSystem(c *fiber.Ctx) error {
	info := SystemInfo{Viewers: s.Viewers()}

	if pct, err := cpu.PercentWithContext(c.UserContext(), 0, false); err == nil && len(pct) > 0 {
		info.CPUPercent = round1(pct[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(c.UserContext()); err == nil {
		info.MemoryPercent = round1(vm.UsedPercent)
		info.MemoryUsedMB = vm.Used / (1 << 20)
		info.MemoryTotalMB = vm.Total / (1 << 20)
	}
	return c.JSON(info)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
