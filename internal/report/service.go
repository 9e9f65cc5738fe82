// Package report aggregates complaint counts for the admin dashboard.
package report

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/access"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

// DepartmentResolution is the mean time from submission to first
// resolution over one department's resolved complaints.
type DepartmentResolution struct {
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	Resolved       int     `json:"resolved"`
	AverageHours   float64 `json:"averageHours"`
}

type Summary struct {
	ByCategory                []storage.CountRow     `json:"byCategory"`
	ByStatus                  []storage.CountRow     `json:"byStatus"`
	AvgResolutionByDepartment []DepartmentResolution `json:"avgResolutionByDepartment"`
}

type Service struct {
	store storage.ReportStore
	cache storage.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewService creates a report service. cache may be nil; ttl <= 0 disables
// caching.
func NewService(store storage.ReportStore, cache storage.Cache, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{store: store, cache: cache, ttl: ttl, log: log}
}

// Summary returns complaint counts by category and by status, and the
// average resolution time per department. Admins only.
func (s *Service) Summary(ctx context.Context, actor auth.Identity) (*Summary, error) {
	if !access.CanViewReports(actor) {
		return nil, apperr.Forbidden("only admins can view reports")
	}
	if cached := s.cached(ctx); cached != nil {
		return cached, nil
	}

	byCategory, err := s.store.CountComplaintsByCategory(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byStatus, err := s.store.CountComplaintsByStatus(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	samples, err := s.store.ResolutionSamples(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	sum := &Summary{
		ByCategory:                nonNil(byCategory),
		ByStatus:                  nonNil(byStatus),
		AvgResolutionByDepartment: AverageResolution(samples),
	}
	s.remember(ctx, sum)
	return sum, nil
}

// AverageResolution groups samples by department, ordered by department name.
func AverageResolution(samples []storage.ResolutionSample) []DepartmentResolution {
	type acc struct {
		name  string
		n     int
		total time.Duration
	}
	byDept := map[string]*acc{}
	for _, sm := range samples {
		a, ok := byDept[sm.DepartmentID]
		if !ok {
			a = &acc{name: sm.DepartmentName}
			byDept[sm.DepartmentID] = a
		}
		a.n++
		a.total += sm.ResolvedAt.Sub(sm.SubmittedAt)
	}

	out := make([]DepartmentResolution, 0, len(byDept))
	for id, a := range byDept {
		avg := a.total / time.Duration(a.n)
		out = append(out, DepartmentResolution{
			DepartmentID:   id,
			DepartmentName: a.name,
			Resolved:       a.n,
			AverageHours:   avg.Hours(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartmentName < out[j].DepartmentName })
	return out
}

func (s *Service) cached(ctx context.Context) *Summary {
	if s.cache == nil || s.ttl <= 0 {
		return nil
	}
	raw, ok, err := s.cache.CacheGet(ctx, config.ReportCacheKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("report cache unavailable")
		return nil
	}
	if !ok {
		return nil
	}
	var sum Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable report cache entry")
		return nil
	}
	return &sum
}

func (s *Service) remember(ctx context.Context, sum *Summary) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(sum)
	if err != nil {
		return
	}
	if err := s.cache.CacheSet(ctx, config.ReportCacheKey, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache report summary")
	}
}

func nonNil(rows []storage.CountRow) []storage.CountRow {
	if rows == nil {
		return []storage.CountRow{}
	}
	return rows
}
