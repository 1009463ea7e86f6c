// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// AdminServer is the small gin-based admin surface a running filter
// exposes alongside its writer frontend: liveness, per-filter counters,
// and a Prometheus scrape endpoint.
type AdminServer struct {
	ge   *gin.Engine
	addr string

	mu        sync.RWMutex
	frontends map[string]*logging.Frontend
}

// NewAdminServer creates an admin server listening on addr.
func NewAdminServer(addr string) *AdminServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	as := &AdminServer{
		ge:        r,
		addr:      addr,
		frontends: make(map[string]*logging.Frontend),
	}
	as.attach()
	return as
}

func (s *AdminServer) attach() {
	s.ge.GET("/healthz", s.healthz)
	s.ge.GET("/stats", s.stats)
	s.ge.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterFilter makes f's counters visible under /stats, keyed by its
// name.
func (s *AdminServer) RegisterFilter(f *logging.Frontend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frontends[f.Name()] = f
}

// UnregisterFilter removes a filter previously added with RegisterFilter,
// e.g. once its Finish has completed.
func (s *AdminServer) UnregisterFilter(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.frontends, name)
}

// Run blocks serving the admin HTTP surface on s.addr.
func (s *AdminServer) Run() error {
	return s.ge.Run(s.addr)
}

func (s *AdminServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, Resp{Code: RespOK, Msg: "ok"})
}

// filterStats is one entry in /stats's per-filter report.
type filterStats struct {
	Name    string               `json:"name"`
	Stats   logging.BackendStats `json:"stats"`
	Healthy bool                 `json:"healthy"`
}

func (s *AdminServer) stats(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := make([]filterStats, 0, len(s.frontends))
	for name, f := range s.frontends {
		bs, ok := f.Stats()
		report = append(report, filterStats{
			Name:    name,
			Stats:   bs,
			Healthy: ok && !f.Disabled(),
		})
	}

	c.JSON(http.StatusOK, Resp{Code: RespOK, Msg: "ok", Data: report})
}
