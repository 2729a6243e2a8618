package services

import (
	"context"
	"strings"
	"sync"

	"parking/internal/domain"
	"parking/internal/utils"
)

type View string

const (
	ViewDashboard View = "dashboard"
	ViewRegister  View = "register"
	ViewReports   View = "reports"
	ViewAdmin     View = "admin"
)

func ParseView(s string) (View, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dashboard":
		return ViewDashboard, true
	case "register", "registro":
		return ViewRegister, true
	case "reports", "reportes":
		return ViewReports, true
	case "admin":
		return ViewAdmin, true
	}
	return "", false
}

// Session is the operator's application state: which view is showing and
// whether the dashboard refresh loop runs. The loop only runs on the
// dashboard view.
type Session struct {
	Poller *DashboardPoller

	ctx context.Context
	// switchMu orders switches; mu only guards view so View never waits
	// on the poller.
	switchMu sync.Mutex
	mu       sync.Mutex
	view     View
}

// NewSession binds the poller lifetime to ctx. No view is active until the
// first SwitchView.
func NewSession(ctx context.Context, poller *DashboardPoller) *Session {
	return &Session{Poller: poller, ctx: ctx}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SwitchView changes the current view. The admin view requires an
// authenticated operator.
func (s *Session) SwitchView(v View, authenticated bool) error {
	if v == ViewAdmin && !authenticated {
		return domain.UnauthorizedError{Msg: "login required for the admin view"}
	}

	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	prev := s.view
	s.view = v
	s.mu.Unlock()

	if v == ViewDashboard {
		s.Poller.Start(s.ctx)
	} else {
		s.Poller.Stop()
	}
	if prev != v {
		utils.LogEventf("", "session", "switch_view", "from=%s to=%s", prev, v)
	}
	return nil
}

// Close stops any background refresh.
func (s *Session) Close() {
	s.Poller.Stop()
}
