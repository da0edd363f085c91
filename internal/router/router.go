// Package router tracks which dashboard panel is shown.
package router

import (
	"slices"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

// DefaultView is rendered for any view without a panel of its own.
const DefaultView = domain.ViewDashboard

// NavItem is one sidebar entry.
type NavItem struct {
	ID    domain.View `json:"id"`
	Label string      `json:"label"`
	Badge int         `json:"badge,omitempty"`
}

var navItems = []NavItem{
	{ID: domain.ViewDashboard, Label: "Dashboard"},
	{ID: domain.ViewCanvas, Label: "SomaDesign", Badge: 2},
	{ID: domain.ViewKanban, Label: "Kanban Board"},
	{ID: domain.ViewAgents, Label: "Agentes"},
	{ID: domain.ViewDeploy, Label: "SomaHost"},
	{ID: domain.ViewLogs, Label: "Logs"},
	{ID: domain.ViewSettings, Label: "Configurações"},
}

// State is a snapshot of the router.
type State struct {
	View        domain.View `json:"view"`
	SidebarOpen bool        `json:"sidebar_open"`
}

// Router holds the current view and the sidebar flag. Switching is an
// unconditional overwrite: no guards, no history.
type Router struct {
	mu    sync.RWMutex
	state State
	pub   events.Publisher
}

func New(pub events.Publisher) *Router {
	if pub == nil {
		pub = events.Discard
	}
	return &Router{state: State{View: DefaultView, SidebarOpen: true}, pub: pub}
}

func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// SetView stores v as given; unknown values are kept and only mapped to the
// default by Resolve.
func (r *Router) SetView(v domain.View) {
	r.mu.Lock()
	r.state.View = v
	st := r.state
	r.mu.Unlock()
	r.pub.Publish(events.TopicView, st)
}

func (r *Router) ToggleSidebar() bool {
	r.mu.Lock()
	r.state.SidebarOpen = !r.state.SidebarOpen
	st := r.state
	r.mu.Unlock()
	r.pub.Publish(events.TopicView, st)
	return st.SidebarOpen
}

func (r *Router) SetSidebarOpen(open bool) {
	r.mu.Lock()
	r.state.SidebarOpen = open
	st := r.state
	r.mu.Unlock()
	r.pub.Publish(events.TopicView, st)
}

// Rendered is the panel that would be drawn for the current state.
func (r *Router) Rendered() domain.View {
	return Resolve(r.State().View)
}

// Resolve maps v to the panel drawn for it. Unknown views and chat, which
// lives in the floating widget rather than a panel, fall back to DefaultView.
func Resolve(v domain.View) domain.View {
	if HasPanel(v) {
		return v
	}
	return DefaultView
}

func HasPanel(v domain.View) bool {
	return Known(v) && v != domain.ViewChat
}

func Known(v domain.View) bool {
	return slices.Contains(domain.Views, v)
}

// NavItems returns the sidebar entries in display order.
func NavItems() []NavItem {
	return slices.Clone(navItems)
}
