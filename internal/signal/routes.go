package signal

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Route describes what happens to a prospect's sequence after a call
// disposition is logged.
type Route struct {
	Action     string `json:"action" yaml:"action"`
	NextStep   int    `json:"next_step,omitempty" yaml:"next_step,omitempty"`
	TransferTo string `json:"transfer_to,omitempty" yaml:"transfer_to,omitempty"`
	DelayHours int    `json:"delay_hours,omitempty" yaml:"delay_hours,omitempty"`
	LogEntry   string `json:"log_entry" yaml:"log_entry"`
}

// Valid sequence actions.
const (
	ActionAdvance  = "advance"
	ActionTransfer = "transfer"
	ActionFinish   = "finish"
	ActionRetry    = "retry"
	ActionRemove   = "remove"
)

// defaultRoutes is the built-in disposition table. A routes file on disk
// overrides it wholesale.
var defaultRoutes = map[string]Route{
	"connected_interested": {
		Action:   ActionAdvance,
		LogEntry: "Connected, interested, advancing sequence",
	},
	"connected_not_interested": {
		Action:   ActionFinish,
		LogEntry: "Connected, not interested, finishing sequence",
	},
	"connected_callback": {
		Action:     ActionAdvance,
		DelayHours: 48,
		LogEntry:   "Connected, callback requested",
	},
	"voicemail": {
		Action:   ActionAdvance,
		LogEntry: "Voicemail left, advancing sequence",
	},
	"no_answer": {
		Action:     ActionRetry,
		DelayHours: 4,
		LogEntry:   "No answer, retry in 4 hours",
	},
	"busy": {
		Action:     ActionRetry,
		DelayHours: 2,
		LogEntry:   "Line busy, retry in 2 hours",
	},
	"wrong_number": {
		Action:   ActionFinish,
		LogEntry: "Wrong number, removed from sequence",
	},
	"gatekeeper": {
		Action:   ActionAdvance,
		LogEntry: "Gatekeeper, advancing to email follow-up",
	},
	"meeting_booked": {
		Action:   ActionTransfer,
		LogEntry: "MEETING BOOKED, transferred to nurture sequence",
	},
	"do_not_call": {
		Action:   ActionRemove,
		LogEntry: "Do Not Call, permanently removed",
	},
}

// Router resolves dispositions to routes. When backed by a file it
// re-reads the table whenever the file's mtime changes, so route edits
// take effect without a restart.
type Router struct {
	mu     sync.Mutex
	routes map[string]Route
	path   string
	mtime  time.Time
}

// NewRouter returns a router backed by the built-in disposition table.
func NewRouter() *Router {
	return &Router{routes: defaultRoutes}
}

// LoadRouter reads a disposition table from a YAML file. A missing file
// falls back to the built-in table; a malformed file is an error.
func LoadRouter(path string) (*Router, error) {
	r := &Router{routes: defaultRoutes, path: path}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "signal: stat routes file %s", path)
	}

	routes, err := readRoutes(path)
	if err != nil {
		return nil, err
	}
	if len(routes) > 0 {
		r.routes = routes
	}
	r.mtime = info.ModTime()
	return r, nil
}

func readRoutes(path string) (map[string]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "signal: read routes file %s", path)
	}
	var routes map[string]Route
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return nil, eris.Wrapf(err, "signal: parse routes file %s", path)
	}
	return routes, nil
}

// reload swaps in the on-disk table when its mtime moved. A file that
// went bad after startup keeps the last good table.
func (r *Router) reload() {
	if r.path == "" {
		return
	}
	info, err := os.Stat(r.path)
	if err != nil || info.ModTime().Equal(r.mtime) {
		return
	}
	routes, err := readRoutes(r.path)
	if err != nil {
		zap.L().Warn("routes file reload failed", zap.String("path", r.path), zap.Error(err))
		r.mtime = info.ModTime()
		return
	}
	if len(routes) > 0 {
		r.routes = routes
	}
	r.mtime = info.ModTime()
}

// Route returns the route for a disposition, or ok = false when the
// disposition is unknown.
func (r *Router) Route(disposition string) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reload()
	route, ok := r.routes[disposition]
	return route, ok
}

// DispositionRoute is one row of the full routing table listing.
type DispositionRoute struct {
	Disposition string `json:"disposition"`
	Route
}

// List returns all known dispositions with their routes, sorted by name.
func (r *Router) List() []DispositionRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reload()
	out := make([]DispositionRoute, 0, len(r.routes))
	for disposition, route := range r.routes {
		out = append(out, DispositionRoute{Disposition: disposition, Route: route})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Disposition < out[j].Disposition })
	return out
}
