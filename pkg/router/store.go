// Package router implements the concurrency-safe route store: one segment
// tree per named router, atomic load/unload at router and route
// granularity, and the token matching algorithm.
//
// Reads (Match, Routes) never take a lock. Every write builds a fresh
// copy-on-write tree and publishes the whole store snapshot through an
// atomic pointer, so a reader observes either the pre-write or the fully
// published post-write state, never a partially mutated tree. Writes are
// serialized against each other by a single mutex.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/trie"
)

// ErrNoMatch is returned when no route matches the given tokens.
var ErrNoMatch = errors.New("textmux: no matching route")

// ErrRouterNotFound is returned when the named router has not been loaded.
var ErrRouterNotFound = errors.New("textmux: router not loaded")

// ErrRouteNotDefined is returned when LoadRoute or UnloadRoute names a path
// absent from the compiled command definitions. It is a local failure
// reported to the caller, never fatal.
var ErrRouteNotDefined = errors.New("textmux: route not defined")

// snapshot is the published state: one tree per router ID.
type snapshot map[string]*trie.Node[command.Command]

// Store owns the route tables of all named routers.
type Store struct {
	mu      sync.Mutex // serializes writers
	routers atomic.Pointer[snapshot]

	logger *slog.Logger
	docs   docCache
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for load and unload events.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	empty := snapshot{}
	s.routers.Store(&empty)
	return s
}

// LoadRouter atomically replaces the router's whole tree with one rebuilt
// from cmds. Later commands overwrite earlier ones at identical paths.
// Routes previously disabled with UnloadRoute do not survive a reload: the
// rebuild starts from the full, enabled command list.
func (s *Store) LoadRouter(id string, cmds []command.Command) error {
	if err := command.ValidatePaths(cmds); err != nil {
		return err
	}

	root := trie.New[command.Command]()
	for i := range cmds {
		c := cmds[i]
		root = root.Insert(c.Path(), &c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cloneLocked()
	next[id] = root
	s.routers.Store(&next)
	s.docs.invalidate(id)

	s.logger.Debug("router loaded", "router", id, "routes", len(cmds))
	return nil
}

// UnloadRouter drops the router's tree entirely. Unknown IDs are ignored.
func (s *Store) UnloadRouter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cloneLocked()
	delete(next, id)
	s.routers.Store(&next)
	s.docs.invalidate(id)

	s.logger.Debug("router unloaded", "router", id)
}

// LoadRoute re-enables the single route at path, looked up in the full
// command definitions, without touching unrelated branches. The router must
// already be loaded.
func (s *Store) LoadRoute(id, path string, defs []command.Command) error {
	def, ok := findCommand(defs, command.ParsePath(path))
	if !ok {
		return fmt.Errorf("%w: %q", ErrRouteNotDefined, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := (*s.routers.Load())[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrRouterNotFound, id)
	}
	if err := validateAgainstTree(root, def.Path()); err != nil {
		return err
	}
	next := s.cloneLocked()
	next[id] = root.Insert(def.Path(), &def)
	s.routers.Store(&next)
	s.docs.invalidate(id)

	s.logger.Debug("route loaded", "router", id, "route", def.PathString())
	return nil
}

// validateAgainstTree rejects a path that would place a parameter segment
// beside a differently-named parameter child already in the tree, keeping
// the no-ambiguity guarantee of LoadRouter intact for single-route inserts.
func validateAgainstTree(root *trie.Node[command.Command], path []trie.Key) error {
	cur := root
	for i, k := range path {
		if cur == nil {
			return nil
		}
		if k.IsParam() {
			for _, pc := range cur.ParamChildren() {
				if pc.Name != k.Name() {
					return fmt.Errorf("%w: %q and %q under %q",
						command.ErrAmbiguousParam, pc.Name, k.Name(), trie.FormatPath(path[:i]))
				}
			}
		}
		cur = cur.SearchNext(k)
	}
	return nil
}

// UnloadRoute disables the single route at path: the value at that exact
// path is cleared, leaving deeper and sibling routes intact.
func (s *Store) UnloadRoute(id, path string, defs []command.Command) error {
	def, ok := findCommand(defs, command.ParsePath(path))
	if !ok {
		return fmt.Errorf("%w: %q", ErrRouteNotDefined, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := (*s.routers.Load())[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrRouterNotFound, id)
	}
	next := s.cloneLocked()
	next[id] = root.Delete(def.Path())
	s.routers.Store(&next)
	s.docs.invalidate(id)

	s.logger.Debug("route unloaded", "router", id, "route", def.PathString())
	return nil
}

// cloneLocked copies the current snapshot for mutation. Callers hold mu.
func (s *Store) cloneLocked() snapshot {
	cur := *s.routers.Load()
	if len(cur) == 0 {
		return snapshot{}
	}
	return maps.Clone(cur)
}

// findCommand locates the definition whose resolved path equals path.
func findCommand(defs []command.Command, path []trie.Key) (command.Command, bool) {
	for _, def := range defs {
		if slices.Equal(def.Path(), path) {
			return def, true
		}
	}
	return command.Command{}, false
}

// Match is a successful route lookup: the command, the parameter bindings
// accumulated on the way down, and any tokens left over after the matched
// path.
type Match struct {
	Command *command.Command
	Params  map[string]string
	Rest    []string
}

// MatchRoute walks tokens against the router's tree.
//
// At every level a literal child keyed by the current token wins over any
// parameter child, with no backtracking: if the literal branch fails to
// produce a match, parameter branches at that level are never tried, so
// overlapping literal and parameter routes must not rely on fallback.
// Parameter siblings with different names are tried in lexicographic name
// order, though command lists that produce such trees are rejected at load
// time.
func (s *Store) MatchRoute(id string, tokens []string) (*Match, error) {
	root, ok := (*s.routers.Load())[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRouterNotFound, id)
	}

	params := make(map[string]string)
	cmd, rest, ok := matchNode(root, tokens, params)
	if !ok {
		return nil, ErrNoMatch
	}
	return &Match{Command: cmd, Params: params, Rest: rest}, nil
}

func matchNode(n *trie.Node[command.Command], tokens []string, params map[string]string) (*command.Command, []string, bool) {
	if len(tokens) == 0 {
		if v := n.Value(); v != nil {
			return v, nil, true
		}
		return nil, nil, false
	}

	if child := n.Literal(tokens[0]); child != nil {
		return matchNode(child, tokens[1:], params)
	}

	for _, pc := range n.ParamChildren() {
		// A deeper segment may reuse an outer binding's name, so a failed
		// branch must restore the previous value, not just delete its own.
		old, had := params[pc.Name]
		params[pc.Name] = tokens[0]
		if cmd, rest, ok := matchNode(pc.Node, tokens[1:], params); ok {
			return cmd, rest, ok
		}
		if had {
			params[pc.Name] = old
		} else {
			delete(params, pc.Name)
		}
	}

	// A childless value node swallows everything left as rest tokens.
	if !n.HasChildren() {
		if v := n.Value(); v != nil {
			return v, tokens, true
		}
	}
	return nil, nil, false
}

// Routes returns the rendered paths of all currently enabled routes of the
// router, parameters marked with ":".
func (s *Store) Routes(id string) ([]string, error) {
	root, ok := (*s.routers.Load())[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRouterNotFound, id)
	}

	paths := root.ActivePaths()
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = trie.FormatPath(p)
	}
	return out, nil
}

// Routers returns the IDs of all loaded routers, sorted.
func (s *Store) Routers() []string {
	snap := *s.routers.Load()
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
