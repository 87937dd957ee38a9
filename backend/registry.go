package backend

import (
	"sync"

	"github.com/pkg/errors"
)

// Constructor builds a Backend, modeled on backends.Constructor in the
// teacher's root `backends` package.
type Constructor func() *Backend

var (
	registryMu             sync.Mutex
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register associates a name with a Constructor, modeled on
// backends.Register. Called once, from this package's own init, since this
// module ships exactly one backend kind — the hook exists so a future
// second backend kind could register alongside it without this package's
// callers changing.
func Register(backendName string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if len(registeredConstructors) == 0 {
		firstRegistered = backendName
	}
	registeredConstructors[backendName] = constructor
}

// NewWithConfig builds the named backend. config is currently unused (this
// module's one backend kind takes no construction-time configuration) but
// kept in the signature to match the teacher's backends.NewWithConfig
// shape, in case a future backend kind needs it.
func NewWithConfig(backendName, _ string) (*Backend, error) {
	registryMu.Lock()
	constructor, found := registeredConstructors[backendName]
	registryMu.Unlock()
	if !found {
		return nil, errors.Errorf("backend: no registered backend named %q", backendName)
	}
	return constructor(), nil
}

func init() {
	Register(name, New)
}

var (
	singletonOnce sync.Once
	singleton     *Backend
)

// Get returns the process-wide Backend singleton (spec.md §4.6:
// "registers itself with the process-wide backend registry at
// initialization"), constructing it on first use.
func Get() *Backend {
	singletonOnce.Do(func() {
		singleton = New()
	})
	return singleton
}
