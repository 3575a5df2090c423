package mech

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mechkit/mechkit/pkg/keychain"
)

// Name identifies one operation within a registry.
type Name string

// Handler executes one operation with the current credentials.
type Handler func(ctx context.Context, keys keychain.Pool, args Args) (string, error)

// Descriptor binds an operation name to its handler. EchoPrompt makes
// the dispatcher copy the caller-supplied name into the prompt slot on
// success, a per-toolkit behavior rather than a global one.
type Descriptor struct {
	Name        Name
	Service     string
	Description string
	EchoPrompt  bool
	Run         Handler
}

// Registry is the immutable operation table for one toolkit. It is
// built once at startup and only read afterwards. Noun is the word
// used in user-facing messages ("tool" or "command"); foldCase makes
// lookup case-insensitive, matching toolkits that historically
// lower-cased their input.
type Registry struct {
	noun     string
	foldCase bool
	names    []Name
	ops      map[Name]Descriptor
}

// NewRegistry builds a registry from a static descriptor list.
// Registering an empty or duplicate name panics; the tables are
// compile-time literals, so that is a programming error, not input.
func NewRegistry(noun string, foldCase bool, descriptors ...Descriptor) *Registry {
	r := &Registry{
		noun:     noun,
		foldCase: foldCase,
		ops:      make(map[Name]Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		key := d.Name
		if foldCase {
			key = Name(strings.ToLower(string(key)))
		}
		if key == "" {
			panic("mech: operation with empty name")
		}
		if _, dup := r.ops[key]; dup {
			panic(fmt.Sprintf("mech: duplicate operation %q", string(d.Name)))
		}
		r.ops[key] = d
		r.names = append(r.names, d.Name)
	}
	return r
}

// Lookup resolves a caller-supplied name to its descriptor.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	key := Name(name)
	if r.foldCase {
		key = Name(strings.ToLower(name))
	}
	d, ok := r.ops[key]
	return d, ok
}

// Names returns the operation names in registration order.
func (r *Registry) Names() []Name {
	out := make([]Name, len(r.names))
	copy(out, r.names)
	return out
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, n := range r.names {
		key := n
		if r.foldCase {
			key = Name(strings.ToLower(string(n)))
		}
		out = append(out, r.ops[key])
	}
	return out
}

// FoldsCase reports whether lookup lower-cases its input.
func (r *Registry) FoldsCase() bool {
	return r.foldCase
}

// MissingNameMessage is the fixed reply when the caller named no
// operation at all.
func (r *Registry) MissingNameMessage() string {
	return fmt.Sprintf("No %s has been specified.", r.noun)
}

// UnknownNameMessage enumerates every registered operation, in stable
// order, so callers can see the valid set instead of guessing.
func (r *Registry) UnknownNameMessage(name string) string {
	quoted := make([]string, len(r.names))
	for i, n := range r.names {
		quoted[i] = strconv.Quote(string(n))
	}
	noun := r.noun
	if noun != "" {
		noun = strings.ToUpper(noun[:1]) + noun[1:]
	}
	return fmt.Sprintf("%s %q is not in supported %ss: (%s).",
		noun, name, r.noun, strings.Join(quoted, ", "))
}
