package typegen

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// NamingPolicy derives a Go identifier candidate from a schema name.
type NamingPolicy string

const (
	// NamingPreserve keeps the schema name, made identifier-safe and exported.
	NamingPreserve NamingPolicy = "preserve"
	// NamingCamel camel-cases the schema name ("user_profile" -> "UserProfile").
	NamingCamel NamingPolicy = "camel"
)

// CollisionPolicy decides what happens when a candidate is already taken.
type CollisionPolicy string

const (
	// CollisionSuffix retries with numeric suffixes: Name2, Name3, ...
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionFail reports the first collision as a NameConflictError.
	CollisionFail CollisionPolicy = "fail"
)

const (
	defaultMaxCollisionAttempts = 100
	reservedOwner               = "<reserved>"
)

// Identifier applies the naming policy to a schema name.
func (p NamingPolicy) Identifier(name string) string {
	switch p {
	case NamingCamel:
		return initialisms(exportIdentifier(inflect.Camelize(sanitize(name))))
	default:
		return exportIdentifier(sanitize(name))
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, name)
}

func exportIdentifier(s string) string {
	s = strings.TrimLeft(s, "_")
	if s == "" {
		return "T"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "T" + s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// commonInitialisms are upper-cased as whole words by the camel policy, as
// golint does.
var commonInitialisms = map[string]bool{
	"ACL": true, "API": true, "ASCII": true, "CPU": true, "CSS": true, "DNS": true,
	"EOF": true, "GUID": true, "HTML": true, "HTTP": true, "HTTPS": true, "ID": true,
	"IP": true, "JSON": true, "LHS": true, "QPS": true, "RAM": true, "RHS": true,
	"RPC": true, "SLA": true, "SMTP": true, "SQL": true, "SSH": true, "TCP": true,
	"TLS": true, "TTL": true, "UDP": true, "UI": true, "UID": true, "UUID": true,
	"URI": true, "URL": true, "UTF8": true, "VM": true, "XML": true, "XMPP": true,
	"XSRF": true, "XSS": true,
}

// initialisms rewrites camel-case words that are common initialisms:
// UserId -> UserID, ApiUrl -> APIURL.
func initialisms(s string) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && !(isUpper(s[i]) && !isUpper(s[i-1])) {
			continue
		}
		word := s[start:i]
		if upper := strings.ToUpper(word); commonInitialisms[upper] {
			word = upper
		}
		b.WriteString(word)
		start = i
	}
	return b.String()
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// Registry assigns Go names to schema names. Within one registry the mapping
// is a bijection: a schema name keeps its first name and no two schema names
// share one.
type Registry struct {
	naming      NamingPolicy
	collision   CollisionPolicy
	maxAttempts int

	assigned map[string]string // schema key -> Go name
	owners   map[string]string // Go name -> schema key
}

// NewRegistry returns an empty registry. A non-positive maxAttempts selects
// the default.
func NewRegistry(naming NamingPolicy, collision CollisionPolicy, maxAttempts int) *Registry {
	if naming == "" {
		naming = NamingPreserve
	}
	if collision == "" {
		collision = CollisionSuffix
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxCollisionAttempts
	}
	return &Registry{
		naming:      naming,
		collision:   collision,
		maxAttempts: maxAttempts,
		assigned:    make(map[string]string),
		owners:      make(map[string]string),
	}
}

// Reserve marks a Go name as unavailable for assignment.
func (r *Registry) Reserve(goName string) error {
	if owner, ok := r.owners[goName]; ok && owner != reservedOwner {
		return &NameConflictError{SchemaName: reservedOwner, Candidate: goName, Owner: owner}
	}
	r.owners[goName] = reservedOwner
	return nil
}

// Assign returns the Go name for schemaName, deriving one with the naming
// policy the first time it is asked.
func (r *Registry) Assign(schemaName string) (string, error) {
	return r.AssignCandidate(schemaName, r.naming.Identifier(schemaName))
}

// AssignCandidate is Assign with an explicit candidate, for keys that are not
// schema names (selection paths in operations).
func (r *Registry) AssignCandidate(key, candidate string) (string, error) {
	if name, ok := r.assigned[key]; ok {
		return name, nil
	}
	name := candidate
	for attempt := 1; ; attempt++ {
		owner, taken := r.owners[name]
		if !taken {
			break
		}
		if r.collision == CollisionFail || attempt >= r.maxAttempts {
			return "", &NameConflictError{SchemaName: key, Candidate: name, Owner: owner, Attempts: attempt}
		}
		name = candidate + strconv.Itoa(attempt+1)
	}
	r.assigned[key] = name
	r.owners[name] = key
	return name, nil
}

// IsAssigned reports whether schemaName already has a Go name.
func (r *Registry) IsAssigned(schemaName string) bool {
	_, ok := r.assigned[schemaName]
	return ok
}

// Lookup returns the Go name for schemaName without assigning one.
func (r *Registry) Lookup(schemaName string) (string, bool) {
	name, ok := r.assigned[schemaName]
	return name, ok
}

// Len returns the number of assigned schema names.
func (r *Registry) Len() int {
	return len(r.assigned)
}
