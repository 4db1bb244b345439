// Package cookies holds the cookie jar used by the login protocol and the
// persisted session record that lets later runs skip logging in again.
package cookies

import (
	"net/http"
	"strings"
)

// Jar is a small owned key-value cookie store. The login protocol threads
// one Jar through its sequential steps instead of sharing mutable header
// state, so each step's cookie accumulation stays explicit.
type Jar struct {
	names  []string
	values map[string]string
}

func NewJar() *Jar {
	return &Jar{values: make(map[string]string)}
}

// Apply upserts the name=value prefix of each raw Set-Cookie line. Malformed
// lines are skipped silently; cookie parsing must never abort a login.
func (j *Jar) Apply(lines []string) {
	for _, line := range lines {
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		name, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		j.Set(name, strings.TrimSpace(value))
	}
}

// ApplyResponse captures all Set-Cookie headers of a response.
func (j *Jar) ApplyResponse(resp *http.Response) {
	j.Apply(resp.Header.Values("Set-Cookie"))
}

func (j *Jar) Get(name string) (string, bool) {
	value, ok := j.values[name]
	return value, ok
}

func (j *Jar) Set(name, value string) {
	if _, exists := j.values[name]; !exists {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

func (j *Jar) Len() int {
	return len(j.names)
}

// Render joins held cookies as a Cookie header value, in insertion order.
func (j *Jar) Render() string {
	pairs := make([]string, 0, len(j.names))
	for _, name := range j.names {
		pairs = append(pairs, name+"="+j.values[name])
	}
	return strings.Join(pairs, "; ")
}
