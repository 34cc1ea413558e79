// Package permissions decides who may run privileged keyword commands.
package permissions

import (
	"strings"
	"sync"
)

// Role is the capability a sender holds when a command runs.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// Rules is the policy input, usually taken from config.
//
// Admins entries are "<channel>:<sender id>"; "*:<sender id>" matches any channel.
// Every sender on a trusted channel is an admin.
type Rules struct {
	Admins          []string
	TrustedChannels []string
}

// Policy resolves senders to roles. Update swaps the rules atomically.
type Policy struct {
	mu      sync.RWMutex
	admins  map[string]struct{}
	trusted map[string]struct{}
}

func NewPolicy(r Rules) *Policy {
	p := &Policy{}
	p.Update(r)
	return p
}

// Update replaces the rule set (used on config hot reload).
func (p *Policy) Update(r Rules) {
	admins := make(map[string]struct{}, len(r.Admins))
	for _, a := range r.Admins {
		a = strings.TrimSpace(a)
		ch, id, ok := strings.Cut(a, ":")
		if !ok || id == "" {
			continue
		}
		admins[strings.ToLower(ch)+":"+id] = struct{}{}
	}
	trusted := make(map[string]struct{}, len(r.TrustedChannels))
	for _, c := range r.TrustedChannels {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		trusted[c] = struct{}{}
	}

	p.mu.Lock()
	p.admins = admins
	p.trusted = trusted
	p.mu.Unlock()
}

// RoleFor returns the role of senderID on channel.
func (p *Policy) RoleFor(channel, senderID string) Role {
	channel = strings.ToLower(channel)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.trusted[channel]; ok {
		return RoleAdmin
	}
	if senderID == "" {
		return RoleUser
	}
	if _, ok := p.admins[channel+":"+senderID]; ok {
		return RoleAdmin
	}
	if _, ok := p.admins["*:"+senderID]; ok {
		return RoleAdmin
	}
	return RoleUser
}
