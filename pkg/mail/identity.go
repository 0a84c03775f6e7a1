package mail

import "strings"

// ResolveIdentity derives the mailbox identity passed to "gt mail inbox --identity".
//
//   - no agent: ok is false and the default inbox is used
//   - agent already qualified ("rig/name"): agent unchanged, rig ignored
//   - rig given: "rig/agent"
//   - otherwise: agent unchanged
//
// Characters are not validated; the runner passes the identity as a single argument.
func ResolveIdentity(agent, rig string) (identity string, ok bool) {
	if agent == "" {
		return "", false
	}
	if strings.Contains(agent, "/") {
		return agent, true
	}
	if rig != "" {
		return rig + "/" + agent, true
	}
	return agent, true
}
