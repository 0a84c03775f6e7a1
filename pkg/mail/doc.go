// Package mail exposes the Gastown mail system over HTTP. It resolves mailbox
// identities from agent/rig parameters, lists inboxes and sends messages by
// invoking "gt mail", and reshapes the CLI's JSON into the public Mail schema.
package mail
