package gt

// InboxArgs builds "mail inbox [--identity=<id>] --json". An empty identity
// selects the default inbox and omits the flag. The identity is attached with
// "=" so a value starting with "-" stays the flag's value.
func InboxArgs(identity string) []string {
	args := []string{"mail", "inbox"}
	if identity != "" {
		args = append(args, "--identity="+identity)
	}
	return append(args, "--json")
}

// SendArgs builds "mail send --subject=<subject> --message=<body> -- <to>".
// The recipient follows "--" so gt never parses it as a flag.
func SendArgs(to, subject, body string) []string {
	return []string{"mail", "send", "--subject=" + subject, "--message=" + body, "--", to}
}

// Subcommand returns the "<group> <verb>" label of args for logs and metrics.
func Subcommand(args []string) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return args[0]
	default:
		return args[0] + " " + args[1]
	}
}
