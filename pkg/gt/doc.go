// Package gt runs the external Gastown "gt" executable. Commands are executed
// as an argument vector without a shell, inside the town root, with the local
// bin directory prepended to PATH and GASTOWN_PATH exported.
package gt
