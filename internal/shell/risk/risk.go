// Package risk classifies shell commands before they reach a live process.
//
// Classification is a pure function of the command text. Three verdicts:
//   - Blocked: the command is refused outright and never forwarded
//   - Risky: forwarded, but flagged in the result so callers can surface it
//   - Safe: matches the read-mostly allowlist
//
// Commands that match neither list are Risky rather than Safe: an unknown
// command is forwarded but the caller is told it was not vetted.
package risk

import (
	"regexp"
	"strings"
)

// Verdict is the outcome of classifying a command.
type Verdict string

const (
	Safe    Verdict = "safe"
	Risky   Verdict = "risky"
	Blocked Verdict = "blocked"
)

// MaxCommandLength bounds command text accepted for classification.
const MaxCommandLength = 1000

// Classification carries the verdict plus a human-readable reason.
type Classification struct {
	Verdict Verdict
	Reason  string
}

// blockedCommands are refused regardless of arguments.
var blockedCommands = map[string]bool{
	// Destructive disk and filesystem operations
	"mkfs":      true,
	"fdisk":     true,
	"parted":    true,
	"dd":        true,
	"shred":     true,
	"diskpart":  true,
	"format":    true,
	// System state
	"shutdown": true,
	"reboot":   true,
	"halt":     true,
	"poweroff": true,
	"init":     true,
	// Privilege and account management
	"useradd":  true,
	"userdel":  true,
	"usermod":  true,
	"groupadd": true,
	"groupdel": true,
	"passwd":   true,
	"visudo":   true,
	// Service management
	"systemctl": true,
	"service":   true,
	// Arbitrary code loading
	"eval":     true,
	"insmod":   true,
	"rmmod":    true,
	"modprobe": true,
}

// safeCommands are read-mostly operations allowed without flagging.
var safeCommands = map[string]bool{
	"ls": true, "dir": true, "pwd": true, "cd": true,
	"cat": true, "head": true, "tail": true, "less": true, "more": true,
	"echo": true, "printf": true, "date": true, "cal": true,
	"whoami": true, "hostname": true, "uname": true, "id": true,
	"env": true, "printenv": true, "which": true, "type": true,
	"grep": true, "find": true, "wc": true, "sort": true, "uniq": true,
	"diff": true, "file": true, "stat": true, "du": true, "df": true,
	"ps": true, "top": true, "uptime": true, "free": true,
	"history": true, "alias": true, "help": true, "man": true,
	"touch": true, "mkdir": true, "cp": true, "mv": true,
	"basename": true, "dirname": true, "realpath": true, "readlink": true,
	"sleep": true, "true": true, "false": true, "test": true,
	"git": true, "tar": true, "gzip": true, "gunzip": true, "zip": true, "unzip": true,
}

// blockedPatterns match dangerous constructs anywhere in the command.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+(-[a-z]*[rf][a-z]*\s+)+/(\s|$)`), // recursive delete of root
	regexp.MustCompile(`>\s*/dev/sd[a-z]`),                    // raw device writes
	regexp.MustCompile(`mkfs\.\w+`),                           // filesystem creation
	regexp.MustCompile(`:\(\)\s*\{.*\};\s*:`),                 // fork bomb
	regexp.MustCompile(`chmod\s+(-[a-zA-Z]+\s+)*777\s+/(\s|$)`),
	regexp.MustCompile(`\bcurl\b.*\|\s*(ba)?sh\b`), // pipe remote script to shell
	regexp.MustCompile(`\bwget\b.*\|\s*(ba)?sh\b`),
	regexp.MustCompile(`base64\s+(-d|--decode).*\|\s*(ba)?sh\b`),
}

// Classify inspects a command and returns its verdict.
func Classify(command string) Classification {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Classification{Verdict: Blocked, Reason: "command is empty"}
	}
	if len(command) > MaxCommandLength {
		return Classification{Verdict: Blocked, Reason: "command exceeds maximum length"}
	}

	lower := strings.ToLower(trimmed)

	for _, pattern := range blockedPatterns {
		if pattern.MatchString(lower) {
			return Classification{Verdict: Blocked, Reason: "command matches blocked pattern: " + pattern.String()}
		}
	}

	// Inspect every pipeline/sequence segment: `ls; shutdown -h now`
	// must be judged by its worst segment.
	verdict := Safe
	for _, segment := range splitSegments(lower) {
		first := firstWord(segment)
		if first == "" {
			continue
		}
		if first == "sudo" || first == "doas" {
			rest := strings.TrimSpace(strings.TrimPrefix(segment, first))
			first = firstWord(rest)
			if blockedCommands[first] {
				return Classification{Verdict: Blocked, Reason: "blocked command: " + first}
			}
			verdict = Risky
			continue
		}
		if blockedCommands[first] {
			return Classification{Verdict: Blocked, Reason: "blocked command: " + first}
		}
		if !safeCommands[first] {
			verdict = Risky
		}
	}

	if verdict == Safe {
		return Classification{Verdict: Safe, Reason: "command on safe list"}
	}
	return Classification{Verdict: Risky, Reason: "command not on safe list"}
}

var segmentSplit = regexp.MustCompile(`\|\|?|&&|;|\n`)

func splitSegments(command string) []string {
	return segmentSplit.Split(command, -1)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
