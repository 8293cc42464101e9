/*
Command htlcd operates a local escrow ledger kept on disk.

Every command opens the store found in the home directory (HTLC_HOME or the
-home flag), executes a single call and commits it. Requests that change
state are signed with an ed25519 key kept in a file.

	$ htlcd keygen -key alice.key
	$ htlcd init -key alice.key -amount 5000000000
	$ htlcd create -key alice.key -receiver <address> -amount 1000000000
	$ htlcd withdraw -key bob.key -id <id> -secret <secret>
*/
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It is the responsibility
// of the command function to parse the arguments.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"balance":  cmdBalance,
	"create":   cmdCreate,
	"find":     cmdFind,
	"init":     cmdInit,
	"keyaddr":  cmdKeyaddr,
	"keygen":   cmdKeygen,
	"refund":   cmdRefund,
	"show":     cmdShow,
	"version":  cmdVersion,
	"withdraw": cmdWithdraw,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s operates a local hashed timelock escrow ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash string = "dev"
