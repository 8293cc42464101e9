package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := commands[cmd](nil, &out, args); err != nil {
		t.Fatalf("%s %v: %s", cmd, args, err)
	}
	return out.String()
}

func TestEscrowLifecycle(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	aliceKey := filepath.Join(dir, "alice.key")
	bobKey := filepath.Join(dir, "bob.key")

	alice := strings.TrimSpace(run(t, "keygen", "-key", aliceKey))
	bob := strings.TrimSpace(run(t, "keygen", "-key", bobKey))
	assert.Len(t, alice, 40)

	addr := run(t, "keyaddr", "-key", aliceKey)
	lines := strings.Split(strings.TrimSpace(addr), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, alice, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "htlc1"))
	assert.True(t, strings.HasPrefix(lines[2], "G"))

	out := run(t, "init", "-home", home, "-key", aliceKey, "-amount", "5000000000")
	assert.True(t, strings.HasPrefix(out, "htlc-local 1 "), out)

	out = run(t, "create", "-home", home, "-key", aliceKey,
		"-receiver", bob, "-amount", "1000000000", "-deposit", "100000000")
	var created struct {
		ID       string `json:"id"`
		Secret   string `json:"secret"`
		Hashlock string `json:"hashlock"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Len(t, created.ID, 64)
	require.Len(t, created.Secret, 64)

	out = run(t, "show", "-home", home, "-id", created.ID)
	var shown map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "active", shown["status"])
	assert.Equal(t, "1100000000", shown["custody"])

	out = run(t, "find", "-home", home, "-hashlock", created.Hashlock)
	assert.Equal(t, created.ID+"\n", out)
	out = run(t, "find", "-home", home, "-receiver", bob)
	assert.Equal(t, created.ID+"\n", out)

	run(t, "withdraw", "-home", home, "-key", bobKey, "-id", created.ID, "-secret", created.Secret)

	assert.Equal(t, "1000000000\n", run(t, "balance", "-home", home, "-key", bobKey, "-ticker", "IOV"))
	assert.Equal(t, "4000000000\n", run(t, "balance", "-home", home, "-owner", alice, "-ticker", "IOV"))

	out = run(t, "show", "-home", home, "-id", created.ID)
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "withdrawn", shown["status"])
	assert.Equal(t, "0", shown["custody"])
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	key := filepath.Join(dir, "alice.key")
	run(t, "keygen", "-key", key)

	var out bytes.Buffer
	err := cmdKeygen(nil, &out, []string{"-key", key})
	assert.Error(t, err, "existing key must not be overwritten")

	run(t, "init", "-home", home, "-key", key, "-amount", "10")
	err = cmdInit(nil, &out, []string{"-home", home, "-key", key})
	assert.Error(t, err, "ledger can be initialized once")

	err = cmdCreate(nil, &out, []string{"-home", home, "-key", key,
		"-receiver", strings.Repeat("AB", 20), "-amount", "11"})
	assert.Error(t, err, "insufficient balance")

	err = cmdFind(nil, &out, []string{"-home", home})
	assert.Error(t, err, "filter required")

	err = cmdCreate(nil, &out, []string{"-home", home, "-key", key,
		"-receiver", strings.Repeat("AB", 20), "-amount", "1",
		"-secret", "aa", "-hashlock", strings.Repeat("bb", 32)})
	assert.Error(t, err, "secret and hashlock are exclusive")
}
