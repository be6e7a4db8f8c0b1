package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/resell/internal/api"
	"github.com/erazemk/resell/internal/db"
)

type cli struct {
	t       *testing.T
	api     string
	session string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := httptest.NewServer(api.NewRouter(db.NewTestDB(t), "test-secret"))
	t.Cleanup(srv.Close)
	return &cli{t: t, api: srv.URL, session: filepath.Join(t.TempDir(), "session.sqlite3")}
}

// run executes one command as a separate process would, sharing only the
// session database.
func (c *cli) run(stdin string, args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-api", c.api, "-session", c.session}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	code, out, errOut := c.run("", args...)
	if code != 0 {
		c.t.Fatalf("resell %s: exit %d: %s", strings.Join(args, " "), code, errOut)
	}
	return out
}

func TestCLISellAndBuy(t *testing.T) {
	bob := newCLI(t)

	out := bob.mustRun("register", "-u", "bob", "-e", "bob@example.com", "-p", "password")
	if !strings.Contains(out, "logged in as bob") {
		t.Errorf("unexpected register output: %q", out)
	}

	out = bob.mustRun("whoami")
	if !strings.Contains(out, "Logged in as bob") || !strings.Contains(out, "Balance: 0.00") {
		t.Errorf("unexpected whoami output: %q", out)
	}

	out = bob.mustRun("sell", "-name", "Shoe", "-brand", "Nike", "-condition", "new", "-price", "50", "-size", "10")
	if !strings.Contains(out, "Listed item 1") {
		t.Fatalf("unexpected sell output: %q", out)
	}

	out = bob.mustRun("feed")
	if !strings.Contains(out, "Shoe") || !strings.Contains(out, "Page 1 of 1") {
		t.Errorf("unexpected feed output: %q", out)
	}

	code, _, errOut := bob.run("", "buy", "1")
	if code != 1 || !strings.Contains(errOut, "cannot buy your own item") {
		t.Errorf("expected self purchase rejected, got %d %q", code, errOut)
	}

	// A second user with its own session buys the item.
	alice := &cli{t: t, api: bob.api, session: filepath.Join(t.TempDir(), "alice.sqlite3")}
	alice.mustRun("register", "-u", "alice", "-e", "alice@example.com", "-p", "password")
	out = alice.mustRun("buy", "1")
	if !strings.Contains(out, "Bought Shoe for 50.00") {
		t.Errorf("unexpected buy output: %q", out)
	}

	out = bob.mustRun("history")
	if !strings.Contains(out, "sold") || !strings.Contains(out, "45.00") {
		t.Errorf("unexpected history output: %q", out)
	}

	out = bob.mustRun("feed")
	if !strings.Contains(out, "No items.") {
		t.Errorf("expected empty feed, got %q", out)
	}
}

func TestCLIFeedFilters(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "-u", "bob", "-e", "bob@example.com", "-p", "password")
	c.mustRun("sell", "-name", "Air Max", "-brand", "Nike", "-condition", "new", "-price", "120", "-size", "42")
	c.mustRun("sell", "-name", "Gazelle", "-brand", "Adidas", "-condition", "good", "-price", "80", "-size", "42")
	c.mustRun("sell", "-name", "Hoodie", "-brand", "Adidas", "-condition", "used", "-price", "25", "-size", "M")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"brand", []string{"-brand", "adidas"}, []string{"Gazelle", "Hoodie"}, []string{"Air Max"}},
		{"condition", []string{"-condition", "new"}, []string{"Air Max"}, []string{"Gazelle", "Hoodie"}},
		{"price range", []string{"-min", "50", "-max", "100"}, []string{"Gazelle"}, []string{"Air Max", "Hoodie"}},
		{"size", []string{"-size", "m"}, []string{"Hoodie"}, []string{"Air Max", "Gazelle"}},
		{"all pages", []string{"-per-page", "1", "-all"}, []string{"Page 1 of 3", "Page 2 of 3", "Page 3 of 3"}, nil},
		{"second page", []string{"-per-page", "2", "-page", "2"}, []string{"Air Max", "Page 2 of 2"}, []string{"Hoodie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.mustRun(append([]string{"feed"}, tt.args...)...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in output: %q", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q in output: %q", w, out)
				}
			}
		})
	}

	for _, args := range [][]string{{"-condition", "broken"}, {"-page", "0"}, {"-min", "cheap"}} {
		if code, _, _ := c.run("", append([]string{"feed"}, args...)...); code != 2 {
			t.Errorf("feed %v: expected exit 2, got %d", args, code)
		}
	}
	if code, _, errOut := c.run("", "feed", "-min", "100", "-max", "10"); code != 1 || !strings.Contains(errOut, "lowest price above highest") {
		t.Errorf("expected inverted range rejected, got %d %q", code, errOut)
	}
}

func TestCLIMutationsShowRefreshedFeed(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "-u", "bob", "-e", "bob@example.com", "-p", "password")
	c.mustRun("sell", "-name", "Shoe", "-brand", "Nike", "-condition", "new", "-price", "50", "-size", "10")
	c.mustRun("sell", "-name", "Boot", "-brand", "Nike", "-condition", "new", "-price", "70", "-size", "10")

	out := c.mustRun("edit", "1", "-price", "40")
	if !strings.Contains(out, "40.00") || !strings.Contains(out, "Page 1 of 1 (2 items)") {
		t.Errorf("unexpected edit output: %q", out)
	}

	out = c.mustRun("delete", "2")
	if !strings.Contains(out, "Deleted item 2") || !strings.Contains(out, "(1 items)") || strings.Contains(out, "Boot") {
		t.Errorf("unexpected delete output: %q", out)
	}
}

func TestCLILoginPromptsForPassword(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "-u", "bob", "-e", "bob@example.com", "-p", "password")
	c.mustRun("logout")

	code, out, errOut := c.run("password\n", "login", "-u", "bob")
	if code != 0 {
		t.Fatalf("login: exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Logged in as bob") {
		t.Errorf("unexpected login output: %q", out)
	}

	code, _, _ = c.run("wrong\n", "login", "-u", "bob")
	if code != 1 {
		t.Errorf("expected failed login, got exit %d", code)
	}

	// The failed attempt kept the previous session.
	if out := c.mustRun("whoami"); !strings.Contains(out, "Logged in as bob") {
		t.Errorf("unexpected whoami output: %q", out)
	}
}

func TestCLILoggedOut(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun("whoami"); !strings.Contains(out, "Not logged in") {
		t.Errorf("unexpected whoami output: %q", out)
	}

	// Logging out twice is fine.
	c.mustRun("logout")
	c.mustRun("logout")

	code, _, errOut := c.run("", "sell", "-name", "Shoe", "-brand", "Nike", "-condition", "NEW", "-price", "5", "-size", "M")
	if code != 1 || !strings.Contains(errOut, "not logged in") {
		t.Errorf("expected not logged in, got %d %q", code, errOut)
	}
}

func TestCLIUsageErrors(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"dance"}, 2},
		{"buy without id", []string{"buy"}, 2},
		{"buy bad id", []string{"buy", "abc"}, 2},
		{"login without user", []string{"login"}, 2},
		{"help", []string{"-h"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := c.run("", tt.args...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
		})
	}
}
