package serverutils

import (
	"testing"
)

func TestResolveSessionReusesCookieVerbatim(t *testing.T) {
	id, issued := ResolveSession("existing-session-value")
	if id != "existing-session-value" {
		t.Errorf("expected cookie value reused verbatim, got %q", id)
	}
	if issued {
		t.Error("no new cookie should be issued when one is present")
	}
}

func TestResolveSessionIssuesFreshId(t *testing.T) {
	first, issued := ResolveSession("")
	if !issued {
		t.Fatal("expected a fresh id to be issued for empty cookie")
	}
	if first == "" {
		t.Fatal("issued id must be non-empty")
	}

	second, _ := ResolveSession("")
	if first == second {
		t.Error("issued ids must be unique per call")
	}
}
